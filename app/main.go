package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tofuwabohu/clubist/internal/blogservice"
	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/likeservice"
	"github.com/tofuwabohu/clubist/internal/mailservice"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	cache       *common.Cache
	blogs       *blogservice.BlogService
	stats       *statservice.StatService
	likes       *likeservice.LikeService
	comments    *commentservice.CommentService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// With no MONGO_URI configured the app runs against an in-memory store.
	// Data lives only as long as the process; meant for local development.
	var store common.DocStore
	if cfg.DBURI == "" {
		logger.Warn("no MONGO_URI configured, using in-memory store")
		store = common.NewMemStore()
	} else {
		client, err := common.NewDB(cfg.DBURI)
		if err != nil {
			logger.Error("failed to connect to the database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer common.CloseDB(client)

		store = common.NewMongoStore(client.Database(cfg.DBName))
	}

	err = likeservice.SetupLikeIndexes(ctx, store)
	if err != nil {
		logger.Error("failed to setup like indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	// The broker is optional: without it comment notification mail is
	// simply not sent.
	var broker *common.MessageBroker
	var producer common.MessageProducer
	if cfg.MQHost != "" {
		URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
		broker, err = common.NewMessageBroker(URI)
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		err = common.SetupCommentExchange(broker)
		if err != nil {
			logger.Error("failed to setup the comment exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		producer = broker
	}

	stats := statservice.NewStatService(store, cache, logger)

	app := &application{
		config:   cfg,
		logger:   logger,
		cache:    cache,
		stats:    stats,
		blogs:    blogservice.NewBlogService(store, cache),
		likes:    likeservice.NewLikeService(store, cache, stats),
		comments: commentservice.NewCommentService(store, stats, producer),
		broker:   broker,
	}

	if broker != nil {
		app.mailService = mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger)
		go app.mailService.SendCommentNotification()
	}

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
