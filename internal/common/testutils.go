package common

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func TestRabbitMQ(t *testing.T) string {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine", rabbitmq.WithAdminUsername("guest"), rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}

	connURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("could not terminate container: %v", err)
		}
	})

	return connURL
}

// TestMongoStore starts a throwaway MongoDB container and returns a store
// bound to a fresh database. The container is terminated on test cleanup.
func TestMongoStore(t *testing.T) *MongoStore {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7.0.5")
	if err != nil {
		t.Fatalf("could not start mongodb container: %v", err)
	}

	connURL, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("could not get mongodb connection URL: %v", err)
	}

	client, err := NewDB(connURL)
	if err != nil {
		t.Fatalf("could not connect to mongodb: %v", err)
	}

	t.Cleanup(func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client.Disconnect(disconnectCtx)
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("could not terminate container: %v", err)
		}
	})

	return NewMongoStore(client.Database("testdb"))
}

var (
	_ DocStore = (*MongoStore)(nil)
	_ DocStore = (*MemStore)(nil)
)
