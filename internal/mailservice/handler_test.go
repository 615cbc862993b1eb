package mailservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendCommentNotification(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    ctx,
		cancel: cancel,
	}

	s.SendCommentNotification()

	time.Sleep(500 * time.Millisecond)

	assert.True(t, mockMailer.Called, "expected the mailer to be called")
	assert.Equal(t, "author@example.com", mockMailer.Email, "expected the mail to go to the blog author")

	t.Cleanup(func() {
		s.Close()
	})
}
