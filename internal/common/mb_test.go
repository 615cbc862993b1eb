package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBroker(t *testing.T) {
	uri := TestRabbitMQ(t)

	mb, err := NewMessageBroker(uri)
	require.NoError(t, err)
	t.Cleanup(func() { mb.Close() })

	err = SetupCommentExchange(mb)
	require.NoError(t, err)

	msgs, err := mb.Consume(CommentCreatedKey, CommentExchange, CommentCreatedQueue)
	require.NoError(t, err)

	payload := []byte(`{"Email":"author@example.com","BlogTitle":"Test Blog","Username":"commenter"}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = mb.Publish(ctx, payload, CommentCreatedKey, CommentExchange)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, payload, msg.Body)
		assert.Equal(t, "application/json", msg.ContentType)
		assert.NoError(t, msg.Ack(false))
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the published message")
	}
}
