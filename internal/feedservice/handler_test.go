package feedservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/likeservice"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

var errStore = errors.New("store unavailable")

// failStore lets individual write paths be broken to exercise rollbacks.
type failStore struct {
	*common.MemStore
	failCreate bool
	failDelete bool
}

func (s *failStore) CreateDocument(ctx context.Context, collection string, data any) (string, error) {
	if s.failCreate {
		return "", errStore
	}
	return s.MemStore.CreateDocument(ctx, collection, data)
}

func (s *failStore) DeleteDocument(ctx context.Context, collection, id string) error {
	if s.failDelete {
		return errStore
	}
	return s.MemStore.DeleteDocument(ctx, collection, id)
}

func newTestFeed(t *testing.T, store common.DocStore) (*Feed, *commentservice.CommentService, *statservice.StatService) {
	t.Helper()

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stats := statservice.NewStatService(store, cache, logger)
	likes := likeservice.NewLikeService(store, cache, stats)
	comments := commentservice.NewCommentService(store, stats, nil)

	feed := NewFeed("b1", User{ID: "u1", Username: "user one"}, comments, likes, stats)

	return feed, comments, stats
}

func seedComment(t *testing.T, comments *commentservice.CommentService, userId, content, parentId string) *commentservice.Comment {
	t.Helper()

	c, err := comments.Create(context.Background(), &commentservice.CreateCommentRequest{
		BlogID:   "b1",
		UserID:   userId,
		Username: "user-" + userId,
		Content:  content,
		ParentID: parentId,
	})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	return c
}

func TestFeedLoad(t *testing.T) {
	store := common.NewMemStore()
	feed, comments, _ := newTestFeed(t, store)
	ctx := context.Background()

	top := seedComment(t, comments, "u2", "welcome", "")
	seedComment(t, comments, "u3", "thanks", top.ID)

	err := feed.Load(ctx)
	require.NoError(t, err)

	tree := feed.Comments()
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Replies, 1)
	assert.False(t, feed.Liked())
	assert.Equal(t, int64(2), feed.Stats().Comments)
}

func TestAddComment(t *testing.T) {
	store := common.NewMemStore()
	feed, _, stats := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))

	tempId, err := feed.AddComment(ctx, "first!", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tempId, "tmp-"))

	// the placeholder is visible before the write resolves
	tree := feed.Comments()
	require.Len(t, tree, 1)
	assert.Equal(t, "first!", tree[0].Content)
	assert.Equal(t, int64(1), feed.Stats().Comments)

	feed.Wait()

	state, ok := feed.State(tempId)
	require.True(t, ok)
	assert.Equal(t, StateConfirmed, state)

	// the placeholder id was swapped for the server-assigned one in place
	tree = feed.Comments()
	require.Len(t, tree, 1)
	assert.False(t, strings.HasPrefix(tree[0].ID, "tmp-"))

	// the store agrees with the view model
	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Comments)
}

func TestAddComment_Reply(t *testing.T) {
	store := common.NewMemStore()
	feed, comments, _ := newTestFeed(t, store)
	ctx := context.Background()

	top := seedComment(t, comments, "u2", "top", "")
	require.NoError(t, feed.Load(ctx))

	_, err := feed.AddComment(ctx, "a reply", top.ID)
	require.NoError(t, err)

	tree := feed.Comments()
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "a reply", tree[0].Replies[0].Content)

	feed.Wait()

	// confirmed replies survive a fresh load
	fresh, err := comments.Load(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Len(t, fresh[0].Replies, 1)
}

func TestAddComment_Rollback(t *testing.T) {
	store := &failStore{MemStore: common.NewMemStore(), failCreate: true}
	feed, _, _ := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))

	tempId, err := feed.AddComment(ctx, "doomed", "")
	require.NoError(t, err)

	feed.Wait()

	state, ok := feed.State(tempId)
	require.True(t, ok)
	assert.Equal(t, StateRolledBack, state)

	// the placeholder is gone and the count reverted
	assert.Empty(t, feed.Comments())
	assert.Equal(t, int64(0), feed.Stats().Comments)

	select {
	case notice := <-feed.Notices():
		assert.Equal(t, "could not post your comment", notice.Message)
		assert.ErrorIs(t, notice.Err, errStore)
	default:
		t.Fatal("expected a rollback notice")
	}
}

func TestAddComment_BlankContent(t *testing.T) {
	store := common.NewMemStore()
	feed, _, _ := newTestFeed(t, store)

	_, err := feed.AddComment(context.Background(), "   ", "")
	assert.Error(t, err)
	assert.Empty(t, feed.Comments())
}

func TestAddComment_UnknownParent(t *testing.T) {
	store := common.NewMemStore()
	feed, _, _ := newTestFeed(t, store)

	_, err := feed.AddComment(context.Background(), "reply", "missing")
	assert.ErrorIs(t, err, commentservice.ErrParentNotFound)
}

func TestDeleteComment(t *testing.T) {
	store := common.NewMemStore()
	feed, comments, stats := newTestFeed(t, store)
	ctx := context.Background()

	top := seedComment(t, comments, "u1", "top", "")
	seedComment(t, comments, "u2", "reply", top.ID)
	require.NoError(t, feed.Load(ctx))
	require.Equal(t, int64(2), feed.Stats().Comments)

	err := feed.DeleteComment(ctx, top.ID)
	require.NoError(t, err)

	// the comment and its reply leave the view immediately
	assert.Empty(t, feed.Comments())
	assert.Equal(t, int64(0), feed.Stats().Comments)

	feed.Wait()

	assert.Empty(t, feed.Comments())
	assert.Equal(t, int64(0), stats.GetStats(ctx, "b1").Comments)
}

func TestDeleteComment_AlreadyGone(t *testing.T) {
	store := common.NewMemStore()
	feed, comments, _ := newTestFeed(t, store)
	ctx := context.Background()

	c := seedComment(t, comments, "u1", "going", "")
	require.NoError(t, feed.Load(ctx))

	// another session deleted it on the server first
	require.NoError(t, comments.Delete(ctx, c.ID, "b1", "u1"))

	err := feed.DeleteComment(ctx, c.ID)
	require.NoError(t, err)

	feed.Wait()

	// still deleted, and no rollback notice
	assert.Empty(t, feed.Comments())
	select {
	case notice := <-feed.Notices():
		t.Fatalf("unexpected notice: %v", notice)
	default:
	}
}

func TestDeleteComment_RestoreOnFailure(t *testing.T) {
	store := &failStore{MemStore: common.NewMemStore()}
	feed, comments, _ := newTestFeed(t, store)
	ctx := context.Background()

	first := seedComment(t, comments, "u1", "first", "")
	seedComment(t, comments, "u1", "second", "")
	require.NoError(t, feed.Load(ctx))

	store.failDelete = true

	err := feed.DeleteComment(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, feed.Comments(), 1)

	feed.Wait()

	// the comment is back in display order
	tree := feed.Comments()
	require.Len(t, tree, 2)
	assert.Equal(t, "second", tree[0].Content)
	assert.Equal(t, "first", tree[1].Content)
	assert.Equal(t, int64(2), feed.Stats().Comments)

	select {
	case notice := <-feed.Notices():
		assert.Equal(t, "could not delete the comment", notice.Message)
	default:
		t.Fatal("expected a rollback notice")
	}
}

func TestToggleLike(t *testing.T) {
	store := common.NewMemStore()
	feed, _, stats := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))

	err := feed.ToggleLike(ctx)
	require.NoError(t, err)

	// the flip is visible immediately
	assert.True(t, feed.Liked())
	assert.Equal(t, int64(1), feed.Stats().Likes)

	feed.Wait()

	assert.True(t, feed.Liked())
	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Likes)

	err = feed.ToggleLike(ctx)
	require.NoError(t, err)
	feed.Wait()

	assert.False(t, feed.Liked())
	assert.Equal(t, int64(0), stats.GetStats(ctx, "b1").Likes)
}

// gateStore blocks like lookups until released, holding a toggle in flight.
type gateStore struct {
	*common.MemStore
	gate chan struct{}
}

func (s *gateStore) Query(ctx context.Context, collection string, filter common.Filter, opts common.QueryOpts, dest any) error {
	if collection == common.CollectionLikes {
		<-s.gate
	}
	return s.MemStore.Query(ctx, collection, filter, opts, dest)
}

func TestToggleLike_InFlightGuard(t *testing.T) {
	store := &gateStore{MemStore: common.NewMemStore(), gate: make(chan struct{})}
	feed, _, _ := newTestFeed(t, store)
	ctx := context.Background()

	err := feed.ToggleLike(ctx)
	require.NoError(t, err)

	err = feed.ToggleLike(ctx)
	assert.ErrorIs(t, err, ErrToggleInFlight)

	close(store.gate)
	feed.Wait()

	// with the first toggle resolved, the next one is accepted
	err = feed.ToggleLike(ctx)
	assert.NoError(t, err)
	feed.Wait()
}

func TestToggleLike_RevertOnFailure(t *testing.T) {
	store := &failStore{MemStore: common.NewMemStore(), failCreate: true}
	feed, _, _ := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))

	err := feed.ToggleLike(ctx)
	require.NoError(t, err)
	assert.True(t, feed.Liked())

	feed.Wait()

	assert.False(t, feed.Liked())
	assert.Equal(t, int64(0), feed.Stats().Likes)

	select {
	case notice := <-feed.Notices():
		assert.Equal(t, "could not update your like", notice.Message)
	default:
		t.Fatal("expected a rollback notice")
	}
}

func TestRecordView(t *testing.T) {
	store := common.NewMemStore()
	feed, _, stats := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))

	feed.RecordView(ctx)
	assert.Equal(t, int64(1), feed.Stats().Views)

	feed.Wait()

	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Views)
}

func TestClose(t *testing.T) {
	store := common.NewMemStore()
	feed, _, _ := newTestFeed(t, store)
	ctx := context.Background()

	require.NoError(t, feed.Load(ctx))
	feed.Close()

	_, err := feed.AddComment(ctx, "too late", "")
	assert.ErrorIs(t, err, ErrClosed)

	err = feed.DeleteComment(ctx, "any")
	assert.ErrorIs(t, err, ErrClosed)

	err = feed.ToggleLike(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestState_UnknownId(t *testing.T) {
	store := common.NewMemStore()
	feed, _, _ := newTestFeed(t, store)

	_, ok := feed.State("tmp-unknown")
	assert.False(t, ok)
}
