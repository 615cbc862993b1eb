package likeservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

func setupTestLikeService(t *testing.T) (*LikeService, *statservice.StatService, *common.MemStore) {
	t.Helper()

	store := common.NewMemStore()
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := SetupLikeIndexes(context.Background(), store)
	require.NoError(t, err)

	stats := statservice.NewStatService(store, cache, logger)

	return NewLikeService(store, cache, stats), stats, store
}

func TestToggle(t *testing.T) {
	s, stats, store := setupTestLikeService(t)
	ctx := context.Background()

	liked, err := s.Toggle(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.True(t, liked)

	n, err := store.CountDocuments(ctx, common.CollectionLikes, common.Filter{"blog_id": "b1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Likes)

	liked, err = s.Toggle(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.False(t, liked)

	n, err = store.CountDocuments(ctx, common.CollectionLikes, common.Filter{"blog_id": "b1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, int64(0), stats.GetStats(ctx, "b1").Likes)
}

func TestToggle_Parity(t *testing.T) {
	s, stats, _ := setupTestLikeService(t)
	ctx := context.Background()

	var liked bool
	var err error
	for i := 0; i < 5; i++ {
		liked, err = s.Toggle(ctx, "b1", "u1")
		require.NoError(t, err)
	}

	// odd number of toggles leaves the like in place
	assert.True(t, liked)
	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Likes)

	liked, err = s.Toggle(ctx, "b1", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), stats.GetStats(ctx, "b1").Likes)
}

func TestToggle_PerUser(t *testing.T) {
	s, stats, _ := setupTestLikeService(t)
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		liked, err := s.Toggle(ctx, "b1", user)
		require.NoError(t, err)
		assert.True(t, liked)
	}

	assert.Equal(t, int64(3), stats.GetStats(ctx, "b1").Likes)

	liked, err := s.Toggle(ctx, "b1", "u2")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(2), stats.GetStats(ctx, "b1").Likes)
}

func TestToggle_Validation(t *testing.T) {
	s, _, _ := setupTestLikeService(t)
	ctx := context.Background()

	_, err := s.Toggle(ctx, "", "u1")
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"blog_id": "must be provided"}}, err)

	_, err = s.Toggle(ctx, "b1", "")
	assert.Equal(t, common.ValidationError{Errors: map[string]string{"user_id": "must be provided"}}, err)
}

// blindStore hides existing like records from queries, simulating a
// concurrent toggle that inserts between the lookup and the write.
type blindStore struct {
	*common.MemStore
}

func (s *blindStore) Query(ctx context.Context, collection string, filter common.Filter, opts common.QueryOpts, dest any) error {
	return nil
}

func TestToggle_DuplicateInsertDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()

	mem := common.NewMemStore()
	store := &blindStore{MemStore: mem}
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, SetupLikeIndexes(ctx, mem))

	stats := statservice.NewStatService(mem, cache, logger)
	s := NewLikeService(store, cache, stats)

	// the concurrent toggle already created the record and moved the counter
	_, err := mem.CreateDocument(ctx, common.CollectionLikes, &Like{BlogID: "b1", UserID: "u1", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, stats.ApplyDelta(ctx, "b1", statservice.CounterLikes, 1))

	// this toggle misses the record, collides on insert, and must not
	// move the counter again
	liked, err := s.Toggle(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), stats.GetStats(ctx, "b1").Likes)
}

func TestIsLiked(t *testing.T) {
	s, _, _ := setupTestLikeService(t)
	ctx := context.Background()

	liked, err := s.IsLiked(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.False(t, liked)

	_, err = s.Toggle(ctx, "b1", "u1")
	require.NoError(t, err)

	liked, err = s.IsLiked(ctx, "b1", "u1")
	assert.NoError(t, err)
	assert.True(t, liked)

	_, err = s.IsLiked(ctx, "", "u1")
	assert.Error(t, err)
}
