package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the MongoStore against a real database container and
// mirror the MemStore tests, so both implementations are held to the same
// observable behavior.

func TestMongoStore_CreateGetDelete(t *testing.T) {
	s := TestMongoStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, "docs", &testDoc{BlogID: "b1", UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var got testDoc
	err = s.GetDocument(ctx, "docs", id, &got)
	assert.NoError(t, err)
	assert.Equal(t, "b1", got.BlogID)

	err = s.DeleteDocument(ctx, "docs", id)
	assert.NoError(t, err)

	err = s.GetDocument(ctx, "docs", id, &got)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = s.DeleteDocument(ctx, "docs", id)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMongoStore_UpdateDocument(t *testing.T) {
	s := TestMongoStore(t)
	ctx := context.Background()

	id, err := s.CreateDocument(ctx, "docs", &testDoc{BlogID: "b1", Likes: 1})
	require.NoError(t, err)

	err = s.UpdateDocument(ctx, "docs", id, Fields{
		"likes":    Inc(2),
		"liked_by": AddToSet("u1"),
	})
	assert.NoError(t, err)

	var got testDoc
	err = s.GetDocument(ctx, "docs", id, &got)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Likes)
	assert.Equal(t, []string{"u1"}, got.LikedBy)

	err = s.UpdateDocument(ctx, "docs", id, Fields{"liked_by": Pull("u1")})
	assert.NoError(t, err)

	err = s.GetDocument(ctx, "docs", id, &got)
	require.NoError(t, err)
	assert.Empty(t, got.LikedBy)

	err = s.UpdateDocument(ctx, "docs", "missing", Fields{"likes": Inc(1)})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMongoStore_UpsertDocument(t *testing.T) {
	s := TestMongoStore(t)
	ctx := context.Background()

	err := s.UpsertDocument(ctx, "stats", "b1", Fields{"likes": int64(0)}, Fields{"views": Inc(1)})
	require.NoError(t, err)

	var got struct {
		Views int64 `bson:"views"`
		Likes int64 `bson:"likes"`
	}
	err = s.GetDocument(ctx, "stats", "b1", &got)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	assert.Equal(t, int64(0), got.Likes)

	err = s.UpsertDocument(ctx, "stats", "b1", Fields{"likes": int64(99)}, Fields{"views": Inc(1)})
	require.NoError(t, err)

	err = s.GetDocument(ctx, "stats", "b1", &got)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, int64(0), got.Likes)
}

func TestMongoStore_QueryAndCount(t *testing.T) {
	s := TestMongoStore(t)
	ctx := context.Background()

	for i, blog := range []string{"b1", "b1", "b2"} {
		_, err := s.CreateDocument(ctx, "docs", &testDoc{BlogID: blog, Likes: int64(i), Author: testOwner{ID: "a1"}})
		require.NoError(t, err)
	}

	var docs []testDoc
	err := s.Query(ctx, "docs", Filter{"blog_id": "b1"}, QueryOpts{Sort: "likes", Desc: true}, &docs)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].Likes)

	err = s.Query(ctx, "docs", Filter{"author.id": "a1"}, QueryOpts{}, &docs)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	n, err := s.CountDocuments(ctx, "docs", Filter{"blog_id": "b1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	deleted, err := s.DeleteDocuments(ctx, "docs", Filter{"blog_id": "b1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestMongoStore_UniqueIndex(t *testing.T) {
	s := TestMongoStore(t)
	ctx := context.Background()

	err := s.EnsureUniqueIndex(ctx, "likes", "blog_id", "user_id")
	require.NoError(t, err)

	_, err = s.CreateDocument(ctx, "likes", &testDoc{BlogID: "b1", UserID: "u1"})
	require.NoError(t, err)

	_, err = s.CreateDocument(ctx, "likes", &testDoc{BlogID: "b1", UserID: "u1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.CreateDocument(ctx, "likes", &testDoc{BlogID: "b1", UserID: "u2"})
	assert.NoError(t, err)
}
