package likeservice

import (
	"context"
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
)

func newLikeModel(db common.DocStore) *LikeModel {
	return &LikeModel{db: db}
}

// SetupLikeIndexes creates the unique (blog_id, user_id) index that backs
// the one-like-per-user invariant at the store level.
func SetupLikeIndexes(ctx context.Context, db common.DocStore) error {
	return db.EnsureUniqueIndex(ctx, common.CollectionLikes, "blog_id", "user_id")
}

func (m *LikeModel) getLike(ctx context.Context, blogId, userId string) (*Like, error) {
	var likes []Like
	err := m.db.Query(ctx, common.CollectionLikes, common.Filter{"blog_id": blogId, "user_id": userId}, common.QueryOpts{}, &likes)
	if err != nil {
		return nil, err
	}

	if len(likes) == 0 {
		return nil, common.ErrRecordNotFound
	}

	return &likes[0], nil
}

func (m *LikeModel) insert(ctx context.Context, blogId, userId string) (string, error) {
	like := Like{
		BlogID:    blogId,
		UserID:    userId,
		CreatedAt: time.Now().UTC(),
	}

	return m.db.CreateDocument(ctx, common.CollectionLikes, like)
}

func (m *LikeModel) delete(ctx context.Context, id string) error {
	return m.db.DeleteDocument(ctx, common.CollectionLikes, id)
}
