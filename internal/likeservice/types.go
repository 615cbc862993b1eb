package likeservice

import (
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

// Like records that one user likes one blog. A unique (blog_id, user_id)
// index keeps the pair to at most one active record.
type Like struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	BlogID    string    `bson:"blog_id" json:"blog_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type LikeModel struct {
	db common.DocStore
}

type LikeService struct {
	m     *LikeModel
	c     *common.Cache
	stats *statservice.StatService
}
