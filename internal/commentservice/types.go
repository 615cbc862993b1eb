package commentservice

import (
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

// Comment is a single comment record. A comment with no ParentID is
// top-level; one with ParentID set is a reply to a top-level comment.
// Nesting stops there: a reply never carries replies of its own.
type Comment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	BlogID    string    `bson:"blog_id" json:"blog_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Content   string    `bson:"content" json:"content"`
	Likes     int64     `bson:"likes" json:"likes"`
	LikedBy   []string  `bson:"liked_by" json:"liked_by"`
	ParentID  string    `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Replies is populated when loading the tree, never persisted.
	Replies []*Comment `bson:"-" json:"replies,omitempty"`
}

type CommentModel struct {
	db common.DocStore
}

type CommentService struct {
	m     *CommentModel
	stats *statservice.StatService
	mb    common.MessageProducer
}
