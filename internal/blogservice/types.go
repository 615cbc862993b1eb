package blogservice

import (
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
)

// Author is denormalized into the blog document; profile data itself lives
// with the identity provider. Email is only used for notification mail and
// never rendered.
type Author struct {
	ID       string `bson:"id" json:"id"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"-"`
}

type Blog struct {
	ID    string `bson:"_id,omitempty" json:"id"`
	Title string `bson:"title" json:"title"`
	// Content is stored in Markdown format.
	Content   string    `bson:"content" json:"content"`
	Author    Author    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type BlogModel struct {
	db common.DocStore
}

type BlogService struct {
	m *BlogModel
	c *common.Cache
}
