package statservice

import (
	"log/slog"

	"github.com/tofuwabohu/clubist/internal/common"
)

// BlogStats is the denormalized per-blog counter document. It caches counts
// that are otherwise derivable from the likes and comments collections. The
// document id is the blog id, so concurrent first access converges on a
// single record.
type BlogStats struct {
	BlogID   string `bson:"_id" json:"blog_id"`
	Views    int64  `bson:"views" json:"views"`
	Likes    int64  `bson:"likes" json:"likes"`
	Comments int64  `bson:"comments" json:"comments"`
}

// Counter names the fields of BlogStats that ApplyDelta may increment.
type Counter string

const (
	CounterViews    Counter = "views"
	CounterLikes    Counter = "likes"
	CounterComments Counter = "comments"
)

type StatModel struct {
	db common.DocStore
}

type StatService struct {
	m      *StatModel
	c      *common.Cache
	logger *slog.Logger
}
