package commentservice

import (
	"context"
	"sort"
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
)

func newCommentModel(db common.DocStore) *CommentModel {
	return &CommentModel{db: db}
}

func (m *CommentModel) getComment(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	err := m.db.GetDocument(ctx, common.CollectionComments, id, &comment)
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// getTree loads all comments for a blog newest-first and assembles the
// two-level tree. Replies attach to their parent oldest-first; replies
// whose parent is not in the loaded set are dropped.
func (m *CommentModel) getTree(ctx context.Context, blogId string) ([]*Comment, error) {
	var flat []Comment
	opts := common.QueryOpts{Sort: "created_at", Desc: true}
	err := m.db.Query(ctx, common.CollectionComments, common.Filter{"blog_id": blogId}, opts, &flat)
	if err != nil {
		return nil, err
	}

	tops := make([]*Comment, 0, len(flat))
	byId := make(map[string]*Comment, len(flat))
	var replies []*Comment

	for i := range flat {
		c := &flat[i]
		if c.ParentID == "" {
			c.Replies = []*Comment{}
			tops = append(tops, c)
			byId[c.ID] = c
		} else {
			replies = append(replies, c)
		}
	}

	for _, r := range replies {
		parent, ok := byId[r.ParentID]
		if !ok {
			continue
		}
		parent.Replies = append(parent.Replies, r)
	}

	for _, top := range tops {
		sort.Slice(top.Replies, func(i, j int) bool {
			return top.Replies[i].CreatedAt.Before(top.Replies[j].CreatedAt)
		})
	}

	return tops, nil
}

func (m *CommentModel) insert(ctx context.Context, comment *Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.LikedBy == nil {
		comment.LikedBy = []string{}
	}

	id, err := m.db.CreateDocument(ctx, common.CollectionComments, comment)
	if err != nil {
		return err
	}

	comment.ID = id
	return nil
}

func (m *CommentModel) updateContent(ctx context.Context, id, content string) error {
	fields := common.Fields{
		"content":    content,
		"updated_at": time.Now().UTC(),
	}

	return m.db.UpdateDocument(ctx, common.CollectionComments, id, fields)
}

func (m *CommentModel) delete(ctx context.Context, id string) error {
	return m.db.DeleteDocument(ctx, common.CollectionComments, id)
}

// deleteReplies removes every reply attached to the given parent and
// returns how many were removed.
func (m *CommentModel) deleteReplies(ctx context.Context, blogId, parentId string) (int64, error) {
	return m.db.DeleteDocuments(ctx, common.CollectionComments, common.Filter{"blog_id": blogId, "parent_id": parentId})
}

func (m *CommentModel) setLiked(ctx context.Context, id, userId string, liked bool) error {
	var fields common.Fields
	if liked {
		fields = common.Fields{
			"likes":    common.Inc(1),
			"liked_by": common.AddToSet(userId),
		}
	} else {
		fields = common.Fields{
			"likes":    common.Inc(-1),
			"liked_by": common.Pull(userId),
		}
	}

	return m.db.UpdateDocument(ctx, common.CollectionComments, id, fields)
}
