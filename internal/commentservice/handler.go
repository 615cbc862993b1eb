package commentservice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

var (
	ErrParentNotFound = errors.New("parent comment does not exist")
	ErrNestedReply    = errors.New("cannot reply to a reply")
	ErrNotOwner       = errors.New("comment belongs to another user")
)

func NewCommentService(db common.DocStore, stats *statservice.StatService, mb common.MessageProducer) *CommentService {
	return &CommentService{m: newCommentModel(db), stats: stats, mb: mb}
}

type CreateCommentRequest struct {
	BlogID   string `json:"blog_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

// Load returns the comment tree for a blog: top-level comments newest
// first, each carrying its replies oldest first.
func (s *CommentService) Load(ctx context.Context, blogId string) ([]*Comment, error) {
	v := common.NewValidator()
	validateId(v, blogId, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getTree(ctx, blogId)
}

// Create persists a new comment or reply and bumps the blog comment
// counter. A reply must point at an existing top-level comment of the same
// blog. The returned comment carries the assigned id.
func (s *CommentService) Create(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateId(v, req.BlogID, "blog_id")
	validateId(v, req.UserID, "user_id")
	validateId(v, req.Username, "username")
	validateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.ParentID != "" {
		parent, err := s.m.getComment(ctx, req.ParentID)
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, ErrParentNotFound
		case err != nil:
			return nil, err
		case parent.BlogID != req.BlogID:
			return nil, ErrParentNotFound
		case parent.ParentID != "":
			return nil, ErrNestedReply
		}
	}

	comment := &Comment{
		BlogID:   req.BlogID,
		UserID:   req.UserID,
		Username: req.Username,
		Content:  strings.TrimSpace(req.Content),
		ParentID: req.ParentID,
	}

	if err := s.m.insert(ctx, comment); err != nil {
		return nil, err
	}

	// Replies count against the same blog-level counter as top-level
	// comments.
	if err := s.stats.ApplyDelta(ctx, req.BlogID, statservice.CounterComments, 1); err != nil {
		return nil, err
	}

	if err := s.publishCreated(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// UpdateContent replaces the text of the caller's own comment.
func (s *CommentService) UpdateContent(ctx context.Context, id, userId, content string) error {
	v := common.NewValidator()
	validateId(v, id, "id")
	validateId(v, userId, "user_id")
	validateContent(v, content)
	if !v.Valid() {
		return v.ValidationError()
	}

	comment, err := s.m.getComment(ctx, id)
	if err != nil {
		return err
	}

	if comment.UserID != userId {
		return ErrNotOwner
	}

	return s.m.updateContent(ctx, id, strings.TrimSpace(content))
}

// Delete removes a comment and keeps the blog comment counter in step.
// Deleting a top-level comment cascades to its replies, so the counter
// moves by one plus the number of replies removed. Deleting a comment that
// is already gone returns ErrRecordNotFound without touching the counter;
// callers treat that as an acceptable no-op.
func (s *CommentService) Delete(ctx context.Context, id, blogId, userId string) error {
	v := common.NewValidator()
	validateId(v, id, "id")
	validateId(v, blogId, "blog_id")
	validateId(v, userId, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	comment, err := s.m.getComment(ctx, id)
	if err != nil {
		return err
	}

	if comment.BlogID != blogId {
		return common.ErrRecordNotFound
	}

	if comment.UserID != userId {
		return ErrNotOwner
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	removed := int64(1)
	if comment.ParentID == "" {
		n, err := s.m.deleteReplies(ctx, blogId, id)
		if err != nil {
			return err
		}
		removed += n
	}

	return s.stats.ApplyDelta(ctx, blogId, statservice.CounterComments, -removed)
}

// ToggleLike flips whether the user likes the comment and returns the new
// state with the updated count.
func (s *CommentService) ToggleLike(ctx context.Context, id, userId string) (bool, int64, error) {
	v := common.NewValidator()
	validateId(v, id, "id")
	validateId(v, userId, "user_id")
	if !v.Valid() {
		return false, 0, v.ValidationError()
	}

	comment, err := s.m.getComment(ctx, id)
	if err != nil {
		return false, 0, err
	}

	liked := true
	for _, u := range comment.LikedBy {
		if u == userId {
			liked = false
			break
		}
	}

	if err := s.m.setLiked(ctx, id, userId, liked); err != nil {
		return false, 0, err
	}

	if liked {
		return true, comment.Likes + 1, nil
	}
	return false, comment.Likes - 1, nil
}

// publishCreated emits a comment.created event carrying what the mail
// consumer needs to notify the blog author. Blogs outside the blogs
// collection or authors without an email address produce no event.
func (s *CommentService) publishCreated(ctx context.Context, comment *Comment) error {
	if s.mb == nil {
		return nil
	}

	var blog struct {
		Title  string `bson:"title"`
		Author struct {
			Username string `bson:"username"`
			Email    string `bson:"email"`
		} `bson:"author"`
	}

	err := s.m.db.GetDocument(ctx, common.CollectionBlogs, comment.BlogID, &blog)
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	}

	if blog.Author.Email == "" || blog.Author.Username == comment.Username {
		return nil
	}

	data := struct {
		Email     string
		BlogTitle string
		Username  string
	}{
		Email:     blog.Author.Email,
		BlogTitle: blog.Title,
		Username:  comment.Username,
	}

	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, msg, common.CommentCreatedKey, common.CommentExchange)
}
