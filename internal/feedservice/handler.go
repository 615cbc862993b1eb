package feedservice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/likeservice"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

var (
	ErrClosed         = errors.New("feed is closed")
	ErrToggleInFlight = errors.New("a like toggle is already in flight")
)

const noticeBuffer = 8

func NewFeed(blogId string, user User, comments *commentservice.CommentService, likes *likeservice.LikeService, stats *statservice.StatService) *Feed {
	return &Feed{
		blogId:   blogId,
		user:     user,
		comments: comments,
		likes:    likes,
		stats:    stats,
		pending:  make(map[string]*pendingUpdate),
		notices:  make(chan Notice, noticeBuffer),
	}
}

// Load fetches the comment tree, the viewer's like state, and the blog
// stats to initialize the view model.
func (f *Feed) Load(ctx context.Context) error {
	tree, err := f.comments.Load(ctx, f.blogId)
	if err != nil {
		return err
	}

	liked, err := f.likes.IsLiked(ctx, f.blogId, f.user.ID)
	if err != nil {
		return err
	}

	stats := f.stats.GetStats(ctx, f.blogId)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.tree = tree
	f.liked = liked
	f.blogStats = *stats

	return nil
}

// Comments returns a snapshot of the top-level comment list. Callers must
// not mutate the returned comments.
func (f *Feed) Comments() []*commentservice.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*commentservice.Comment, len(f.tree))
	copy(out, f.tree)

	return out
}

func (f *Feed) Stats() statservice.BlogStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.blogStats
}

func (f *Feed) Liked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.liked
}

// State reports the lifecycle state of an optimistic entity by its
// placeholder id.
func (f *Feed) State(tempId string) (PendingState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.pending[tempId]
	if !ok {
		return 0, false
	}

	return p.state, true
}

// Notices delivers user-visible failure messages for rolled-back updates.
func (f *Feed) Notices() <-chan Notice {
	return f.notices
}

// Wait blocks until every in-flight mutation has resolved.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// Close detaches the feed from its consumers. Mutations still in flight
// run to completion against the store, but their responses are no longer
// applied to the view model.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

// AddComment splices a placeholder comment into the tree immediately and
// issues the store write in the background. On success the placeholder id
// is swapped for the server-assigned id in place; on failure the
// placeholder is removed and a notice is emitted. The placeholder id is
// returned so callers can track the entity's state.
func (f *Feed) AddComment(ctx context.Context, content, parentId string) (string, error) {
	v := common.NewValidator()
	v.Check(v.CheckNotBlank(content), "content", "must be provided")
	if !v.Valid() {
		return "", v.ValidationError()
	}

	now := time.Now().UTC()
	placeholder := &commentservice.Comment{
		ID:        newTempId(),
		BlogID:    f.blogId,
		UserID:    f.user.ID,
		Username:  f.user.Username,
		Content:   content,
		LikedBy:   []string{},
		ParentID:  parentId,
		CreatedAt: now,
		UpdatedAt: now,
		Replies:   []*commentservice.Comment{},
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return "", ErrClosed
	}

	if parentId == "" {
		// Top-level comments render newest first.
		f.tree = append([]*commentservice.Comment{placeholder}, f.tree...)
	} else {
		parent := f.findComment(parentId)
		if parent == nil || parent.ParentID != "" {
			f.mu.Unlock()
			return "", commentservice.ErrParentNotFound
		}
		// Replies render oldest first, so the new one goes last.
		parent.Replies = append(parent.Replies, placeholder)
	}

	f.pending[placeholder.ID] = &pendingUpdate{state: StatePending}
	f.blogStats.Comments++
	f.mu.Unlock()

	req := &commentservice.CreateCommentRequest{
		BlogID:   f.blogId,
		UserID:   f.user.ID,
		Username: f.user.Username,
		Content:  content,
		ParentID: parentId,
	}

	tempId := placeholder.ID

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		created, err := f.comments.Create(ctx, req)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.closed {
			return
		}

		p := f.pending[tempId]
		if err != nil {
			f.removeComment(tempId)
			f.blogStats.Comments--
			p.state = StateRolledBack
			f.pushNotice("could not post your comment", err)
			return
		}

		// The placeholder content is trusted as-is; only the id changes.
		placeholder.ID = created.ID
		p.state = StateConfirmed
	}()

	return tempId, nil
}

// DeleteComment removes a comment from the tree immediately and issues the
// store delete in the background, restoring the comment and emitting a
// notice if the delete fails. A comment that is already gone on the server
// counts as deleted.
func (f *Feed) DeleteComment(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}

	removed := f.findComment(id)
	if removed == nil {
		f.mu.Unlock()
		return common.ErrRecordNotFound
	}

	f.removeComment(id)
	delta := int64(1)
	if removed.ParentID == "" {
		delta += int64(len(removed.Replies))
	}
	f.blogStats.Comments -= delta
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		err := f.comments.Delete(ctx, id, f.blogId, f.user.ID)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.closed {
			return
		}

		if err != nil && !errors.Is(err, common.ErrRecordNotFound) {
			f.restoreComment(removed)
			f.blogStats.Comments += delta
			f.pushNotice("could not delete the comment", err)
		}
	}()

	return nil
}

// ToggleLike flips the viewer's like state and count immediately and
// reconciles with the server once the toggle resolves. While a toggle is
// in flight further toggles are refused; the control should be disabled
// until the first one lands.
func (f *Feed) ToggleLike(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.likeInFlight {
		f.mu.Unlock()
		return ErrToggleInFlight
	}

	f.likeInFlight = true
	f.liked = !f.liked
	delta := int64(-1)
	if f.liked {
		delta = 1
	}
	f.blogStats.Likes += delta
	if f.blogStats.Likes < 0 {
		f.blogStats.Likes = 0
	}
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		newState, err := f.likes.Toggle(ctx, f.blogId, f.user.ID)

		f.mu.Lock()
		defer f.mu.Unlock()

		f.likeInFlight = false

		if f.closed {
			return
		}

		if err != nil {
			f.liked = !f.liked
			f.blogStats.Likes -= delta
			f.pushNotice("could not update your like", err)
			return
		}

		// A disagreement means another session toggled concurrently; take
		// the server's state and undo the speculative count. The counter
		// converges on the next stats read.
		if newState != f.liked {
			f.liked = newState
			f.blogStats.Likes -= delta
		}
	}()

	return nil
}

// RecordView bumps the view counter optimistically and persists the
// increment in the background.
func (f *Feed) RecordView(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.blogStats.Views++
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		err := f.stats.IncrementViews(ctx, f.blogId)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.closed {
			return
		}

		if err != nil {
			f.blogStats.Views--
			f.pushNotice("could not record the view", err)
		}
	}()
}

// findComment locates a comment or reply by id. Callers hold the mutex.
func (f *Feed) findComment(id string) *commentservice.Comment {
	for _, top := range f.tree {
		if top.ID == id {
			return top
		}
		for _, reply := range top.Replies {
			if reply.ID == id {
				return reply
			}
		}
	}

	return nil
}

// removeComment drops a comment or reply from the tree. Callers hold the
// mutex.
func (f *Feed) removeComment(id string) {
	for i, top := range f.tree {
		if top.ID == id {
			f.tree = append(f.tree[:i], f.tree[i+1:]...)
			return
		}
		for j, reply := range top.Replies {
			if reply.ID == id {
				top.Replies = append(top.Replies[:j], top.Replies[j+1:]...)
				return
			}
		}
	}
}

// restoreComment puts a previously removed comment back in display order.
// Callers hold the mutex.
func (f *Feed) restoreComment(c *commentservice.Comment) {
	if c.ParentID == "" {
		pos := len(f.tree)
		for i, top := range f.tree {
			if top.CreatedAt.Before(c.CreatedAt) {
				pos = i
				break
			}
		}
		f.tree = append(f.tree[:pos], append([]*commentservice.Comment{c}, f.tree[pos:]...)...)
		return
	}

	parent := f.findComment(c.ParentID)
	if parent == nil {
		return
	}

	pos := len(parent.Replies)
	for i, reply := range parent.Replies {
		if reply.CreatedAt.After(c.CreatedAt) {
			pos = i
			break
		}
	}
	parent.Replies = append(parent.Replies[:pos], append([]*commentservice.Comment{c}, parent.Replies[pos:]...)...)
}

func (f *Feed) pushNotice(message string, err error) {
	select {
	case f.notices <- Notice{Message: message, Err: err}:
	default:
	}
}

func newTempId() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "tmp-" + hex.EncodeToString(b)
}
