package feedservice

import (
	"sync"

	"github.com/tofuwabohu/clubist/internal/commentservice"
	"github.com/tofuwabohu/clubist/internal/likeservice"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

// PendingState tracks one optimistic entity through its lifecycle. Pending
// is the initial state; Confirmed and RolledBack are terminal.
type PendingState int

const (
	StatePending PendingState = iota
	StateConfirmed
	StateRolledBack
)

func (s PendingState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Notice is a user-visible failure message emitted when an optimistic
// update has to be rolled back.
type Notice struct {
	Message string
	Err     error
}

// User identifies the viewer. Identity always arrives as an explicit
// parameter, never from ambient session state.
type User struct {
	ID       string
	Username string
}

// Feed is the per-blog view model. It applies likes, comments, and view
// counts to its in-memory state immediately, issues the store mutations
// asynchronously, and reconciles or rolls back when they resolve.
type Feed struct {
	blogId string
	user   User

	comments *commentservice.CommentService
	likes    *likeservice.LikeService
	stats    *statservice.StatService

	mu           sync.Mutex
	tree         []*commentservice.Comment
	blogStats    statservice.BlogStats
	liked        bool
	likeInFlight bool
	pending      map[string]*pendingUpdate
	closed       bool

	wg      sync.WaitGroup
	notices chan Notice
}

type pendingUpdate struct {
	state PendingState
}
