package common

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// Collection names used across the services.
const (
	CollectionBlogs    = "blogs"
	CollectionComments = "comments"
	CollectionLikes    = "likes"
	CollectionStats    = "blog_stats"
)

// Filter matches documents by field equality. A Regex value matches the
// field against a case-insensitive pattern instead.
type Filter map[string]any

// Regex is a Filter value that matches a string field case-insensitively.
type Regex string

// Fields holds a partial update. Plain values are set as-is; Inc, AddToSet
// and Pull values translate to atomic field operations on the store.
type Fields map[string]any

// Inc atomically adds the given amount to a numeric field.
type Inc int64

// AddToSet appends a value to an array field unless it is already present.
type AddToSet string

// Pull removes a value from an array field.
type Pull string

// QueryOpts controls ordering and pagination of a Query.
type QueryOpts struct {
	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

// DocStore is the capability set the services need from the document
// database: keyed reads, predicate queries, creates, partial updates with
// atomic increments, upserts, and deletes. MongoStore is the production
// implementation and MemStore the in-memory one.
type DocStore interface {
	// GetDocument decodes the document with the given id into dest.
	// Returns ErrRecordNotFound if it does not exist.
	GetDocument(ctx context.Context, collection, id string, dest any) error

	// Query decodes all documents matching the filter into dest, which must
	// be a pointer to a slice.
	Query(ctx context.Context, collection string, filter Filter, opts QueryOpts, dest any) error

	// CountDocuments returns the number of documents matching the filter.
	CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error)

	// CreateDocument inserts data and returns the assigned document id.
	// Returns ErrDuplicateKey if a unique index rejects the document.
	CreateDocument(ctx context.Context, collection string, data any) (string, error)

	// UpdateDocument applies a partial update to the document with the
	// given id. Returns ErrRecordNotFound if it does not exist.
	UpdateDocument(ctx context.Context, collection, id string, fields Fields) error

	// UpsertDocument applies update to the document with the given id,
	// creating it from insert first when absent. The whole operation is a
	// single atomic write; insert and update must not share fields.
	UpsertDocument(ctx context.Context, collection, id string, insert, update Fields) error

	// DeleteDocument removes the document with the given id. Returns
	// ErrRecordNotFound if nothing was deleted.
	DeleteDocument(ctx context.Context, collection, id string) error

	// DeleteDocuments removes all documents matching the filter and
	// returns how many were deleted.
	DeleteDocuments(ctx context.Context, collection string, filter Filter) (int64, error)

	// EnsureUniqueIndex creates a unique compound index over the given
	// fields if it does not exist yet.
	EnsureUniqueIndex(ctx context.Context, collection string, fields ...string) error
}
