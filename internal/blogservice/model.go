package blogservice

import (
	"context"
	"errors"
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
)

func newBlogModel(db common.DocStore) *BlogModel {
	return &BlogModel{db: db}
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	id, err := m.db.CreateDocument(ctx, common.CollectionBlogs, blog)
	if err != nil {
		return err
	}

	blog.ID = id
	return nil
}

func (m *BlogModel) getBlogById(ctx context.Context, id string) (*Blog, error) {
	var blog Blog
	err := m.db.GetDocument(ctx, common.CollectionBlogs, id, &blog)
	if err != nil {
		return nil, err
	}

	return &blog, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, id, title, content string) error {
	fields := common.Fields{
		"title":      title,
		"content":    content,
		"updated_at": time.Now().UTC(),
	}

	return m.db.UpdateDocument(ctx, common.CollectionBlogs, id, fields)
}

// deleteBlog removes the blog together with everything hanging off it: the
// stats document, the like records, and the comments.
func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	if err := m.db.DeleteDocument(ctx, common.CollectionBlogs, id); err != nil {
		return err
	}

	if err := m.db.DeleteDocument(ctx, common.CollectionStats, id); err != nil && !errors.Is(err, common.ErrRecordNotFound) {
		return err
	}

	if _, err := m.db.DeleteDocuments(ctx, common.CollectionLikes, common.Filter{"blog_id": id}); err != nil {
		return err
	}

	if _, err := m.db.DeleteDocuments(ctx, common.CollectionComments, common.Filter{"blog_id": id}); err != nil {
		return err
	}

	return nil
}

func (m *BlogModel) getBlogsByAuthor(ctx context.Context, authorId string) ([]Blog, error) {
	var blogs []Blog
	opts := common.QueryOpts{Sort: "created_at", Desc: true}
	err := m.db.Query(ctx, common.CollectionBlogs, common.Filter{"author.id": authorId}, opts, &blogs)
	if err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) getBlogs(ctx context.Context, limit, offset int) ([]Blog, error) {
	var blogs []Blog
	opts := common.QueryOpts{Sort: "created_at", Desc: true, Limit: limit, Offset: offset}
	err := m.db.Query(ctx, common.CollectionBlogs, nil, opts, &blogs)
	if err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) getBlogsByTitle(ctx context.Context, title string, limit, offset int) ([]Blog, error) {
	var blogs []Blog
	opts := common.QueryOpts{Sort: "created_at", Desc: true, Limit: limit, Offset: offset}
	err := m.db.Query(ctx, common.CollectionBlogs, common.Filter{"title": common.Regex(title)}, opts, &blogs)
	if err != nil {
		return nil, err
	}

	return blogs, nil
}
