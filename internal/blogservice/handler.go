package blogservice

import (
	"context"
	"errors"

	"github.com/tofuwabohu/clubist/internal/common"
)

var ErrNotOwner = errors.New("blog belongs to another user")

func NewBlogService(db common.DocStore, c *common.Cache) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c}
}

type CreateBlogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  Author `json:"author"`
}

// CreateBlog publishes a new blog post and returns it with the assigned id.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateAuthor(v, req.Author)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := &Blog{
		Title:   req.Title,
		Content: sanitizeMarkdown(req.Content),
		Author:  req.Author,
	}

	if err := s.m.insert(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

// GetBlogByID returns a blog post by its id.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	v := common.NewValidator()
	validateId(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		if blog, ok := cached.(*Blog); ok {
			return blog, nil
		}
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// UpdateBlog replaces the title and content of a blog post. Only the author
// can update it.
func (s *BlogService) UpdateBlog(ctx context.Context, id, userId, title, content string) error {
	v := common.NewValidator()
	validateId(v, id, "id")
	validateId(v, userId, "user_id")
	validateTitle(v, title)
	validateContent(v, content)
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return err
	}

	if blog.Author.ID != userId {
		return ErrNotOwner
	}

	if err := s.m.updateBlog(ctx, id, title, sanitizeMarkdown(content)); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(id))

	return nil
}

// DeleteBlog removes a blog post together with its stats, likes, and
// comments. Only the author can delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, id, userId string) error {
	v := common.NewValidator()
	validateId(v, id, "id")
	validateId(v, userId, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return err
	}

	if blog.Author.ID != userId {
		return ErrNotOwner
	}

	if err := s.m.deleteBlog(ctx, id); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(id))

	return nil
}

// GetBlogsByAuthor returns all blog posts by one author, newest first.
func (s *BlogService) GetBlogsByAuthor(ctx context.Context, authorId string) ([]Blog, error) {
	v := common.NewValidator()
	validateId(v, authorId, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getBlogsByAuthor(ctx, authorId)
}

// GetBlogs returns all blog posts. Default limit is 10 and default offset
// is 0.
func (s *BlogService) GetBlogs(ctx context.Context, limit, offset *int) ([]Blog, error) {
	if *limit < 1 {
		*limit = 10
	}

	if *offset < 0 {
		*offset = 0
	}

	return s.m.getBlogs(ctx, *limit, *offset)
}

// GetBlogsByTitle searches blog posts by a case-insensitive title match.
func (s *BlogService) GetBlogsByTitle(ctx context.Context, title string, limit, offset *int) ([]Blog, error) {
	v := common.NewValidator()
	validateTitle(v, title)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if *limit < 1 {
		*limit = 10
	}

	if *offset < 0 {
		*offset = 0
	}

	return s.m.getBlogsByTitle(ctx, title, *limit, *offset)
}
