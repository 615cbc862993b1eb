package likeservice

import (
	"context"
	"errors"
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
	"github.com/tofuwabohu/clubist/internal/statservice"
)

const likedCacheTTL = 30 * time.Second

func NewLikeService(db common.DocStore, c *common.Cache, stats *statservice.StatService) *LikeService {
	return &LikeService{m: newLikeModel(db), c: c, stats: stats}
}

// IsLiked reports whether an active like record exists for the pair. Used
// on page load to initialize the like control.
func (s *LikeService) IsLiked(ctx context.Context, blogId, userId string) (bool, error) {
	v := common.NewValidator()
	validatePair(v, blogId, userId)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyLiked(blogId, userId)); ok {
		if liked, ok := cached.(bool); ok {
			return liked, nil
		}
	}

	_, err := s.m.getLike(ctx, blogId, userId)
	switch {
	case err == nil:
		s.c.Set(common.CacheKeyLiked(blogId, userId), true, likedCacheTTL)
		return true, nil
	case errors.Is(err, common.ErrRecordNotFound):
		s.c.Set(common.CacheKeyLiked(blogId, userId), false, likedCacheTTL)
		return false, nil
	default:
		return false, err
	}
}

// Toggle flips the like relationship for the pair and keeps the aggregate
// like counter in step, returning the new state. The lookup and the write
// are separate steps; the unique (blog_id, user_id) index catches the
// create side of a rapid double toggle, and a vanished record catches the
// delete side. Neither race moves the counter twice.
func (s *LikeService) Toggle(ctx context.Context, blogId, userId string) (bool, error) {
	v := common.NewValidator()
	validatePair(v, blogId, userId)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	defer s.c.Delete(common.CacheKeyLiked(blogId, userId))

	like, err := s.m.getLike(ctx, blogId, userId)
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		_, err := s.m.insert(ctx, blogId, userId)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrDuplicateKey):
				// A concurrent toggle created the record and already
				// moved the counter.
				return true, nil
			default:
				return false, err
			}
		}

		if err := s.stats.ApplyDelta(ctx, blogId, statservice.CounterLikes, 1); err != nil {
			return false, err
		}

		return true, nil
	case err != nil:
		return false, err
	default:
		err := s.m.delete(ctx, like.ID)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrRecordNotFound):
				// A concurrent toggle deleted the record and already
				// moved the counter.
				return false, nil
			default:
				return false, err
			}
		}

		if err := s.stats.ApplyDelta(ctx, blogId, statservice.CounterLikes, -1); err != nil {
			return false, err
		}

		return false, nil
	}
}
