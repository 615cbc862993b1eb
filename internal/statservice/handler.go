package statservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tofuwabohu/clubist/internal/common"
)

const statsCacheTTL = 30 * time.Second

func NewStatService(db common.DocStore, c *common.Cache, logger *slog.Logger) *StatService {
	return &StatService{m: newStatModel(db), c: c, logger: logger}
}

// GetStats returns the counter document for a blog, creating it with zero
// counters on first access. It never returns an error: if the store fails
// the zero-valued stats are returned so counters still render, and the
// failure is logged.
func (s *StatService) GetStats(ctx context.Context, blogId string) *BlogStats {
	fallback := &BlogStats{BlogID: blogId}

	v := common.NewValidator()
	validateBlogId(v, blogId)
	if !v.Valid() {
		return fallback
	}

	if cached, ok := s.c.Get(common.CacheKeyStats(blogId)); ok {
		if stats, ok := cached.(*BlogStats); ok {
			return stats
		}
	}

	stats, err := s.m.getStats(ctx, blogId)
	if errors.Is(err, common.ErrRecordNotFound) {
		if err := s.m.ensureStats(ctx, blogId); err != nil {
			s.logger.Error("could not create stats document", slog.String("blog_id", blogId), slog.String("error", err.Error()))
			return fallback
		}
		stats, err = s.m.getStats(ctx, blogId)
	}
	if err != nil {
		s.logger.Error("could not read stats document", slog.String("blog_id", blogId), slog.String("error", err.Error()))
		return fallback
	}

	clampCounters(stats)

	s.c.Set(common.CacheKeyStats(blogId), stats, statsCacheTTL)

	return stats
}

// ApplyDelta applies an atomic increment to one counter field. Unlike
// GetStats this propagates store failures: a dropped counter update would
// silently drift the aggregate away from the source collections.
func (s *StatService) ApplyDelta(ctx context.Context, blogId string, field Counter, delta int64) error {
	v := common.NewValidator()
	validateBlogId(v, blogId)
	validateCounter(v, field)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.applyDelta(ctx, blogId, field, delta); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyStats(blogId))

	return nil
}

// IncrementViews bumps the view counter by one.
func (s *StatService) IncrementViews(ctx context.Context, blogId string) error {
	return s.ApplyDelta(ctx, blogId, CounterViews, 1)
}

// Reconcile recomputes the like and comment counters from the source
// collections and overwrites the aggregate, repairing any drift left behind
// by failed increments.
func (s *StatService) Reconcile(ctx context.Context, blogId string) (*BlogStats, error) {
	v := common.NewValidator()
	validateBlogId(v, blogId)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	likes, err := s.m.countLikes(ctx, blogId)
	if err != nil {
		return nil, err
	}

	comments, err := s.m.countComments(ctx, blogId)
	if err != nil {
		return nil, err
	}

	if err := s.m.setCounters(ctx, blogId, likes, comments); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyStats(blogId))

	return s.GetStats(ctx, blogId), nil
}

// Counters never render negative even if deltas drifted below zero.
func clampCounters(stats *BlogStats) {
	if stats.Views < 0 {
		stats.Views = 0
	}
	if stats.Likes < 0 {
		stats.Likes = 0
	}
	if stats.Comments < 0 {
		stats.Comments = 0
	}
}
