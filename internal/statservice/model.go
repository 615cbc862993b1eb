package statservice

import (
	"context"

	"github.com/tofuwabohu/clubist/internal/common"
)

func newStatModel(db common.DocStore) *StatModel {
	return &StatModel{db: db}
}

func (m *StatModel) getStats(ctx context.Context, blogId string) (*BlogStats, error) {
	var stats BlogStats
	err := m.db.GetDocument(ctx, common.CollectionStats, blogId, &stats)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// ensureStats creates the zeroed counter document if it does not exist yet.
// The upsert only sets fields on insert, so two concurrent callers converge
// on the same record without clobbering counters that already moved.
func (m *StatModel) ensureStats(ctx context.Context, blogId string) error {
	insert := common.Fields{
		"views":    int64(0),
		"likes":    int64(0),
		"comments": int64(0),
	}

	return m.db.UpsertDocument(ctx, common.CollectionStats, blogId, insert, nil)
}

// applyDelta increments one counter field through a single atomic
// upsert-with-increment. A missing document is created and incremented in
// the same write, so there is no check-then-act window on first access.
func (m *StatModel) applyDelta(ctx context.Context, blogId string, field Counter, delta int64) error {
	insert := common.Fields{}
	for _, c := range []Counter{CounterViews, CounterLikes, CounterComments} {
		if c != field {
			insert[string(c)] = int64(0)
		}
	}

	update := common.Fields{string(field): common.Inc(delta)}

	return m.db.UpsertDocument(ctx, common.CollectionStats, blogId, insert, update)
}

// setCounters overwrites the like and comment counters with recomputed
// source-of-truth values.
func (m *StatModel) setCounters(ctx context.Context, blogId string, likes, comments int64) error {
	insert := common.Fields{"views": int64(0)}
	update := common.Fields{
		"likes":    likes,
		"comments": comments,
	}

	return m.db.UpsertDocument(ctx, common.CollectionStats, blogId, insert, update)
}

func (m *StatModel) countLikes(ctx context.Context, blogId string) (int64, error) {
	return m.db.CountDocuments(ctx, common.CollectionLikes, common.Filter{"blog_id": blogId})
}

func (m *StatModel) countComments(ctx context.Context, blogId string) (int64, error) {
	return m.db.CountDocuments(ctx, common.CollectionComments, common.Filter{"blog_id": blogId})
}
