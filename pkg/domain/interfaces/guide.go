package interfaces

import (
	"context"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

// GuideRepository defines the interface for committed guide persistence.
// Rows are keyed by (userID, topic, day).
type GuideRepository interface {
	// List returns the committed day entries ordered by day. An empty result means no
	// guide has been committed for the key, fewer than model.GuideDays entries means a
	// commit stopped partway.
	List(ctx context.Context, userID, topic string) ([]*model.DayEntry, error)

	// PutIfAbsent inserts entries whose day is not yet stored and leaves existing days
	// untouched. It returns the number of inserted rows.
	PutIfAbsent(ctx context.Context, userID, topic string, entries []*model.DayEntry) (int, error)
}
