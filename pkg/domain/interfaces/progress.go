package interfaces

import (
	"context"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

// ProgressRepository defines the interface for day completion records
type ProgressRepository interface {
	// Set creates or updates the record keyed by (UserID, Topic, Day)
	Set(ctx context.Context, progress *model.Progress) error

	// List returns all records of the user ordered by topic and day
	List(ctx context.Context, userID string) ([]*model.Progress, error)
}
