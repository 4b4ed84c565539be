package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

type progressKey struct {
	topic string
	day   int
}

type progressRepository struct {
	mu      sync.RWMutex
	records map[string]map[progressKey]*model.Progress
}

func newProgressRepository() *progressRepository {
	return &progressRepository{
		records: make(map[string]map[progressKey]*model.Progress),
	}
}

func (r *progressRepository) Set(ctx context.Context, progress *model.Progress) error {
	if progress == nil {
		return goerr.New("progress is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.records[progress.UserID]
	if !ok {
		user = make(map[progressKey]*model.Progress)
		r.records[progress.UserID] = user
	}

	stored := *progress
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	user[progressKey{topic: progress.Topic, day: progress.Day}] = &stored
	return nil
}

func (r *progressRepository) List(ctx context.Context, userID string) ([]*model.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user := r.records[userID]
	result := make([]*model.Progress, 0, len(user))
	for _, p := range user {
		copied := *p
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Topic != result[j].Topic {
			return result[i].Topic < result[j].Topic
		}
		return result[i].Day < result[j].Day
	})

	return result, nil
}
