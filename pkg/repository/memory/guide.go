package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

type guideKey struct {
	userID string
	topic  string
}

type guideRepository struct {
	mu     sync.RWMutex
	guides map[guideKey]map[int]*model.DayEntry
}

func newGuideRepository() *guideRepository {
	return &guideRepository{
		guides: make(map[guideKey]map[int]*model.DayEntry),
	}
}

func (r *guideRepository) List(ctx context.Context, userID, topic string) ([]*model.DayEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	days := r.guides[guideKey{userID: userID, topic: topic}]
	entries := make([]*model.DayEntry, 0, len(days))
	for _, e := range days {
		// Return a copy to prevent external modification
		entries = append(entries, e.Copy())
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Day < entries[j].Day
	})

	return entries, nil
}

func (r *guideRepository) PutIfAbsent(ctx context.Context, userID, topic string, entries []*model.DayEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := guideKey{userID: userID, topic: topic}
	days, ok := r.guides[key]
	if !ok {
		days = make(map[int]*model.DayEntry)
		r.guides[key] = days
	}

	inserted := 0
	for _, e := range entries {
		if _, exists := days[e.Day]; exists {
			continue
		}
		days[e.Day] = e.Copy()
		inserted++
	}

	return inserted, nil
}
