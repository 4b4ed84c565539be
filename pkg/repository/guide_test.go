package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

func makeEntries(days ...int) []*model.DayEntry {
	entries := make([]*model.DayEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, &model.DayEntry{
			Day:        d,
			Title:      fmt.Sprintf("Day %d", d),
			Approaches: []string{fmt.Sprintf("approach %d-a", d), fmt.Sprintf("approach %d-b", d)},
		})
	}
	return entries
}

func runGuideRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List returns empty for unknown key", func(t *testing.T) {
		repo := newRepo(t)
		entries, err := repo.Guide().List(context.Background(), newID("user"), "Building Confidence")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})

	t.Run("PutIfAbsent stores entries ordered by day", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newID("user")

		n, err := repo.Guide().PutIfAbsent(ctx, userID, "Saving Your First $1,000", makeEntries(3, 1, 2))
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(3)

		entries, err := repo.Guide().List(ctx, userID, "Saving Your First $1,000")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3)
		gt.Value(t, entries[0].Day).Equal(1)
		gt.Value(t, entries[2].Day).Equal(3)
		gt.Value(t, entries[1].Title).Equal("Day 2")
		gt.Value(t, entries[1].Approaches).Equal([]string{"approach 2-a", "approach 2-b"})
	})

	t.Run("existing days are never overwritten", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newID("user")
		topic := "Building Your Club"

		_, err := repo.Guide().PutIfAbsent(ctx, userID, topic, makeEntries(1, 2))
		gt.NoError(t, err).Required()

		replacement := makeEntries(1, 2, 3)
		replacement[0].Title = "replaced"
		n, err := repo.Guide().PutIfAbsent(ctx, userID, topic, replacement)
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)

		entries, err := repo.Guide().List(ctx, userID, topic)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(3)
		gt.Value(t, entries[0].Title).Equal("Day 1")
	})

	t.Run("keys are isolated by user and topic", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userA, userB := newID("user"), newID("user")

		_, err := repo.Guide().PutIfAbsent(ctx, userA, "Building Confidence", makeEntries(1))
		gt.NoError(t, err).Required()

		entries, err := repo.Guide().List(ctx, userB, "Building Confidence")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)

		entries, err = repo.Guide().List(ctx, userA, "Improving Communication Skills")
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(0)
	})

	t.Run("concurrent PutIfAbsent inserts each day once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newID("user")
		topic := "Recognizing Healthy Relationships"

		days := make([]int, 0, model.GuideDays)
		for d := 1; d <= model.GuideDays; d++ {
			days = append(days, d)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		total := 0
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := repo.Guide().PutIfAbsent(ctx, userID, topic, makeEntries(days...))
				gt.NoError(t, err)
				mu.Lock()
				total += n
				mu.Unlock()
			}()
		}
		wg.Wait()

		gt.Value(t, total).Equal(model.GuideDays)
		entries, err := repo.Guide().List(ctx, userID, topic)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(model.GuideDays)
	})
}

func TestGuideRepository(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			runGuideRepositoryTest(t, f.new)
		})
	}
}
