package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/repository/memory"
	"github.com/secmon-lab/guidebook/pkg/service/worker"
)

func putConversation(t *testing.T, repo *memory.Memory, sessionID string, updatedAt time.Time) {
	t.Helper()
	conv := model.NewConversation(sessionID).Prime("system", "hello")
	conv.UpdatedAt = updatedAt
	gt.NoError(t, repo.Conversation().Put(context.Background(), conv)).Required()
}

func TestConversationSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Now().UTC()

	putConversation(t, repo, "old-1", now.Add(-40*24*time.Hour))
	putConversation(t, repo, "old-2", now.Add(-31*24*time.Hour))
	putConversation(t, repo, "recent", now.Add(-time.Hour))

	sweeper := worker.NewConversationSweeper(repo, 30*24*time.Hour, time.Hour)
	removed, err := sweeper.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, removed).Equal(2)

	conv, err := repo.Conversation().Get(ctx, "recent")
	gt.NoError(t, err).Required()
	gt.Value(t, conv).NotNil()

	// Nothing left to remove
	removed, err = sweeper.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, removed).Equal(0)
}

func TestConversationSweeper_StartStop(t *testing.T) {
	repo := memory.New()
	putConversation(t, repo, "old", time.Now().Add(-48*time.Hour))

	sweeper := worker.NewConversationSweeper(repo, 24*time.Hour, 10*time.Millisecond)
	gt.NoError(t, sweeper.Start(context.Background())).Required()

	// The initial sweep runs right after Start
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conv, err := repo.Conversation().Get(context.Background(), "old")
		gt.NoError(t, err).Required()
		if conv == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	sweeper.Stop()

	conv, err := repo.Conversation().Get(context.Background(), "old")
	gt.NoError(t, err).Required()
	gt.Value(t, conv).Nil()
}

func TestConversationSweeper_InvalidConfig(t *testing.T) {
	sweeper := worker.NewConversationSweeper(memory.New(), 0, time.Minute)
	gt.Error(t, sweeper.Start(context.Background()))
}
