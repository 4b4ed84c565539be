package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

func runConversationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns nil for unknown session", func(t *testing.T) {
		repo := newRepo(t)
		conv, err := repo.Conversation().Get(context.Background(), newID("session"))
		gt.NoError(t, err).Required()
		gt.Value(t, conv).Nil()
	})

	t.Run("Put then Get round trips turns in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := newID("session")

		conv := model.NewConversation(sessionID).Prime("system prompt", "greeting")
		conv, err := conv.Append(types.RoleUser, "hello")
		gt.NoError(t, err).Required()
		conv, err = conv.Append(types.RoleAssistant, "hi there")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Conversation().Put(ctx, conv)).Required()

		got, err := repo.Conversation().Get(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.SessionID).Equal(sessionID)
		gt.Value(t, got.Turns).Equal(conv.Turns)
		gt.NoError(t, got.Validate())
	})

	t.Run("Put replaces the transcript", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := newID("session")

		conv := model.NewConversation(sessionID).Prime("s", "g")
		gt.NoError(t, repo.Conversation().Put(ctx, conv)).Required()

		next, err := conv.Append(types.RoleUser, "more")
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Conversation().Put(ctx, next)).Required()

		got, err := repo.Conversation().Get(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Turns).Length(3)
	})

	t.Run("Delete removes and tolerates missing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		sessionID := newID("session")

		gt.NoError(t, repo.Conversation().Put(ctx, model.NewConversation(sessionID).Prime("s", "g"))).Required()
		gt.NoError(t, repo.Conversation().Delete(ctx, sessionID)).Required()

		got, err := repo.Conversation().Get(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		gt.NoError(t, repo.Conversation().Delete(ctx, sessionID))
	})

	t.Run("DeleteIdle removes only stale transcripts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)

		stale := model.NewConversation(newID("stale")).Prime("s", "g")
		stale.UpdatedAt = now.Add(-48 * time.Hour)
		fresh := model.NewConversation(newID("fresh")).Prime("s", "g")
		fresh.UpdatedAt = now
		gt.NoError(t, repo.Conversation().Put(ctx, stale)).Required()
		gt.NoError(t, repo.Conversation().Put(ctx, fresh)).Required()

		removed, err := repo.Conversation().DeleteIdle(ctx, now.Add(-24*time.Hour))
		gt.NoError(t, err).Required()
		gt.Value(t, removed).Equal(1)

		got, err := repo.Conversation().Get(ctx, stale.SessionID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		got, err = repo.Conversation().Get(ctx, fresh.SessionID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
	})

	t.Run("Put rejects empty session id", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.Conversation().Put(context.Background(), &model.Conversation{}))
	})
}

func TestConversationRepository(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			runConversationRepositoryTest(t, f.new)
		})
	}
}
