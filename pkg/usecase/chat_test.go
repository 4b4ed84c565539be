package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/repository/memory"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/usecase"
)

func echoEngine() *mockEngine {
	return &mockEngine{
		generateFn: func(ctx context.Context, call int, req *engine.Request) (string, error) {
			last := req.Transcript[len(req.Transcript)-1]
			return "reply to " + last.Content, nil
		},
	}
}

func roles(turns []model.Turn) []types.Role {
	out := make([]types.Role, len(turns))
	for i, t := range turns {
		out[i] = t.Role
	}
	return out
}

func TestChatUseCase_Advance(t *testing.T) {
	ctx := context.Background()

	t.Run("first message primes the transcript", func(t *testing.T) {
		eng := echoEngine()
		repo := memory.New()
		uc := usecase.New(repo, eng)

		reply, err := uc.Chat.Advance(ctx, "s1", "How do I start saving?")
		gt.NoError(t, err).Required()
		gt.Value(t, reply).Equal("reply to How do I start saving?")

		req := eng.Request(0)
		gt.Value(t, roles(req.Transcript)).Equal([]types.Role{
			types.RoleSystem, types.RoleAssistant, types.RoleUser,
		})
		gt.String(t, req.Transcript[0].Content).NotEqual("")
		gt.String(t, req.Transcript[1].Content).NotEqual("")

		conv, err := repo.Conversation().Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Value(t, roles(conv.Turns)).Equal([]types.Role{
			types.RoleSystem, types.RoleAssistant, types.RoleUser, types.RoleAssistant,
		})
		gt.Value(t, conv.Turns[3].Content).Equal(reply)
		gt.NoError(t, conv.Validate())
	})

	t.Run("later messages replay the whole transcript", func(t *testing.T) {
		eng := echoEngine()
		repo := memory.New()
		uc := usecase.New(repo, eng)

		for i := 1; i <= 3; i++ {
			_, err := uc.Chat.Advance(ctx, "s1", fmt.Sprintf("message %d", i))
			gt.NoError(t, err).Required()
		}

		req := eng.Request(2)
		gt.Array(t, req.Transcript).Length(2 + 5)
		gt.Value(t, req.Transcript[2].Content).Equal("message 1")
		gt.Value(t, req.Transcript[3].Content).Equal("reply to message 1")
		gt.Value(t, req.Transcript[6].Content).Equal("message 3")

		conv, err := repo.Conversation().Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Array(t, conv.Turns).Length(2 + 6)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		eng := echoEngine()
		repo := memory.New()
		uc := usecase.New(repo, eng)

		_, err := uc.Chat.Advance(ctx, "s1", "one")
		gt.NoError(t, err).Required()
		_, err = uc.Chat.Advance(ctx, "s2", "two")
		gt.NoError(t, err).Required()

		gt.Array(t, eng.Request(1).Transcript).Length(3)
	})

	t.Run("engine failure persists nothing", func(t *testing.T) {
		eng := &mockEngine{
			generateFn: func(ctx context.Context, call int, req *engine.Request) (string, error) {
				if call == 2 {
					return "", engine.ErrEngineUnavailable
				}
				return "fine", nil
			},
		}
		repo := memory.New()
		uc := usecase.New(repo, eng)

		_, err := uc.Chat.Advance(ctx, "s1", "first")
		gt.NoError(t, err).Required()

		_, err = uc.Chat.Advance(ctx, "s1", "second")
		gt.Error(t, err).Is(engine.ErrEngineUnavailable)

		conv, err := repo.Conversation().Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Array(t, conv.Turns).Length(4)

		_, err = uc.Chat.Advance(ctx, "s1", "third")
		gt.NoError(t, err).Required()
		gt.Array(t, eng.Request(2).Transcript).Length(5)
		gt.Value(t, eng.Request(2).Transcript[4].Content).Equal("third")
	})

	t.Run("failed first message leaves no session", func(t *testing.T) {
		eng := &mockEngine{
			generateFn: func(ctx context.Context, call int, req *engine.Request) (string, error) {
				return "", engine.ErrEngineTimeout
			},
		}
		repo := memory.New()
		uc := usecase.New(repo, eng)

		_, err := uc.Chat.Advance(ctx, "s1", "hello")
		gt.Error(t, err).Is(engine.ErrEngineTimeout)

		conv, err := repo.Conversation().Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Value(t, conv).Nil()
	})

	t.Run("invalid input", func(t *testing.T) {
		eng := echoEngine()
		uc := usecase.New(memory.New(), eng)

		_, err := uc.Chat.Advance(ctx, "", "hello")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
		_, err = uc.Chat.Advance(ctx, "s1", "   ")
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
		gt.Value(t, eng.Calls()).Equal(0)
	})

	t.Run("concurrent messages keep roles alternating", func(t *testing.T) {
		eng := echoEngine()
		repo := memory.New()
		uc := usecase.New(repo, eng)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := uc.Chat.Advance(ctx, "s1", fmt.Sprintf("m%d", i))
				gt.NoError(t, err)
			}(i)
		}
		wg.Wait()

		conv, err := repo.Conversation().Get(ctx, "s1")
		gt.NoError(t, err).Required()
		gt.Array(t, conv.Turns).Length(2 + 20)
		gt.NoError(t, conv.Validate())
	})
}

func TestChatUseCase_Reset(t *testing.T) {
	ctx := context.Background()
	eng := echoEngine()
	repo := memory.New()
	uc := usecase.New(repo, eng)

	_, err := uc.Chat.Advance(ctx, "s1", "hello")
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Chat.Reset(ctx, "s1")).Required()
	conv, err := repo.Conversation().Get(ctx, "s1")
	gt.NoError(t, err).Required()
	gt.Value(t, conv).Nil()

	// Resetting an unknown session is fine
	gt.NoError(t, uc.Chat.Reset(ctx, "unknown"))
	gt.Error(t, uc.Chat.Reset(ctx, "")).Is(usecase.ErrInvalidInput)

	_, err = uc.Chat.Advance(ctx, "s1", "again")
	gt.NoError(t, err).Required()
	gt.Array(t, eng.Request(1).Transcript).Length(3)
}

func TestChatUseCase_TranscriptLimit(t *testing.T) {
	ctx := context.Background()
	eng := echoEngine()
	repo := memory.New()
	uc := usecase.New(repo, eng, usecase.WithChatOptions(usecase.WithTranscriptLimit(1)))

	for i := 1; i <= 4; i++ {
		_, err := uc.Chat.Advance(ctx, "s1", fmt.Sprintf("message %d", i))
		gt.NoError(t, err).Required()
	}

	req := eng.Request(3)
	gt.Value(t, roles(req.Transcript)).Equal([]types.Role{
		types.RoleSystem, types.RoleAssistant,
		types.RoleUser, types.RoleAssistant, types.RoleUser,
	})
	gt.Value(t, req.Transcript[2].Content).Equal("message 3")
	gt.Value(t, req.Transcript[4].Content).Equal("message 4")

	conv, err := repo.Conversation().Get(ctx, "s1")
	gt.NoError(t, err).Required()
	gt.Array(t, conv.Turns).Length(2 + 8)
}
