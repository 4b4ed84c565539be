package usecase

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/utils/keylock"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

var (
	//go:embed prompt/chat_system.md
	chatSystemPrompt string

	//go:embed prompt/chat_greeting.md
	chatGreeting string
)

type ChatUseCase struct {
	repo            interfaces.Repository
	engine          engine.Client
	locker          *keylock.Locker
	transcriptLimit int
	now             func() time.Time
}

type ChatOption func(*ChatUseCase)

// WithTranscriptLimit sends only the priming pair and the last n exchanges to the
// engine. The stored transcript is not trimmed. Zero replays everything.
func WithTranscriptLimit(n int) ChatOption {
	return func(uc *ChatUseCase) {
		uc.transcriptLimit = n
	}
}

func NewChatUseCase(repo interfaces.Repository, client engine.Client, locker *keylock.Locker, opts ...ChatOption) *ChatUseCase {
	uc := &ChatUseCase{
		repo:   repo,
		engine: client,
		locker: locker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Advance adds message to the session transcript, replays the transcript to the
// engine and records the reply. The transcript is persisted only when the engine
// answers.
func (uc *ChatUseCase) Advance(ctx context.Context, sessionID, message string) (string, error) {
	if sessionID == "" {
		return "", goerr.Wrap(ErrInvalidInput, "session id is required")
	}
	if strings.TrimSpace(message) == "" {
		return "", goerr.Wrap(ErrInvalidInput, "message is empty", goerr.V(SessionIDKey, sessionID))
	}

	unlock, err := uc.locker.Lock(ctx, "chat:"+sessionID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to acquire chat lock", goerr.V(SessionIDKey, sessionID))
	}
	defer unlock()

	conv, err := uc.repo.Conversation().Get(ctx, sessionID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load conversation", goerr.V(SessionIDKey, sessionID))
	}
	if conv == nil {
		conv = model.NewConversation(sessionID)
	}
	if len(conv.Turns) == 0 {
		conv = conv.Prime(strings.TrimSpace(chatSystemPrompt), strings.TrimSpace(chatGreeting))
	}

	pending, err := conv.Append(types.RoleUser, message)
	if err != nil {
		return "", goerr.Wrap(err, "stored conversation is inconsistent", goerr.V(SessionIDKey, sessionID))
	}

	reply, err := uc.engine.Generate(ctx, &engine.Request{
		Transcript: uc.requestTranscript(pending),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate chat reply", goerr.V(SessionIDKey, sessionID))
	}

	answered, err := pending.Append(types.RoleAssistant, reply)
	if err != nil {
		return "", goerr.Wrap(err, "failed to record chat reply", goerr.V(SessionIDKey, sessionID))
	}
	answered.UpdatedAt = uc.now().UTC()

	if err := uc.repo.Conversation().Put(ctx, answered); err != nil {
		return "", goerr.Wrap(err, "failed to save conversation", goerr.V(SessionIDKey, sessionID))
	}

	logging.From(ctx).Debug("chat advanced", "session_id", sessionID, "turns", len(answered.Turns))
	return reply, nil
}

// Reset ends the session by discarding its transcript
func (uc *ChatUseCase) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return goerr.Wrap(ErrInvalidInput, "session id is required")
	}

	unlock, err := uc.locker.Lock(ctx, "chat:"+sessionID)
	if err != nil {
		return goerr.Wrap(err, "failed to acquire chat lock", goerr.V(SessionIDKey, sessionID))
	}
	defer unlock()

	if err := uc.repo.Conversation().Delete(ctx, sessionID); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V(SessionIDKey, sessionID))
	}
	return nil
}

// requestTranscript returns the turns sent to the engine. conv ends with the pending
// user turn.
func (uc *ChatUseCase) requestTranscript(conv *model.Conversation) []model.Turn {
	if uc.transcriptLimit <= 0 || !conv.IsPrimed() {
		return conv.Turns
	}

	exchanges := conv.Exchanges()
	keep := 2*uc.transcriptLimit + 1
	if len(exchanges) <= keep {
		return conv.Turns
	}

	turns := make([]model.Turn, 0, 2+keep)
	turns = append(turns, conv.Turns[:2]...)
	turns = append(turns, exchanges[len(exchanges)-keep:]...)
	return turns
}
