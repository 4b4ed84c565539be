package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[string]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[string]*model.Conversation),
	}
}

func (r *conversationRepository) Get(ctx context.Context, sessionID string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[sessionID]
	if !ok {
		return nil, nil
	}
	return conv.Copy(), nil
}

func (r *conversationRepository) Put(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.SessionID == "" {
		return goerr.New("conversation has no session id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := conv.Copy()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	r.conversations[conv.SessionID] = stored
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conversations, sessionID)
	return nil
}

func (r *conversationRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, conv := range r.conversations {
		if conv.UpdatedAt.Before(before) {
			delete(r.conversations, id)
			removed++
		}
	}
	return removed, nil
}
