package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

// ConversationRepository defines the interface for chat transcript persistence
type ConversationRepository interface {
	// Get returns the transcript or nil when the session has none
	Get(ctx context.Context, sessionID string) (*model.Conversation, error)

	// Put replaces the stored transcript of conv.SessionID
	Put(ctx context.Context, conv *model.Conversation) error

	// Delete removes the transcript. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteIdle removes transcripts last updated before the cutoff and returns how
	// many were removed
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}
