package interfaces

import "context"

// Repository defines the interface for data persistence
type Repository interface {
	Guide() GuideRepository
	Progress() ProgressRepository
	Conversation() ConversationRepository

	Close(ctx context.Context) error
}
