package memory

import (
	"context"

	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps everything in process memory. It is meant for development and tests.
type Memory struct {
	guide        *guideRepository
	progress     *progressRepository
	conversation *conversationRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		guide:        newGuideRepository(),
		progress:     newProgressRepository(),
		conversation: newConversationRepository(),
	}
}

func (m *Memory) Guide() interfaces.GuideRepository {
	return m.guide
}

func (m *Memory) Progress() interfaces.ProgressRepository {
	return m.progress
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}
