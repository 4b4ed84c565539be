package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
)

type ProgressUseCase struct {
	repo    interfaces.Repository
	catalog *model.TopicCatalog
}

func NewProgressUseCase(repo interfaces.Repository, catalog *model.TopicCatalog) *ProgressUseCase {
	return &ProgressUseCase{
		repo:    repo,
		catalog: catalog,
	}
}

// SetDayCompletion records whether the user finished day of the topic guide
func (uc *ProgressUseCase) SetDayCompletion(ctx context.Context, userID, topic string, day int, completed bool) error {
	if userID == "" {
		return goerr.Wrap(ErrInvalidInput, "user id is required")
	}
	if uc.catalog.Index(topic) < 0 {
		return goerr.Wrap(ErrInvalidTopic, "topic not in catalog", goerr.V(TopicKey, topic))
	}
	if day < 1 || day > model.GuideDays {
		return goerr.Wrap(ErrInvalidInput, "day out of range", goerr.V(model.DayKey, day))
	}

	if err := uc.repo.Progress().Set(ctx, &model.Progress{
		UserID:    userID,
		Topic:     topic,
		Day:       day,
		Completed: completed,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return goerr.Wrap(err, "failed to set progress",
			goerr.V(UserIDKey, userID),
			goerr.V(TopicKey, topic),
			goerr.V(model.DayKey, day),
		)
	}
	return nil
}

// List returns the user's records grouped by topic, each group ordered by day
func (uc *ProgressUseCase) List(ctx context.Context, userID string) (map[string][]*model.Progress, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "user id is required")
	}

	records, err := uc.repo.Progress().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list progress", goerr.V(UserIDKey, userID))
	}

	grouped := make(map[string][]*model.Progress)
	for _, r := range records {
		grouped[r.Topic] = append(grouped[r.Topic], r)
	}
	return grouped, nil
}

// Completion returns the completed flag per day of one topic
func (uc *ProgressUseCase) Completion(ctx context.Context, userID, topic string) (map[int]bool, error) {
	grouped, err := uc.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	completion := make(map[int]bool)
	for _, p := range grouped[topic] {
		completion[p.Day] = p.Completed
	}
	return completion, nil
}
