package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/utils/keylock"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

//go:embed prompt/guide.md
var guidePromptTmpl string

var guidePrompt = template.Must(template.New("guide").Parse(guidePromptTmpl))

type GuideUseCase struct {
	repo        interfaces.Repository
	engine      engine.Client
	catalog     *model.TopicCatalog
	locker      *keylock.Locker
	maxAttempts int
}

func NewGuideUseCase(repo interfaces.Repository, client engine.Client, catalog *model.TopicCatalog, locker *keylock.Locker) *GuideUseCase {
	return &GuideUseCase{
		repo:        repo,
		engine:      client,
		catalog:     catalog,
		locker:      locker,
		maxAttempts: maxGenerationAttempts,
	}
}

// Topics returns the catalog in order
func (uc *GuideUseCase) Topics() []string {
	return uc.catalog.Topics()
}

// Synthesize generates a validated guide for the topic at topicIndex without
// persisting it. It also returns how many attempts were made.
func (uc *GuideUseCase) Synthesize(ctx context.Context, topicIndex int) (*model.Guide, int, error) {
	topic, ok := uc.catalog.Name(topicIndex)
	if !ok {
		return nil, 0, goerr.Wrap(ErrInvalidTopic, "topic index out of range",
			goerr.V(TopicIndexKey, topicIndex),
			goerr.V("catalog_size", uc.catalog.Len()),
		)
	}

	prompt, err := buildGuidePrompt(topic)
	if err != nil {
		return nil, 0, err
	}
	req := &engine.Request{
		Prompt: prompt,
		Schema: guideSchema(),
	}

	guide, attempts, err := retryValidated(ctx, uc.maxAttempts,
		func(ctx context.Context) (string, error) {
			return uc.engine.Generate(ctx, req)
		},
		func(raw string) (*model.Guide, error) {
			g, err := model.ParseGuide(raw)
			if err != nil {
				return nil, err
			}
			if err := g.Validate(); err != nil {
				return nil, err
			}
			if g.Goal == "" {
				g.Goal = topic
			}
			return g, nil
		},
	)
	if err != nil {
		return nil, attempts, goerr.Wrap(err, "failed to synthesize guide",
			goerr.V(TopicKey, topic),
			goerr.V(AttemptsKey, attempts),
		)
	}

	logging.From(ctx).Info("synthesized guide", "topic", topic, "attempts", attempts)
	return guide, attempts, nil
}

// SynthesizeOrFetch returns the committed guide of (userID, topic), generating and
// committing one first when none exists. Calls for the same key are serialized so the
// engine is asked at most once per key.
func (uc *GuideUseCase) SynthesizeOrFetch(ctx context.Context, userID, topic string) (*model.Guide, error) {
	if userID == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "user id is required")
	}
	if topic == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "topic is required")
	}

	unlock, err := uc.locker.Lock(ctx, "guide:"+userID+":"+topic)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to acquire guide lock", goerr.V(UserIDKey, userID), goerr.V(TopicKey, topic))
	}
	defer unlock()

	entries, err := uc.repo.Guide().List(ctx, userID, topic)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list guide", goerr.V(UserIDKey, userID), goerr.V(TopicKey, topic))
	}
	// A guide with missing days is a commit that failed partway. It is regenerated
	// and PutIfAbsent fills in only the absent days.
	if len(entries) >= model.GuideDays {
		return &model.Guide{Goal: topic, Entries: entries}, nil
	}
	if len(entries) > 0 {
		logging.From(ctx).Warn("repairing partially committed guide",
			"user_id", userID,
			"topic", topic,
			"stored", len(entries),
		)
	}

	index := uc.catalog.Index(topic)
	if index < 0 {
		return nil, goerr.Wrap(ErrInvalidTopic, "topic not in catalog", goerr.V(TopicKey, topic))
	}

	draft, _, err := uc.Synthesize(ctx, index)
	if err != nil {
		return nil, err
	}

	inserted, err := uc.repo.Guide().PutIfAbsent(ctx, userID, topic, draft.Entries)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to commit guide", goerr.V(UserIDKey, userID), goerr.V(TopicKey, topic))
	}
	if inserted != len(draft.Entries) {
		logging.From(ctx).Warn("some guide days were already committed",
			"user_id", userID,
			"topic", topic,
			"inserted", inserted,
			"generated", len(draft.Entries),
		)
	}

	committed, err := uc.repo.Guide().List(ctx, userID, topic)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reload guide", goerr.V(UserIDKey, userID), goerr.V(TopicKey, topic))
	}
	guide := &model.Guide{Goal: topic, Entries: committed}
	if err := guide.Validate(); err != nil {
		return nil, goerr.Wrap(err, "committed guide is incomplete", goerr.V(UserIDKey, userID), goerr.V(TopicKey, topic))
	}
	return guide, nil
}

func buildGuidePrompt(topic string) (string, error) {
	var buf bytes.Buffer
	if err := guidePrompt.Execute(&buf, struct{ Topic string }{Topic: topic}); err != nil {
		return "", goerr.Wrap(err, "failed to render guide prompt", goerr.V(TopicKey, topic))
	}
	return buf.String(), nil
}

func guideSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Type:        gollem.TypeObject,
		Description: "A 21-day guide toward a goal",
		Properties: map[string]*gollem.Parameter{
			"goal": {
				Type:        gollem.TypeString,
				Description: "The goal description",
			},
			"guide": {
				Type:        gollem.TypeArray,
				Description: "Exactly 21 daily steps ordered by day",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"day": {
							Type:        gollem.TypeInteger,
							Description: "Day number from 1 to 21",
						},
						"title": {
							Type:        gollem.TypeString,
							Description: "Activity title of the day",
						},
						"approaches": {
							Type:        gollem.TypeArray,
							Description: "More than one approach to achieve the daily goal",
							Items: &gollem.Parameter{
								Type: gollem.TypeString,
							},
						},
					},
				},
			},
		},
	}
}
