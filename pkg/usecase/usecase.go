package usecase

import (
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/service/engine"
	"github.com/secmon-lab/guidebook/pkg/service/video"
	"github.com/secmon-lab/guidebook/pkg/utils/keylock"
)

type UseCases struct {
	repo       interfaces.Repository
	engine     engine.Client
	catalog    *model.TopicCatalog
	stager     video.Stager
	jobAPI     video.JobAPI
	pollerOpts []PollerOption
	chatOpts   []ChatOption
	Guide      *GuideUseCase
	Progress   *ProgressUseCase
	Video      *VideoUseCase
	Chat       *ChatUseCase
	Resource   *ResourceUseCase
}

type Option func(*UseCases)

func WithTopicCatalog(catalog *model.TopicCatalog) Option {
	return func(uc *UseCases) {
		uc.catalog = catalog
	}
}

// WithVideo enables video summarization
func WithVideo(stager video.Stager, api video.JobAPI, opts ...PollerOption) Option {
	return func(uc *UseCases) {
		uc.stager = stager
		uc.jobAPI = api
		uc.pollerOpts = opts
	}
}

func WithChatOptions(opts ...ChatOption) Option {
	return func(uc *UseCases) {
		uc.chatOpts = opts
	}
}

func New(repo interfaces.Repository, client engine.Client, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		engine: client,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.engine == nil {
		uc.engine = engine.Unavailable()
	}
	if uc.catalog == nil {
		uc.catalog = model.DefaultTopicCatalog()
	}

	var poller *JobPoller
	if uc.stager != nil && uc.jobAPI != nil {
		poller = NewJobPoller(uc.stager, uc.jobAPI, uc.pollerOpts...)
	}

	// One locker shared by all use cases. Keys are namespaced per use case.
	locker := keylock.New()

	uc.Guide = NewGuideUseCase(repo, uc.engine, uc.catalog, locker)
	uc.Progress = NewProgressUseCase(repo, uc.catalog)
	uc.Video = NewVideoUseCase(poller, uc.engine)
	uc.Chat = NewChatUseCase(repo, uc.engine, locker, uc.chatOpts...)
	uc.Resource = NewResourceUseCase(uc.engine)

	return uc
}
