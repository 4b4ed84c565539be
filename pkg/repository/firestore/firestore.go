package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
)

// Collection names. The progress collection is also referenced by the index migration.
const (
	UsersCollection         = "users"
	GuidesCollection        = "guides"
	DaysCollection          = "days"
	ProgressCollection      = "progress"
	ConversationsCollection = "conversations"
)

type Firestore struct {
	client       *firestore.Client
	guide        *guideRepository
	progress     *progressRepository
	conversation *conversationRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every root collection, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.guide.collectionPrefix = prefix
		f.progress.collectionPrefix = prefix
		f.conversation.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:       client,
		guide:        newGuideRepository(client),
		progress:     newProgressRepository(client),
		conversation: newConversationRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Guide() interfaces.GuideRepository {
	return f.guide
}

func (f *Firestore) Progress() interfaces.ProgressRepository {
	return f.progress
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Close(ctx context.Context) error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
