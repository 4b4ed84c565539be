package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type progressDocument struct {
	Topic     string    `firestore:"topic"`
	Day       int       `firestore:"day"`
	Completed bool      `firestore:"completed"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type progressRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ProgressRepository = &progressRepository{}

func newProgressRepository(client *firestore.Client) *progressRepository {
	return &progressRepository{client: client}
}

func (r *progressRepository) progressCollection(userID string) *firestore.CollectionRef {
	return r.client.
		Collection(prefixed(r.collectionPrefix, UsersCollection)).Doc(userID).
		Collection(ProgressCollection)
}

func progressDocID(topic string, day int) string {
	return fmt.Sprintf("%s_%d", topicDocID(topic), day)
}

func (r *progressRepository) Set(ctx context.Context, progress *model.Progress) error {
	if progress == nil {
		return goerr.New("progress is nil")
	}

	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	doc := &progressDocument{
		Topic:     progress.Topic,
		Day:       progress.Day,
		Completed: progress.Completed,
		UpdatedAt: updatedAt,
	}

	docRef := r.progressCollection(progress.UserID).Doc(progressDocID(progress.Topic, progress.Day))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set progress",
			goerr.V("user_id", progress.UserID),
			goerr.V("topic", progress.Topic),
			goerr.V("day", progress.Day),
		)
	}
	return nil
}

// List requires the (topic, day) composite index created by the migrate command
func (r *progressRepository) List(ctx context.Context, userID string) ([]*model.Progress, error) {
	iter := r.progressCollection(userID).
		OrderBy("topic", firestore.Asc).
		OrderBy("day", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var result []*model.Progress
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate progress", goerr.V("user_id", userID))
		}

		var p progressDocument
		if err := doc.DataTo(&p); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal progress", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &model.Progress{
			UserID:    userID,
			Topic:     p.Topic,
			Day:       p.Day,
			Completed: p.Completed,
			UpdatedAt: p.UpdatedAt,
		})
	}

	return result, nil
}
