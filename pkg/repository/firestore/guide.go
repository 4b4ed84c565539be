package firestore

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type dayDocument struct {
	Day        int       `firestore:"day"`
	Title      string    `firestore:"title"`
	Approaches []string  `firestore:"approaches"`
	CreatedAt  time.Time `firestore:"created_at"`
}

type guideRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.GuideRepository = &guideRepository{}

func newGuideRepository(client *firestore.Client) *guideRepository {
	return &guideRepository{client: client}
}

// topicDocID turns a topic name into a valid document id. Topic names may contain
// characters such as '/' that are not allowed in ids.
func topicDocID(topic string) string {
	return url.PathEscape(topic)
}

func (r *guideRepository) daysCollection(userID, topic string) *firestore.CollectionRef {
	return r.client.
		Collection(prefixed(r.collectionPrefix, UsersCollection)).Doc(userID).
		Collection(GuidesCollection).Doc(topicDocID(topic)).
		Collection(DaysCollection)
}

func (r *guideRepository) List(ctx context.Context, userID, topic string) ([]*model.DayEntry, error) {
	iter := r.daysCollection(userID, topic).OrderBy("day", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var entries []*model.DayEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate guide days",
				goerr.V("user_id", userID),
				goerr.V("topic", topic),
			)
		}

		var d dayDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal guide day", goerr.V("doc_id", doc.Ref.ID))
		}
		entries = append(entries, &model.DayEntry{
			Day:        d.Day,
			Title:      d.Title,
			Approaches: d.Approaches,
		})
	}

	return entries, nil
}

// PutIfAbsent writes all missing days in one transaction. Existing days are read inside
// the transaction and left untouched, so concurrent commits from several instances
// either see each other's days or are retried by Firestore.
func (r *guideRepository) PutIfAbsent(ctx context.Context, userID, topic string, entries []*model.DayEntry) (int, error) {
	col := r.daysCollection(userID, topic)
	now := time.Now().UTC()

	var inserted int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		inserted = 0

		existing := make(map[string]bool)
		iter := tx.Documents(col)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return goerr.Wrap(err, "failed to read committed guide days")
			}
			existing[doc.Ref.ID] = true
		}

		for _, e := range entries {
			id := strconv.Itoa(e.Day)
			if existing[id] {
				continue
			}
			existing[id] = true

			doc := &dayDocument{
				Day:        e.Day,
				Title:      e.Title,
				Approaches: e.Approaches,
				CreatedAt:  now,
			}
			if err := tx.Create(col.Doc(id), doc); err != nil {
				return goerr.Wrap(err, "failed to create guide day", goerr.V("day", e.Day))
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to commit guide",
			goerr.V("user_id", userID),
			goerr.V("topic", topic),
		)
	}

	return inserted, nil
}
