package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/interfaces"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type turnDocument struct {
	Role    string `firestore:"role"`
	Content string `firestore:"content"`
}

type conversationDocument struct {
	SessionID string         `firestore:"session_id"`
	Turns     []turnDocument `firestore:"turns"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ConversationRepository = &conversationRepository{}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) doc(sessionID string) *firestore.DocumentRef {
	return r.client.Collection(prefixed(r.collectionPrefix, ConversationsCollection)).Doc(sessionID)
}

func (r *conversationRepository) Get(ctx context.Context, sessionID string) (*model.Conversation, error) {
	snap, err := r.doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("session_id", sessionID))
	}

	var d conversationDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("session_id", sessionID))
	}

	conv := &model.Conversation{
		SessionID: sessionID,
		Turns:     make([]model.Turn, 0, len(d.Turns)),
		UpdatedAt: d.UpdatedAt,
	}
	for i, t := range d.Turns {
		role, err := types.ParseRole(t.Role)
		if err != nil {
			return nil, goerr.Wrap(err, "stored turn has invalid role",
				goerr.V("session_id", sessionID),
				goerr.V("index", i),
			)
		}
		conv.Turns = append(conv.Turns, model.Turn{Role: role, Content: t.Content})
	}

	return conv, nil
}

func (r *conversationRepository) Put(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.SessionID == "" {
		return goerr.New("conversation has no session id")
	}

	updatedAt := conv.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	d := &conversationDocument{
		SessionID: conv.SessionID,
		Turns:     make([]turnDocument, 0, len(conv.Turns)),
		UpdatedAt: updatedAt,
	}
	for _, t := range conv.Turns {
		d.Turns = append(d.Turns, turnDocument{Role: t.Role.String(), Content: t.Content})
	}

	if _, err := r.doc(conv.SessionID).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put conversation", goerr.V("session_id", conv.SessionID))
	}
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, sessionID string) error {
	// Delete on a missing document succeeds
	if _, err := r.doc(sessionID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *conversationRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	iter := r.client.Collection(prefixed(r.collectionPrefix, ConversationsCollection)).
		Where("updated_at", "<", before).
		Documents(ctx)
	defer iter.Stop()

	removed := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, goerr.Wrap(err, "failed to iterate idle conversations", goerr.V("before", before))
		}

		if _, err := snap.Ref.Delete(ctx); err != nil {
			return removed, goerr.Wrap(err, "failed to delete idle conversation", goerr.V("session_id", snap.Ref.ID))
		}
		removed++
	}
	return removed, nil
}
