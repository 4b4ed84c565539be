package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

type turnRecord struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversationRepository struct {
	db *sql.DB
}

func (r *conversationRepository) Get(ctx context.Context, sessionID string) (*model.Conversation, error) {
	var turnsJSON string
	var updatedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT turns_json, updated_at FROM conversations WHERE session_id = ?`, sessionID,
	).Scan(&turnsJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("session_id", sessionID))
	}

	var records []turnRecord
	if err := json.Unmarshal([]byte(turnsJSON), &records); err != nil {
		return nil, goerr.Wrap(err, "failed to decode turns", goerr.V("session_id", sessionID))
	}

	conv := &model.Conversation{
		SessionID: sessionID,
		Turns:     make([]model.Turn, 0, len(records)),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}
	for i, rec := range records {
		role, err := types.ParseRole(rec.Role)
		if err != nil {
			return nil, goerr.Wrap(err, "stored turn has invalid role",
				goerr.V("session_id", sessionID),
				goerr.V("index", i),
			)
		}
		conv.Turns = append(conv.Turns, model.Turn{Role: role, Content: rec.Content})
	}

	return conv, nil
}

func (r *conversationRepository) Put(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.SessionID == "" {
		return goerr.New("conversation has no session id")
	}

	records := make([]turnRecord, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		records = append(records, turnRecord{Role: t.Role.String(), Content: t.Content})
	}
	turnsJSON, err := json.Marshal(records)
	if err != nil {
		return goerr.Wrap(err, "failed to encode turns", goerr.V("session_id", conv.SessionID))
	}

	updatedAt := conv.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conversations (session_id, turns_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			turns_json = excluded.turns_json,
			updated_at = excluded.updated_at`,
		conv.SessionID, string(turnsJSON), updatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put conversation", goerr.V("session_id", conv.SessionID))
	}
	return nil
}

func (r *conversationRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE session_id = ?`, sessionID); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V("session_id", sessionID))
	}
	return nil
}

func (r *conversationRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE updated_at < ?`, before.UnixNano())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete idle conversations", goerr.V("before", before))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count deleted conversations")
	}
	return int(n), nil
}
