package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

type progressRepository struct {
	db *sql.DB
}

func (r *progressRepository) Set(ctx context.Context, progress *model.Progress) error {
	if progress == nil {
		return goerr.New("progress is nil")
	}

	updatedAt := progress.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO progress (user_id, topic, day, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, topic, day) DO UPDATE SET
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		progress.UserID, progress.Topic, progress.Day, progress.Completed, updatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert progress",
			goerr.V("user_id", progress.UserID),
			goerr.V("topic", progress.Topic),
			goerr.V("day", progress.Day),
		)
	}
	return nil
}

func (r *progressRepository) List(ctx context.Context, userID string) ([]*model.Progress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT topic, day, completed, updated_at
		FROM progress WHERE user_id = ?
		ORDER BY topic, day`, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query progress", goerr.V("user_id", userID))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.From(ctx).Warn("failed to close rows", "error", err)
		}
	}()

	var result []*model.Progress
	for rows.Next() {
		p := &model.Progress{UserID: userID}
		var updatedAt int64
		if err := rows.Scan(&p.Topic, &p.Day, &p.Completed, &updatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan progress")
		}
		p.UpdatedAt = time.Unix(0, updatedAt).UTC()
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate progress")
	}

	return result, nil
}
