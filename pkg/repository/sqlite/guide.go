package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
)

type guideRepository struct {
	db *sql.DB
}

func (r *guideRepository) List(ctx context.Context, userID, topic string) ([]*model.DayEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, title, approaches_json
		FROM guide_days WHERE user_id = ? AND topic = ?
		ORDER BY day`, userID, topic)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query guide days",
			goerr.V("user_id", userID),
			goerr.V("topic", topic),
		)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.From(ctx).Warn("failed to close rows", "error", err)
		}
	}()

	var entries []*model.DayEntry
	for rows.Next() {
		var e model.DayEntry
		var approaches string
		if err := rows.Scan(&e.Day, &e.Title, &approaches); err != nil {
			return nil, goerr.Wrap(err, "failed to scan guide day")
		}
		if err := json.Unmarshal([]byte(approaches), &e.Approaches); err != nil {
			return nil, goerr.Wrap(err, "failed to decode approaches", goerr.V("day", e.Day))
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate guide days")
	}

	return entries, nil
}

func (r *guideRepository) PutIfAbsent(ctx context.Context, userID, topic string, entries []*model.DayEntry) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		// no-op after Commit
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO guide_days (user_id, topic, day, title, approaches_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prepare insert")
	}
	defer func() {
		_ = stmt.Close()
	}()

	now := time.Now().UTC().UnixNano()
	inserted := 0
	for _, e := range entries {
		approaches, err := json.Marshal(e.Approaches)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to encode approaches", goerr.V("day", e.Day))
		}
		res, err := stmt.ExecContext(ctx, userID, topic, e.Day, e.Title, string(approaches), now)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to insert guide day",
				goerr.V("user_id", userID),
				goerr.V("topic", topic),
				goerr.V("day", e.Day),
			)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get affected rows")
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "failed to commit guide days")
	}
	return inserted, nil
}
