package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGLedger is a Postgres implementation of Ledger. Append locks the owning
// user row for the duration of the transaction, so concurrent appends for the
// same account serialize; cross-account appends proceed independently.
type PGLedger struct {
	DB *sql.DB
}

func (l *PGLedger) Append(ctx context.Context, userID string, rec Upload) (evicted []Upload, err error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var ownerID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrOwnerNotFound
		}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO uploads (id, user_id, filename, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, userID, rec.Filename, rec.StorageKey, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}

	var count int
	if err = tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM uploads WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, err
	}

	if count > Capacity {
		rows, qerr := tx.QueryContext(ctx, `
DELETE FROM uploads
WHERE user_id = $1 AND seq IN (
  SELECT seq FROM uploads WHERE user_id = $1 ORDER BY seq ASC LIMIT $2
)
RETURNING id, filename, storage_key, created_at`, userID, count-Capacity)
		if qerr != nil {
			err = fmt.Errorf("evict uploads: %w", qerr)
			return nil, err
		}
		evicted, err = scanUploads(rows, userID)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return evicted, nil
}

func (l *PGLedger) Remove(ctx context.Context, userID, recordID string) error {
	res, err := l.DB.ExecContext(ctx, `
DELETE FROM uploads WHERE user_id = $1 AND id = $2`, userID, recordID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *PGLedger) List(ctx context.Context, userID string) ([]Upload, error) {
	rows, err := l.DB.QueryContext(ctx, `
SELECT id, filename, storage_key, created_at
FROM uploads
WHERE user_id = $1
ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, err
	}
	return scanUploads(rows, userID)
}

func scanUploads(rows *sql.Rows, userID string) ([]Upload, error) {
	defer rows.Close()
	out := []Upload{}
	for rows.Next() {
		rec := Upload{UserID: userID}
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.StorageKey, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
