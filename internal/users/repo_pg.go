package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo is a Postgres implementation of Repo.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())`
	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, name, email, password_hash, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, name, email, password_hash, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `
UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, passwordHash, userID)
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

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
