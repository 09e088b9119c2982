package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"pingchat/internal/app/db"
)

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const userColumns = `id, username, password_hash, role, refresh_token, refresh_token_expiry`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var refreshToken pgtype.Text
	var refreshExpiry pgtype.Timestamptz

	err := row.Scan(
		&rec.ID,
		&rec.Username,
		&rec.PasswordHash,
		&rec.Role,
		&refreshToken,
		&refreshExpiry,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	if refreshToken.Valid {
		rec.RefreshToken = refreshToken.String
	}
	if refreshExpiry.Valid {
		rec.RefreshTokenExpiry = refreshExpiry.Time
	}

	return &rec, nil
}

// FindByUsername implements Store.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanRecord(row)
}

// FindByID implements Store.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanRecord(row)
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Username, rec.PasswordHash, rec.Role)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Exists implements Store.
func (s *PostgresStore) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// SaveRefreshToken implements Store.
func (s *PostgresStore) SaveRefreshToken(ctx context.Context, id, token string, expiry time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, refresh_token_expiry = $3 WHERE id = $1`,
		id, token, expiry)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RotateRefreshToken implements Store. The WHERE clause on the current token
// value makes the swap atomic; a concurrent rotation or a stale token leaves
// zero rows affected.
func (s *PostgresStore) RotateRefreshToken(ctx context.Context, id, current, next string, expiry time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, refresh_token_expiry = $4
		 WHERE id = $1 AND refresh_token = $2`,
		id, current, next, expiry)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenMismatch
	}

	return nil
}
