// Package postgres persists accounts in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	identity "github.com/ghuysu/social-media-sub000"
)

const uniqueViolation = "23505"

// DBTX is the subset of pgx used by the store. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so callers can run the store inside their own
// transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore implements identity.AccountStore on a PostgreSQL
// accounts table.
type AccountStore struct {
	db DBTX
}

// NewAccountStore wraps db as an account store.
func NewAccountStore(db DBTX) *AccountStore {
	return &AccountStore{db: db}
}

// FindByEmailAndRole returns the account registered under (email, role),
// or identity.ErrAccountNotFound.
func (s *AccountStore) FindByEmailAndRole(ctx context.Context, email, role string) (*identity.AccountRecord, error) {
	const query = `
		SELECT id, email, role, password_hash, full_name, avatar_url, created_at
		FROM accounts
		WHERE email = $1 AND role = $2`

	var record identity.AccountRecord
	err := s.db.QueryRow(ctx, query, strings.ToLower(email), role).Scan(
		&record.ID,
		&record.Email,
		&record.Role,
		&record.PasswordHash,
		&record.FullName,
		&record.AvatarURL,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("postgres: find account: %w", err)
	}

	return &record, nil
}

// Create inserts record. A missing ID or CreatedAt is filled in. An
// existing (email, role) pair yields identity.ErrAccountDuplicate.
func (s *AccountStore) Create(ctx context.Context, record *identity.AccountRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	record.Email = strings.ToLower(record.Email)

	const query = `
		INSERT INTO accounts (id, email, role, password_hash, full_name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		record.ID,
		record.Email,
		record.Role,
		record.PasswordHash,
		record.FullName,
		record.AvatarURL,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrAccountDuplicate
		}
		return fmt.Errorf("postgres: create account: %w", err)
	}

	return nil
}

// UpdatePasswordHash replaces the stored credential for (email, role).
// An unknown account yields identity.ErrAccountNotFound.
func (s *AccountStore) UpdatePasswordHash(ctx context.Context, email, role, passwordHash string) error {
	const query = `
		UPDATE accounts
		SET password_hash = $3
		WHERE email = $1 AND role = $2`

	tag, err := s.db.Exec(ctx, query, strings.ToLower(email), role, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}

	return nil
}
