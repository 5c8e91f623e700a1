// Package credential implements the StoredCredential repository using
// PostgreSQL. The table holds exactly one row per Mirror user token; the
// OAuth flow that writes it lives outside this service, so the synchronizer
// only ever reads, while Upsert exists for the provisioning tooling.
//
// Schema:
//
//	CREATE TABLE stored_credentials (
//	    id            uuid PRIMARY KEY,
//	    user_token    text NOT NULL UNIQUE,
//	    access_token  text NOT NULL,
//	    refresh_token text NOT NULL,
//	    token_type    text NOT NULL DEFAULT 'Bearer',
//	    expiry        timestamptz NOT NULL,
//	    created_at    timestamptz NOT NULL DEFAULT now(),
//	    updated_at    timestamptz NOT NULL DEFAULT now()
//	);
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/ideanotion/glasstodo/internal/adapter/postgres"
	"github.com/ideanotion/glasstodo/internal/domain"
)

// Repo provides credential persistence backed by PostgreSQL.
// It accepts any Querier so unit tests can run against a pgx mock.
type Repo struct {
	db postgres.Querier
}

// New creates a new credential repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const credentialColumns = `id, user_token, access_token, refresh_token, token_type, expiry, created_at, updated_at`

const upsertSQL = `
INSERT INTO stored_credentials (id, user_token, access_token, refresh_token, token_type, expiry)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_token) DO UPDATE
SET access_token = EXCLUDED.access_token,
    refresh_token = EXCLUDED.refresh_token,
    token_type = EXCLUDED.token_type,
    expiry = EXCLUDED.expiry,
    updated_at = now()
RETURNING ` + credentialColumns

const getByUserTokenSQL = `
SELECT ` + credentialColumns + `
FROM stored_credentials
WHERE user_token = $1`

const listSQL = `
SELECT ` + credentialColumns + `
FROM stored_credentials
ORDER BY created_at ASC`

const deleteSQL = `
DELETE FROM stored_credentials WHERE user_token = $1`

const countSQL = `
SELECT count(*) FROM stored_credentials`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert inserts or refreshes the credential row for a user token.
func (r *Repo) Upsert(ctx context.Context, cred *domain.StoredCredential) (*domain.StoredCredential, error) {
	id := cred.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, upsertSQL,
		id, cred.UserToken, cred.AccessToken, cred.RefreshToken, cred.TokenType, cred.Expiry)

	stored, err := scanCredential(row)
	if err != nil {
		return nil, mapError(err, "credential", cred.UserToken)
	}

	return stored, nil
}

// GetByUserToken returns the credential row for a user token.
// Returns domain.ErrNotFound if no credential is stored for that user.
func (r *Repo) GetByUserToken(ctx context.Context, userToken string) (*domain.StoredCredential, error) {
	row := r.db.QueryRow(ctx, getByUserTokenSQL, userToken)

	cred, err := scanCredential(row)
	if err != nil {
		return nil, mapError(err, "credential", userToken)
	}

	return cred, nil
}

// List returns all stored credentials ordered by creation time.
func (r *Repo) List(ctx context.Context) ([]domain.StoredCredential, error) {
	rows, err := r.db.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.StoredCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Delete removes the credential row for a user token.
// Returns domain.ErrNotFound if no row was deleted.
func (r *Repo) Delete(ctx context.Context, userToken string) error {
	tag, err := r.db.Exec(ctx, deleteSQL, userToken)
	if err != nil {
		return mapError(err, "credential", userToken)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credential %s: %w", userToken, domain.ErrNotFound)
	}

	return nil
}

// Count returns the number of stored credentials. Used by the broadcast
// quota guard.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, key, err)
	}

	// pgx.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, key, domain.ErrNotFound)
	}

	// PgError codes
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrAlreadyExists)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, key, domain.ErrValidation)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, key, err)
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanCredential(row pgx.Row) (*domain.StoredCredential, error) {
	var cred domain.StoredCredential
	err := row.Scan(
		&cred.ID,
		&cred.UserToken,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.TokenType,
		&cred.Expiry,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}
