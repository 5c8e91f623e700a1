package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoredCredential is the persisted OAuth credential for one user.
// Exactly one row exists per user token; the authorization flow that
// provisions it lives outside this service.
type StoredCredential struct {
	ID           uuid.UUID
	UserToken    string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
