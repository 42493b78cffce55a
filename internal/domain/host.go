package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrHostInUse is returned when deleting a host that still owns slots.
	// Deletion policy is reject, never cascade.
	ErrHostInUse = errors.New("host still referenced by slots")
)

// Host is a calendar owner who publishes bookable slots.
// swagger:model Host
type Host struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewHost returns a new Host with the given fields.
func NewHost(id, name, email, passwordHash string, createdAt, updatedAt time.Time) *Host {
	return &Host{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// HostRepository defines storage operations for hosts.
type HostRepository interface {
	Create(ctx context.Context, host *Host) error
	GetByID(ctx context.Context, id string) (*Host, error)
	GetByEmail(ctx context.Context, email string) (*Host, error)
	// Delete removes the host. Returns ErrHostInUse while any slot references it.
	Delete(ctx context.Context, id string) error
}

// AuthService defines host account operations.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*Host, error)
	// Login returns a bearer token and the host on success, ErrInvalidCredentials otherwise.
	Login(ctx context.Context, email, password string) (string, *Host, error)
	GetByID(ctx context.Context, id string) (*Host, error)
}

// PasswordHasher hashes and verifies host passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs bearer tokens for authenticated hosts.
type TokenIssuer interface {
	Issue(hostID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier validates a bearer token and returns the host ID it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
