package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"calbook/internal/domain"
)

type authService struct {
	hostRepo    domain.HostRepository
	hasher      domain.PasswordHasher
	tokens      domain.TokenIssuer
	tokenExpiry time.Duration
}

// NewAuthService creates an AuthService for host accounts.
func NewAuthService(
	hostRepo domain.HostRepository,
	hasher domain.PasswordHasher,
	tokens domain.TokenIssuer,
	tokenExpiry time.Duration,
) domain.AuthService {
	return &authService{
		hostRepo:    hostRepo,
		hasher:      hasher,
		tokens:      tokens,
		tokenExpiry: tokenExpiry,
	}
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (*domain.Host, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	host := domain.NewHost(uuid.NewString(), strings.TrimSpace(name), email, hash, now, now)
	if err := s.hostRepo.Create(ctx, host); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create host: %w", err)
	}
	return host, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Host, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	host, err := s.hostRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get host: %w", err)
	}
	if err := s.hasher.Compare(host.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(host.ID, host.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, host, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	return s.hostRepo.GetByID(ctx, id)
}
