package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/account"
)

// AccountStore is the slice of the account service authentication relies on.
type AccountStore interface {
	LookupCredentials(ctx context.Context, username string) (*account.Credentials, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

// Service is the main auth service with dependencies
type Service struct {
	accounts       AccountStore
	tokenGenerator TokenGenerator
	checker        PermissionChecker
	logger         *slog.Logger
	dummyHash      []byte
}

// NewService creates a new auth service. bcryptCost must match the cost account passwords are
// hashed with, so that unknown usernames take as long to reject as wrong passwords.
func NewService(accounts AccountStore, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return &Service{
		accounts:       accounts,
		tokenGenerator: tokenGen,
		checker:        NewPermissionChecker(),
		logger:         logger,
		dummyHash:      dummy,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.accounts.LookupCredentials(ctx, dto.Username)
	if err != nil {
		if !errors.Is(err, account.ErrAccountNotFound) {
			s.logger.Error("failed to look up credentials", "username", dto.Username, "error", err)
			return AuthTokens{}, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(dto.Password))
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected: wrong password", "account_id", creds.AccountID)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !creds.IsActive {
		s.logger.Warn("login rejected: inactive account", "account_id", creds.AccountID)
		return AuthTokens{}, ErrUserInactive
	}

	tokens, err := s.issue(principalFrom(creds))
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.accounts.RecordLogin(ctx, creds.AccountID, time.Now()); err != nil {
		s.logger.Error("failed to record login", "account_id", creds.AccountID, "error", err)
	}

	s.logger.Info("login succeeded", "account_id", creds.AccountID)
	return tokens, nil
}

// RefreshTokens validates the refresh token, reloads the account and issues a fresh pair.
func (s *Service) RefreshTokens(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.current(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issue(principalFrom(creds))
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolveActor turns valid access claims into the actor for the request. The account is
// reloaded so deactivation and permission changes apply before the token expires.
func (s *Service) ResolveActor(ctx context.Context, claims *Claims) (*internal.Actor, error) {
	creds, err := s.current(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &internal.Actor{
		ID:          creds.AccountID,
		Username:    creds.Username,
		Permissions: creds.Permissions,
	}, nil
}

func (s *Service) HasAnyPermission(actor *internal.Actor, permissions ...string) bool {
	if actor == nil {
		return false
	}
	return s.checker.HasAnyPermission(actor.Permissions, permissions)
}

func (s *Service) current(ctx context.Context, claims *Claims) (*account.Credentials, error) {
	creds, err := s.accounts.LookupCredentials(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if creds.AccountID != claims.AccountID {
		return nil, ErrInvalidToken
	}
	if !creds.IsActive {
		return nil, ErrUserInactive
	}
	return creds, nil
}

func (s *Service) issue(p Principal) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(p)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(p)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	tokens := AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if gen, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		tokens.ExpiresIn = int64(gen.AccessTokenTTL.Seconds())
	}
	return tokens, nil
}

func principalFrom(creds *account.Credentials) Principal {
	return Principal{
		AccountID:   creds.AccountID,
		Username:    creds.Username,
		Permissions: creds.Permissions,
	}
}
