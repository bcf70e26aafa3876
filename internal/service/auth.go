// Package service holds the CRM use cases: the user directory and
// credentials, leads, activities, business cards and dashboard statistics.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const userCacheName = "users"

// AuthService is the user directory: registration, login and token
// resolution to an account.
type AuthService struct {
	store   port.UserStore
	creds   *Credentials
	cache   port.Cache[*domain.User]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.UserStore, creds *Credentials, cache port.Cache[*domain.User], metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:   store,
		creds:   creds,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// Register: POST /api/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}
	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		s.metrics.IncrAuthEvent("register", false)
		return nil, &domain.ErrConflict{Message: "Email already registered"}
	}

	hash, err := s.creds.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		Company:      req.Company,
		PasswordHash: hash,
		CreatedAt:    now(),
	}
	// The unique index catches a concurrent registration that passed the check above.
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.metrics.IncrAuthEvent("register", false)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.creds.IssueToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.metrics.IncrAuthEvent("register", true)
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return &domain.TokenResponse{AccessToken: token, TokenType: domain.TokenType}, nil
}

// ============================================================
// Login: POST /api/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	badCredentials := &domain.ErrUnauthorized{Message: "Incorrect email or password"}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !s.creds.VerifyPassword(req.Password, user.PasswordHash) {
		s.metrics.IncrAuthEvent("login", false)
		s.logger.Warn("login: bad credentials", zap.String("email", req.Email))
		return nil, badCredentials
	}

	token, err := s.creds.IssueToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.metrics.IncrAuthEvent("login", true)
	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return &domain.TokenResponse{AccessToken: token, TokenType: domain.TokenType}, nil
}

// ============================================================
// Token resolution, used by the bearer middleware
// ============================================================

// Authenticate validates a bearer token and resolves it to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.creds.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.CurrentUser(ctx, subject)
}

// CurrentUser looks the token subject up. Lookups are cached for the cache
// TTL: the API never updates or deletes accounts, but one removed directly
// in the database keeps authenticating until its entry expires.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.CurrentUser")
	defer span.End()

	cacheKey := "user:" + email
	if u, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit(userCacheName)
		return u, nil
	}
	s.metrics.IncrCacheMiss(userCacheName)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, errInvalidToken
	}
	s.cache.Set(cacheKey, user)
	return user, nil
}

// ============================================================
// Internal helpers
// ============================================================

func validateEmail(email string) error {
	if email == "" {
		return &domain.ErrValidation{Field: "email", Message: "required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &domain.ErrValidation{Field: "email", Message: "not a valid email address"}
	}
	return nil
}

// now returns the current UTC time at the precision the document store keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
