package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/logger"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/security"
	"github.com/AyushPithale/social-platform-gateway/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50

	refreshHandleBytes = 32
)

// AuthService handles registration, credential login, and refresh handle
// rotation.
type AuthService struct {
	users      port.UserRepository
	tokens     port.TokenRepository
	issuer     *security.TokenIssuer
	publisher  port.EventPublisher
	refreshTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService constructs an auth service.
func NewAuthService(
	users port.UserRepository,
	tokens port.TokenRepository,
	issuer *security.TokenIssuer,
	publisher port.EventPublisher,
	refreshTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		publisher:  publisher,
		refreshTTL: refreshTTL,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// TokenPair is the credential material returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Register creates a new account after validating the supplied fields and
// mints the account's first token pair.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validateUsername(username); err != nil {
		return nil, nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := security.ValidatePassword(password, username, email); err != nil {
		return nil, nil, domain.NewValidationError(err.Error())
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, nil, domain.NewInternalError("could not verify account availability", err)
	}
	if taken {
		return nil, nil, domain.NewValidationError("username or email already in use")
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, domain.NewInternalError("could not secure credentials", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, domain.NewValidationError("username or email already in use")
		}
		return nil, nil, domain.NewInternalError("could not create account", err)
	}

	pair, err := s.issueTokenPair(ctx, &user)
	if err != nil {
		return nil, nil, err
	}

	s.publishRegistered(ctx, user)

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &user, pair, nil
}

// Login verifies credentials and mints a fresh token pair. The identifier
// may be a username or an email address.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, domain.NewValidationError("identifier and password are required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, domain.NewAuthenticationError("invalid credentials")
		}
		return nil, nil, domain.NewInternalError("could not look up account", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, domain.NewInternalError("could not verify credentials", err)
	}
	if !ok {
		s.logger.Warn("login rejected",
			zap.String("user_id", user.ID),
		)
		return nil, nil, domain.NewAuthenticationError("invalid credentials")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh redeems an opaque refresh handle for a new token pair. Handles are
// single use: the presented handle is marked consumed before the replacement
// is issued, so replaying it fails even when two redemptions race.
func (s *AuthService) Refresh(ctx context.Context, rawHandle string) (*domain.User, *TokenPair, error) {
	rawHandle = strings.TrimSpace(rawHandle)
	if rawHandle == "" {
		return nil, nil, domain.NewValidationError("refresh token is required")
	}

	record, err := s.tokens.GetRefreshTokenByHash(ctx, security.HashToken(rawHandle))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, domain.NewAuthenticationError("invalid refresh token")
		}
		return nil, nil, domain.NewInternalError("could not look up refresh token", err)
	}

	now := s.now().UTC()
	if !record.IsActive(now) {
		return nil, nil, domain.NewAuthenticationError("invalid refresh token")
	}

	if err := s.tokens.MarkRefreshTokenUsed(ctx, record.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another redemption won the race.
			return nil, nil, domain.NewAuthenticationError("invalid refresh token")
		}
		return nil, nil, domain.NewInternalError("could not consume refresh token", err)
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, domain.NewAuthenticationError("invalid refresh token")
		}
		return nil, nil, domain.NewInternalError("could not look up account", err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, domain.NewInternalError("could not issue access token", err)
	}

	rawHandle, err := security.GenerateRefreshHandle(refreshHandleBytes)
	if err != nil {
		return nil, domain.NewInternalError("could not issue refresh token", err)
	}

	now := s.now().UTC()
	record := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawHandle),
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}

	if err := s.tokens.CreateRefreshToken(ctx, record); err != nil {
		return nil, domain.NewInternalError("could not store refresh token", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawHandle,
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
	}, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, user domain.User) {
	if s.publisher == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return domain.NewValidationError(fmt.Sprintf(
			"username must be between %d and %d characters", minUsernameLength, maxUsernameLength,
		))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.NewValidationError("email must be a valid address")
	}
	return nil
}
