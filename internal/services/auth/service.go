package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandline/server/internal/dependencies/clock"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingFields      = errors.New("username and password are required")
)

// Claims is the JWT payload carried by bearer tokens
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Credentials is an issued token together with the public user profile
type Credentials struct {
	Token string
	User  *model.User
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs and verifies bearer tokens (HS256)
	Secret string
	// TokenTTL is the fixed token lifetime; no refresh or revocation exists
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 7 * 24 * time.Hour,
	}
}

// Service handles registration, login and bearer token verification
type Service struct {
	store  storage.Store
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// New creates a new auth service
func New(store storage.Store, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		store:  store,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// Register creates a new user account and issues a token
func (s *Service) Register(ctx context.Context, username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           model.UserID(uuid.NewString()),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", string(user.ID)))

	return s.issue(user)
}

// Login authenticates a user and issues a token.
// Unknown usernames and wrong passwords fail identically so the endpoint
// cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// VerifyToken validates a bearer token and returns the user id it carries
func (s *Service) VerifyToken(tokenString string) (model.UserID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return model.UserID(claims.UserID), nil
}

// issue signs a token for the user
func (s *Service) issue(user *model.User) (*Credentials, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: string(user.ID),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Credentials{Token: signed, User: user}, nil
}
