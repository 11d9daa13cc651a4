package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	// ParseToken validates an access token; it backs the Authenticate middleware.
	ParseToken(token string) (*appMiddleware.Claims, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cfg    *config.Config
	now    func() time.Time
}

func NewServiceImpl(repo Repository, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	resp, err := s.issue(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "registered")
	return resp, nil
}

func (s *ServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.DebugContext(ctx, "Login for unknown email")
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, types.ErrInvalidCredentials
		}
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.DebugContext(ctx, "Password mismatch", slog.String("userID", user.ID.String()))
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, types.ErrInvalidCredentials
	}

	resp, err := s.issue(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	span.SetStatus(codes.Ok, "logged in")
	return resp, nil
}

func (s *ServiceImpl) ParseToken(token string) (*appMiddleware.Claims, error) {
	return appMiddleware.HMACParser([]byte(s.cfg.JWT.SecretKey), s.cfg.JWT.Issuer, s.cfg.JWT.Audience)(token)
}

func (s *ServiceImpl) issue(user *types.User) (*types.AuthResponse, error) {
	ttl := s.cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &appMiddleware.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if s.cfg.JWT.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.JWT.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return &types.AuthResponse{AccessToken: signed, ExpiresAt: expiresAt, User: *user}, nil
}
