package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// shareAudience keeps share tokens and access tokens from being accepted in each other's place.
const shareAudience = "itinerary-share"

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// Itineraries is the read access sharing needs.
type Itineraries interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
}

type Service interface {
	// CreateLink signs a share token for an itinerary the caller owns.
	CreateLink(ctx context.Context, userID, id uuid.UUID) (*types.ShareLink, error)
	// Resolve returns the public view behind a share token.
	Resolve(ctx context.Context, token string) (*types.SharedItinerary, error)
	// QRCode renders a PNG of a fresh share link.
	QRCode(ctx context.Context, userID, id uuid.UUID, size int) ([]byte, error)
}

type shareClaims struct {
	ItineraryID string `json:"itinerary_id"`
	jwt.RegisteredClaims
}

type ServiceImpl struct {
	logger      *slog.Logger
	itineraries Itineraries
	secret      []byte
	issuer      string
	ttl         time.Duration
	baseURL     string
	defaultCity string
	now         func() time.Time
}

func NewServiceImpl(itineraries Itineraries, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	ttl := cfg.JWT.ShareTokenTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ServiceImpl{
		logger:      logger,
		itineraries: itineraries,
		secret:      []byte(cfg.JWT.SecretKey),
		issuer:      cfg.JWT.Issuer,
		ttl:         ttl,
		baseURL:     strings.TrimRight(cfg.Share.BaseURL, "/"),
		defaultCity: cfg.Planner.DefaultCity,
		now:         time.Now,
	}
}

func (s *ServiceImpl) CreateLink(ctx context.Context, userID, id uuid.UUID) (*types.ShareLink, error) {
	ctx, span := otel.Tracer("ShareService").Start(ctx, "CreateLink", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	if _, err := s.itineraries.Get(ctx, userID, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "itinerary lookup failed")
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := shareClaims{
		ItineraryID: id.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{shareAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign failed")
		return nil, fmt.Errorf("failed to sign share token: %w", err)
	}

	s.logger.InfoContext(ctx, "Share link created",
		slog.String("itineraryID", id.String()), slog.Time("expiresAt", expiresAt))
	span.SetStatus(codes.Ok, "created")
	return &types.ShareLink{
		Token:     token,
		URL:       s.baseURL + "/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ServiceImpl) parse(token string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(shareAudience),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims shareClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", types.ErrInvalidShareToken, err)
	}
	id, err := uuid.Parse(claims.ItineraryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad itinerary id", types.ErrInvalidShareToken)
	}
	return id, nil
}

func (s *ServiceImpl) Resolve(ctx context.Context, token string) (*types.SharedItinerary, error) {
	ctx, span := otel.Tracer("ShareService").Start(ctx, "Resolve")
	defer span.End()

	id, err := s.parse(token)
	if err != nil {
		s.logger.InfoContext(ctx, "Rejected share token", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid token")
		return nil, err
	}
	span.SetAttributes(attribute.String("itinerary.id", id.String()))

	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		// A deleted itinerary makes its outstanding links invalid.
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidShareToken
		}
		span.RecordError(err)
		return nil, err
	}

	days := planner.NormalizeIn(it.Days, s.defaultCity)
	return &types.SharedItinerary{
		ID:        it.ID,
		Name:      it.Name,
		StartDate: it.StartDate,
		Days:      days,
		Summary:   planner.SummarizeStore(days),
	}, nil
}

func (s *ServiceImpl) QRCode(ctx context.Context, userID, id uuid.UUID, size int) ([]byte, error) {
	link, err := s.CreateLink(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return EncodeQR(link.URL, size)
}

// EncodeQR renders content as a PNG QR code. Sizes outside (0, 1024] fall back to 256 pixels.
func EncodeQR(content string, size int) ([]byte, error) {
	if size <= 0 || size > maxQRSize {
		size = defaultQRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
