package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// ParseFormat defaults to PDF.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", types.ErrInvalidInput, raw)
	}
}

// Document is a rendered export ready to be served.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Itineraries interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error)
}

// Linker issues the share link printed as a QR code on PDF exports.
type Linker interface {
	CreateLink(ctx context.Context, userID, id uuid.UUID) (*types.ShareLink, error)
}

type Service interface {
	Export(ctx context.Context, userID, id uuid.UUID, format Format) (*Document, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	itineraries Itineraries
	linker      Linker
	encodeQR    func(content string, size int) ([]byte, error)
}

// NewServiceImpl builds the exporter. A nil linker or encodeQR leaves the QR code off PDFs.
func NewServiceImpl(itineraries Itineraries, linker Linker, encodeQR func(string, int) ([]byte, error), logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		itineraries: itineraries,
		linker:      linker,
		encodeQR:    encodeQR,
	}
}

func (s *ServiceImpl) Export(ctx context.Context, userID, id uuid.UUID, format Format) (*Document, error) {
	ctx, span := otel.Tracer("ExportService").Start(ctx, "Export", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.String("format", string(format)),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Export"), slog.String("itineraryID", id.String()))

	it, err := s.itineraries.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	it.Days = planner.Normalize(it.Days)
	base := "itinerary-" + id.String()

	switch format {
	case FormatCSV:
		body, err := RenderCSV(it.Days)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return &Document{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	default:
		body, err := RenderPDF(it, planner.SummarizeStore(it.Days), s.qr(ctx, l, userID, id))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
			return nil, err
		}
		span.SetStatus(codes.Ok, "rendered")
		return &Document{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
}

// qr returns the share QR code, or nil when it cannot be produced. The PDF is still useful without it.
func (s *ServiceImpl) qr(ctx context.Context, l *slog.Logger, userID, id uuid.UUID) []byte {
	if s.linker == nil || s.encodeQR == nil {
		return nil
	}
	link, err := s.linker.CreateLink(ctx, userID, id)
	if err != nil {
		l.WarnContext(ctx, "Exporting without share QR code", slog.Any("error", err))
		return nil
	}
	png, err := s.encodeQR(link.URL, 256)
	if err != nil {
		l.WarnContext(ctx, "Exporting without share QR code", slog.Any("error", err))
		return nil
	}
	return png
}
