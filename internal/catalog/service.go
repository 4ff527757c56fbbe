package catalog

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "catalogapi/internal/catalog"

// Service holds the business rules over the catalog.
type Service struct {
	repo   Repository
	tracer trace.Tracer
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, tracer: otel.Tracer(tracerName)}
}

// GetBook looks a book up by id. A missing book is reported with ok == false
// and a nil error; err is only set when the store fails.
func (s *Service) GetBook(ctx context.Context, id BookID) (b Book, ok bool, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetBook", trace.WithAttributes(attribute.String("book.id", id.String())))
	defer func() { endSpan(span, err) }()

	b, err = s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, err
	}
	return b, true, nil
}

// IsAvailable is true only for an existing book whose flag is set. Callers
// cannot tell a missing book from an unavailable one.
func (s *Service) IsAvailable(ctx context.Context, id BookID) (bool, error) {
	b, ok, err := s.GetBook(ctx, id)
	if err != nil {
		return false, err
	}
	return ok && b.Available, nil
}

// UpdateAvailability sets the availability flag of an existing book.
// Unknown ids yield ErrNotFound.
func (s *Service) UpdateAvailability(ctx context.Context, id BookID, available bool) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.UpdateAvailability", trace.WithAttributes(
		attribute.String("book.id", id.String()),
		attribute.Bool("book.available", available),
	))
	defer func() { endSpan(span, err) }()

	return s.repo.SetAvailability(ctx, id, available)
}

// Search returns every book whose title, authors, ISBN or category contain
// criterion, ignoring case. The result is never nil.
func (s *Service) Search(ctx context.Context, criterion string) (books []Book, err error) {
	criterion = strings.TrimSpace(criterion)
	if criterion == "" {
		return nil, ErrInvalidCriterion
	}

	ctx, span := s.tracer.Start(ctx, "catalog.Search", trace.WithAttributes(attribute.String("catalog.criterion", criterion)))
	defer func() {
		span.SetAttributes(attribute.Int("catalog.results", len(books)))
		endSpan(span, err)
	}()

	books, err = s.repo.Search(ctx, criterion)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Ready reports whether the backing store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
