package books

import (
	"context"
	"log/slog"

	"github.com/bookstack/orders-management-api/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service orchestrates catalog operations: validate, persist, read back.
type Service struct {
	storage   Storage
	validator *Validator
	logger    *slog.Logger
}

// NewService creates the catalog service. A nil logger falls back to the
// process default.
func NewService(storage Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		storage:   storage,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Create validates the request and inserts the book with its pages.
// Rule violations are returned as a *validation.Error.
func (s *Service) Create(ctx context.Context, request CreateBookRequest) (*Book, error) {
	failures, err := s.validator.Validate(ctx, request)
	if err != nil {
		s.logger.ErrorContext(ctx, "book validation failed",
			slog.String("title", request.Title),
			slog.String("error", err.Error()))

		return nil, err
	}

	if len(failures) > 0 {
		s.logger.DebugContext(ctx, "book creation rejected",
			slog.String("title", request.Title),
			slog.Int("failures", len(failures)))

		return nil, &validation.Error{Failures: failures}
	}

	book := &Book{
		Title:  request.Title,
		Author: request.Author,
		Year:   request.Year,
		Pages:  request.Pages,
	}

	id, err := s.storage.Insert(ctx, book)
	if err != nil {
		s.logger.ErrorContext(ctx, "book creation failed",
			slog.String("title", request.Title),
			slog.String("error", err.Error()))

		return nil, err
	}

	book.ID = id
	s.logger.InfoContext(ctx, "book created",
		slog.Int64("id", id),
		slog.String("title", book.Title))

	return book, nil
}

// GetByID returns the book with its pages, or ErrBookNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*Book, error) {
	return s.storage.FindByID(ctx, id)
}

// List returns one page of the catalog. Page numbering starts at 1;
// out-of-range inputs are clamped rather than rejected.
func (s *Service) List(ctx context.Context, page int, pageSize int) ([]Book, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return s.storage.List(ctx, (page-1)*pageSize, pageSize)
}

// UpdateByID changes the title and year of an existing book. Other fields,
// pages included, are not updatable.
func (s *Service) UpdateByID(ctx context.Context, id int64, request UpdateBookRequest) error {
	if err := s.storage.Update(ctx, id, request.Title, request.Year); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "book updated", slog.Int64("id", id))

	return nil
}

// DeleteByID removes the book and its pages. Deleting an unknown id reports
// ErrBookNotFound.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "book deleted", slog.Int64("id", id))

	return nil
}
