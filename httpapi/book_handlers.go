package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookstack/orders-management-api/books"
	"github.com/bookstack/orders-management-api/validation"
)

const errMsgBookNotFound = "Book not found."

// BookHandler exposes the catalog CRUD endpoints.
type BookHandler struct {
	service *books.Service
	logger  *slog.Logger
}

func NewBookHandler(service *books.Service, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &BookHandler{service: service, logger: logger}
}

// Create handles POST /books: 201 with the stored book, 400 with the
// failure list on rule violations.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request books.CreateBookRequest
	if err := jsonAPI.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errMsgInvalidPayload})
		return
	}

	book, err := h.service.Create(r.Context(), request)
	if err != nil {
		h.writeBookError(w, r, err)
		return
	}

	w.Header().Set("Location", "/books/"+strconv.FormatInt(book.ID, 10))
	writeJSON(w, http.StatusCreated, book)
}

// List handles GET /books?page=&pageSize= with skip/take semantics.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		h.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetByID handles GET /books/{id}.
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeBookError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// UpdateByID handles PUT /books/{id}: only title and year change.
func (h *BookHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	var request books.UpdateBookRequest
	if err := jsonAPI.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errMsgInvalidPayload})
		return
	}

	if err := h.service.UpdateByID(r.Context(), id, request); err != nil {
		h.writeBookError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles DELETE /books/{id}.
func (h *BookHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.writeBookError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookHandler) bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: errMsgBookNotFound})
		return 0, false
	}

	return id, true
}

func (h *BookHandler) writeBookError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    errMsgValidation,
			Failures: validationErr.Failures,
		})
	case errors.Is(err, books.ErrBookNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: errMsgBookNotFound})
	default:
		h.logger.ErrorContext(r.Context(), "book operation failed",
			slog.String("correlationId", CorrelationIDFromContext(r.Context())),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errMsgInternal})
	}
}
