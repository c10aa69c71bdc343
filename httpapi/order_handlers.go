package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/bookstack/orders-management-api/orders"
	"github.com/bookstack/orders-management-api/validation"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	errMsgInvalidPayload = "Invalid request payload."
	errMsgValidation     = "Validation failed."
	errMsgInternal       = "An unexpected error occurred."
	errMsgNotFound       = "Order not found."
)

// OrderHandler exposes the order intake and read endpoints.
type OrderHandler struct {
	creation orders.CreateOrderHandler
	storage  orders.Storage
	logger   *slog.Logger
	clock    func() time.Time
}

// NewOrderHandler wires the creation orchestrator and the read side.
// A nil logger falls back to the process default.
func NewOrderHandler(creation orders.CreateOrderHandler, storage orders.Storage, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderHandler{
		creation: creation,
		storage:  storage,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (h *OrderHandler) WithClock(clock func() time.Time) *OrderHandler {
	h.clock = clock
	return h
}

// Create handles POST /orders: decode, run the creation pipeline, answer
// 201 with the derived profile. Rule violations answer 400 with the full
// failure list; everything else is an opaque 500.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateOrderDTO
	if err := jsonAPI.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errMsgInvalidPayload})
		return
	}

	profile, err := h.creation.Handle(r.Context(), dto.toRequest())
	if err != nil {
		var validationErr *validation.Error
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:    errMsgValidation,
				Failures: validationErr.Failures,
			})

			return
		}

		h.logger.ErrorContext(r.Context(), "order creation failed",
			slog.String("correlationId", CorrelationIDFromContext(r.Context())),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errMsgInternal})

		return
	}

	w.Header().Set("Location", "/orders/"+profile.ID.String())
	writeJSON(w, http.StatusCreated, profile)
}

// GetByID handles GET /orders/{id}. The profile is derived fresh on every
// read, so age and availability reflect the current clock.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: errMsgNotFound})
		return
	}

	order, err := h.storage.FindByID(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "order lookup failed",
			slog.String("orderId", id.String()),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errMsgInternal})

		return
	}

	if order == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: errMsgNotFound})
		return
	}

	writeJSON(w, http.StatusOK, orders.BuildProfile(*order, h.clock().UTC()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonAPI.NewEncoder(w).Encode(v)
}
