// Package httpapi is the inbound HTTP surface: chi routing, DTO decoding
// and the uniform error envelope over the order intake and the book catalog.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full route table. Either handler may be nil, in
// which case its routes are not mounted.
func NewRouter(orderHandler *OrderHandler, bookHandler *BookHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(CorrelationID)
	r.Use(middleware.Recoverer)

	if orderHandler != nil {
		r.Post("/orders", orderHandler.Create)
		r.Get("/orders/{id}", orderHandler.GetByID)
	}

	if bookHandler != nil {
		r.Post("/books", bookHandler.Create)
		r.Get("/books", bookHandler.List)
		r.Get("/books/{id}", bookHandler.GetByID)
		r.Put("/books/{id}", bookHandler.UpdateByID)
		r.Delete("/books/{id}", bookHandler.DeleteByID)
	}

	return r
}
