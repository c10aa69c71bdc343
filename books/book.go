// Package books implements the catalog service: CRUD over books and their
// pages, with request validation in the same declarative rule style as the
// order intake.
package books

import (
	"context"
	"errors"
)

// ErrBookNotFound reports a lookup, update or delete against an id that is
// not in the catalog.
var ErrBookNotFound = errors.New("book not found")

// Page is one page of a book. Pages are owned by their book and have no
// identity of their own.
type Page struct {
	Number int    `json:"number" db:"page_number"`
	Body   string `json:"body" db:"body"`
}

// Book is the catalog entity. The ID is assigned by storage on insert.
type Book struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Year   int    `json:"year" db:"year"`
	Pages  []Page `json:"pages"`
}

// CreateBookRequest is the inbound payload for adding a book to the catalog.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Pages  []Page `json:"pages"`
}

// UpdateBookRequest carries the only two fields an update may change.
type UpdateBookRequest struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// Storage is the persistence contract the service depends on.
type Storage interface {
	Insert(ctx context.Context, book *Book) (int64, error)
	FindByID(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context, offset int, limit int) ([]Book, error)
	Update(ctx context.Context, id int64, title string, year int) error
	Delete(ctx context.Context, id int64) error
}
