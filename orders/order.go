package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies an order into one of the fixed catalog categories.
type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "NonFiction"
	CategoryTechnical  Category = "Technical"
	CategoryChildren   Category = "Children"
)

// IsValid reports whether the category is one of the defined enum values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFiction, CategoryNonFiction, CategoryTechnical, CategoryChildren:
		return true
	default:
		return false
	}
}

// CreateOrderRequest is the inbound shape for order creation.
// It is transient - constructed per call, validated, and mapped into an Order.
//
// StockQuantity defaults to 1 when the field is absent from the request body;
// the HTTP layer applies the default before handing the request to the domain.
type CreateOrderRequest struct {
	Title         string
	Author        string
	ISBN          string
	Category      Category
	Price         decimal.Decimal
	PublishedDate time.Time
	CoverImageURL string
	StockQuantity int
}

// Order is the persisted order record.
//
// Title and ISBN are unique across all orders; the storage layer enforces
// both with constraints because the validation engine's uniqueness checks
// are not atomic with the insert.
type Order struct {
	ID            uuid.UUID
	Title         string
	Author        string
	ISBN          string
	Category      Category
	Price         decimal.Decimal
	PublishedDate time.Time
	CoverImageURL *string
	StockQuantity int
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// NewOrder maps a validated request into a persisted entity:
// fresh unique identifier, CreatedAt = now, IsAvailable derived from stock.
// UpdatedAt is reserved for later updates and left unset on create.
// The persisted price is always the full request price - display discounts
// are applied only when building the profile.
func NewOrder(request CreateOrderRequest, now time.Time) Order {
	var coverImageURL *string
	if request.CoverImageURL != "" {
		url := request.CoverImageURL
		coverImageURL = &url
	}

	return Order{
		ID:            uuid.New(),
		Title:         request.Title,
		Author:        request.Author,
		ISBN:          request.ISBN,
		Category:      request.Category,
		Price:         request.Price,
		PublishedDate: request.PublishedDate,
		CoverImageURL: coverImageURL,
		StockQuantity: request.StockQuantity,
		IsAvailable:   request.StockQuantity > 0,
		CreatedAt:     now,
	}
}

// Reader defines the read access to the persisted order collection
// needed by the validation rule engine.
type Reader interface {
	FindByTitle(ctx context.Context, title string) (*Order, error)
	FindByISBN(ctx context.Context, isbn string) (*Order, error)
	CountCreatedBetween(ctx context.Context, from time.Time, until time.Time) (int, error)
}

// Storage defines the full order storage contract needed by the creation
// orchestrator and the read side.
type Storage interface {
	Reader
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Insert(ctx context.Context, order Order) error
}
