package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookstack/orders-management-api/orders"
	"github.com/bookstack/orders-management-api/validation"
)

// CreateOrderDTO is the inbound order-creation payload. StockQuantity is a
// pointer so an omitted field can be told apart from an explicit zero; an
// omitted field defaults to 1.
type CreateOrderDTO struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	ISBN          string          `json:"isbn"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	PublishedDate time.Time       `json:"publishedDate"`
	CoverImageURL string          `json:"coverImageUrl"`
	StockQuantity *int            `json:"stockQuantity"`
}

const defaultStockQuantity = 1

func (d CreateOrderDTO) toRequest() orders.CreateOrderRequest {
	stockQuantity := defaultStockQuantity
	if d.StockQuantity != nil {
		stockQuantity = *d.StockQuantity
	}

	return orders.CreateOrderRequest{
		Title:         d.Title,
		Author:        d.Author,
		ISBN:          d.ISBN,
		Category:      orders.Category(d.Category),
		Price:         d.Price,
		PublishedDate: d.PublishedDate,
		CoverImageURL: d.CoverImageURL,
		StockQuantity: stockQuantity,
	}
}

// ErrorResponse is the uniform error envelope. Failures is only populated
// for validation rejections.
type ErrorResponse struct {
	Error    string                    `json:"error"`
	Failures []validation.FieldFailure `json:"failures,omitempty"`
}
