package orders

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OrderProfile is the read-facing representation of an Order with computed
// display fields. It is ephemeral - built fresh on every successful creation
// and every read, never persisted or cached.
type OrderProfile struct {
	ID                  uuid.UUID       `json:"id"`
	Title               string          `json:"title"`
	Author              string          `json:"author"`
	ISBN                string          `json:"isbn"`
	CategoryDisplayName string          `json:"categoryDisplayName"`
	Price               decimal.Decimal `json:"price"`
	FormattedPrice      string          `json:"formattedPrice"`
	PublishedDate       time.Time       `json:"publishedDate"`
	CreatedAt           time.Time       `json:"createdAt"`
	CoverImageURL       *string         `json:"coverImageUrl"`
	IsAvailable         bool            `json:"isAvailable"`
	StockQuantity       int             `json:"stockQuantity"`
	PublishedAge        string          `json:"publishedAge"`
	AuthorInitials      string          `json:"authorInitials"`
	AvailabilityStatus  string          `json:"availabilityStatus"`
}

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// BuildProfile computes the full display representation for an order.
// It is a single pure transformation - no per-field resolver indirection.
func BuildProfile(order Order, now time.Time) OrderProfile {
	displayPrice := DisplayPrice(order.Category, order.Price)

	return OrderProfile{
		ID:                  order.ID,
		Title:               order.Title,
		Author:              order.Author,
		ISBN:                order.ISBN,
		CategoryDisplayName: CategoryDisplayName(order.Category),
		Price:               displayPrice,
		FormattedPrice:      FormattedPrice(order.Price),
		PublishedDate:       order.PublishedDate,
		CreatedAt:           order.CreatedAt,
		CoverImageURL:       order.CoverImageURL,
		IsAvailable:         order.IsAvailable,
		StockQuantity:       order.StockQuantity,
		PublishedAge:        PublishedAge(order.PublishedDate, now),
		AuthorInitials:      AuthorInitials(order.Author),
		AvailabilityStatus:  AvailabilityStatus(order.IsAvailable, order.StockQuantity),
	}
}

// CategoryDisplayName maps a category onto its catalog display label.
func CategoryDisplayName(category Category) string {
	switch category {
	case CategoryFiction:
		return "Fiction & Literature"
	case CategoryNonFiction:
		return "Non-Fiction"
	case CategoryTechnical:
		return "Technical & Professional"
	case CategoryChildren:
		return "Children's Orders"
	default:
		return "Uncategorized"
	}
}

// DisplayPrice applies the 10% display discount for Children's orders.
// The persisted price is never discounted.
func DisplayPrice(category Category, price decimal.Decimal) decimal.Decimal {
	if category == CategoryChildren {
		return price.Mul(decimal.NewFromFloat(0.9))
	}

	return price
}

// FormattedPrice renders the full (undiscounted) price in locale currency
// format with two fractional digits, e.g. "$45.00".
func FormattedPrice(price decimal.Decimal) string {
	return currencyPrinter.Sprintf("%v", currency.Symbol(currency.USD.Amount(price.InexactFloat64())))
}

// AuthorInitials derives initials from the author name: single token keeps
// its original case, multiple tokens yield uppercased first and last
// initials ("Jane Doe" -> "J. D."), an empty author yields "?".
func AuthorInitials(author string) string {
	names := strings.Fields(author)

	switch {
	case len(names) == 1:
		return firstLetter(names[0]) + "."
	case len(names) > 1:
		first := strings.ToUpper(firstLetter(names[0]))
		last := strings.ToUpper(firstLetter(names[len(names)-1]))
		return first + ". " + last + "."
	default:
		return "?"
	}
}

// firstLetter returns the first rune of the token, so that multi-byte
// letters ("Élodie", "Örjan") are not sliced mid-encoding.
func firstLetter(token string) string {
	r, _ := utf8.DecodeRuneInString(token)
	return string(r)
}

// PublishedAge buckets the elapsed time since publication.
//
// Exactly 1825 days yields "Classic"; anything older falls through to
// "Uncategorized". The gap is intentional - it mirrors the bucket borders
// the catalog has always used, even though it leaves nearly all orders
// older than five years unbucketed.
func PublishedAge(publishedDate time.Time, now time.Time) string {
	days := now.Sub(publishedDate).Hours() / 24

	switch {
	case days < 30:
		return "New Release"
	case days < 365:
		return strconv.Itoa(int(days)/30) + " months old"
	case days < 1825:
		return strconv.Itoa(int(days)/365) + " years old"
	case days == 1825:
		return "Classic"
	default:
		return "Uncategorized"
	}
}

// AvailabilityStatus derives the stock display status.
//
// The "Unavailable" branch is unreachable in practice because zero stock
// always implies IsAvailable == false, but it is kept to match the
// documented derivation table.
func AvailabilityStatus(isAvailable bool, stockQuantity int) string {
	if !isAvailable {
		return "Out of Stock"
	}

	switch {
	case stockQuantity == 0:
		return "Unavailable"
	case stockQuantity == 1:
		return "Last Copy"
	case stockQuantity <= 5:
		return "Limited Stock"
	default:
		return "In Stock"
	}
}
