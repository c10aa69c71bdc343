package orders

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/bookstack/orders-management-api/validation"
)

// Word lists consulted by the content rules. Matching is case-insensitive
// substring containment unless noted otherwise.
var (
	inappropriateWords      = []string{"violence", "adult", "gore", "curse"}
	childrenRestrictedWords = []string{"violence", "adult", "gore", "curse"}
	technicalKeywords       = []string{"guide", "reference", "manual", "tutorial", "advanced", "technology", "programming"}
	imageExtensions         = []string{"jpeg", "png", "jpg", "gif", "webp"}
)

var authorNamePattern = regexp.MustCompile("^[\\p{L}\\s\\-.'`]+$")

// Rule message texts. They surface verbatim in validation responses.
const (
	msgTitleRequired      = "Title is required."
	msgTitleLength        = "Title must be between 1 and 200 characters."
	msgTitleInappropriate = "Title contains inappropriate content."
	msgTitleNotUnique     = "A title with the same author already exists."
	msgAuthorRequired     = "Author is required."
	msgAuthorLength       = "Author must be between 2 and 100 characters."
	msgAuthorInvalidChars = "Author contains invalid characters (only letters, spaces, hyphens, apostrophes and dots are allowed)."
	msgISBNRequired       = "ISBN is required."
	msgISBNInvalid        = "ISBN must be a valid ISBN-10 or ISBN-13 (digits, hyphens allowed)."
	msgISBNNotUnique      = "ISBN already exists in the system."
	msgCategoryInvalid    = "Category is not valid."
	msgPriceNotPositive   = "Price must be greater than 0."
	msgPriceTooHigh       = "Price must be less than 10,000."
	msgPublishedFuture    = "Published date cannot be in the future."
	msgPublishedTooOld    = "Published date cannot be before year 1400."
	msgStockNegative      = "Stock quantity cannot be negative."
	msgStockTooHigh       = "Stock quantity cannot exceed 100,000."
	msgCoverImageInvalid  = "CoverImageUrl must be a valid HTTP/HTTPS image URL ending with .jpg, .jpeg, .png, .gif, or .webp."
	msgTechnicalMinPrice  = "Technical orders must have a minimum price of $20.00."
	msgTechnicalKeywords  = "Technical orders must contain technical keywords in the title."
	msgTechnicalTooOld    = "Technical orders must be published within the last 5 years."
	msgChildrenMaxPrice   = "Children's orders must have a maximum price of $50.00."
	msgChildrenRestricted = "Children's title contains restricted or inappropriate content."
	msgFictionAuthorShort = "Fiction author name must be at least 5 characters (full name required)."
	msgExpensiveStock     = "Expensive orders (>$100) must have limited stock (≤20 units)."
	msgBusinessRules      = "One or more business rules failed."
)

// Request field identifiers used to tag failures.
const (
	fieldTitle         = "title"
	fieldAuthor        = "author"
	fieldISBN          = "isbn"
	fieldCategory      = "category"
	fieldPrice         = "price"
	fieldPublishedDate = "publishedDate"
	fieldStockQuantity = "stockQuantity"
	fieldCoverImageURL = "coverImageUrl"
	fieldBusinessRules = "businessRules"
)

// Rule is one independent validation unit over an order creation request.
type Rule = validation.Rule[CreateOrderRequest]

// Validator evaluates the declarative rule set for order creation requests.
// It needs read access to the persisted collection for the uniqueness and
// daily-volume checks.
type Validator struct {
	reader           Reader
	logger           Logger
	contextualLogger ContextualLogger
	clock            func() time.Time
}

// NewValidator creates a validator over the given order reader.
// Either logger may be nil.
func NewValidator(reader Reader, logger Logger, contextualLogger ContextualLogger) *Validator {
	return &Validator{
		reader:           reader,
		logger:           logger,
		contextualLogger: contextualLogger,
		clock:            time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (v *Validator) WithClock(clock func() time.Time) *Validator {
	v.clock = clock
	return v
}

// Validate evaluates every rule in declaration order and collects all
// failures instead of stopping at the first violation. Only the business
// rule composite short-circuits internally. A non-nil error indicates an
// infrastructure fault while consulting storage, not a rule violation.
func (v *Validator) Validate(ctx context.Context, request CreateOrderRequest) ([]FieldFailure, error) {
	return validation.Evaluate(ctx, v.rules(), request)
}

//nolint:funlen // the rule table is long by nature, one entry per business rule
func (v *Validator) rules() []Rule {
	now := v.clock().UTC()
	fiveYearsAgo := now.AddDate(-5, 0, 0)
	minPublished := time.Date(1400, time.January, 1, 0, 0, 0, 0, time.UTC)

	isTechnical := func(r CreateOrderRequest) bool { return r.Category == CategoryTechnical }
	isChildren := func(r CreateOrderRequest) bool { return r.Category == CategoryChildren }
	isFiction := func(r CreateOrderRequest) bool { return r.Category == CategoryFiction }

	return []Rule{
		// Title.
		{Field: fieldTitle, Message: msgTitleRequired,
			Check: func(r CreateOrderRequest) bool { return r.Title != "" }},
		{Field: fieldTitle, Message: msgTitleLength,
			Check: func(r CreateOrderRequest) bool {
				length := utf8.RuneCountInString(r.Title)
				return length >= 1 && length <= 200
			}},
		{Field: fieldTitle, Message: msgTitleInappropriate,
			Check: func(r CreateOrderRequest) bool { return titleIsAppropriate(r.Title) }},
		{Field: fieldTitle, Message: msgTitleNotUnique,
			CheckCtx: v.titleIsUnique},

		// Author.
		{Field: fieldAuthor, Message: msgAuthorRequired,
			Check: func(r CreateOrderRequest) bool { return r.Author != "" }},
		{Field: fieldAuthor, Message: msgAuthorLength,
			Check: func(r CreateOrderRequest) bool {
				length := utf8.RuneCountInString(r.Author)
				return length >= 2 && length <= 100
			}},
		{Field: fieldAuthor, Message: msgAuthorInvalidChars,
			Check: func(r CreateOrderRequest) bool { return authorNamePattern.MatchString(r.Author) }},

		// ISBN.
		{Field: fieldISBN, Message: msgISBNRequired,
			Check: func(r CreateOrderRequest) bool { return r.ISBN != "" }},
		{Field: fieldISBN, Message: msgISBNInvalid,
			Check: func(r CreateOrderRequest) bool { return isValidISBN(r.ISBN) }},
		{Field: fieldISBN, Message: msgISBNNotUnique,
			CheckCtx: v.isbnIsUnique},

		// Category.
		{Field: fieldCategory, Message: msgCategoryInvalid,
			Check: func(r CreateOrderRequest) bool { return r.Category.IsValid() }},

		// Price.
		{Field: fieldPrice, Message: msgPriceNotPositive,
			Check: func(r CreateOrderRequest) bool { return r.Price.GreaterThan(decimal.Zero) }},
		{Field: fieldPrice, Message: msgPriceTooHigh,
			Check: func(r CreateOrderRequest) bool { return r.Price.LessThan(decimal.NewFromInt(10000)) }},

		// Published date.
		{Field: fieldPublishedDate, Message: msgPublishedFuture,
			Check: func(r CreateOrderRequest) bool { return !r.PublishedDate.After(now) }},
		{Field: fieldPublishedDate, Message: msgPublishedTooOld,
			Check: func(r CreateOrderRequest) bool { return !r.PublishedDate.Before(minPublished) }},

		// Stock quantity.
		{Field: fieldStockQuantity, Message: msgStockNegative,
			Check: func(r CreateOrderRequest) bool { return r.StockQuantity >= 0 }},
		{Field: fieldStockQuantity, Message: msgStockTooHigh,
			Check: func(r CreateOrderRequest) bool { return r.StockQuantity <= 100000 }},

		// Cover image URL - only checked when present and non-blank.
		{Field: fieldCoverImageURL, Message: msgCoverImageInvalid,
			Check: func(r CreateOrderRequest) bool {
				return strings.TrimSpace(r.CoverImageURL) == "" || isValidImageURL(r.CoverImageURL)
			}},

		// Conditional rules per category.
		{Field: fieldPrice, Message: msgTechnicalMinPrice, When: isTechnical,
			Check: func(r CreateOrderRequest) bool {
				return r.Price.GreaterThanOrEqual(decimal.NewFromInt(20))
			}},
		{Field: fieldTitle, Message: msgTechnicalKeywords, When: isTechnical,
			Check: func(r CreateOrderRequest) bool { return containsTechnicalKeyword(r.Title) }},
		{Field: fieldPublishedDate, Message: msgTechnicalTooOld, When: isTechnical,
			Check: func(r CreateOrderRequest) bool { return !r.PublishedDate.Before(fiveYearsAgo) }},
		{Field: fieldPrice, Message: msgChildrenMaxPrice, When: isChildren,
			Check: func(r CreateOrderRequest) bool {
				return r.Price.LessThanOrEqual(decimal.NewFromInt(50))
			}},
		{Field: fieldTitle, Message: msgChildrenRestricted, When: isChildren,
			Check: func(r CreateOrderRequest) bool { return titleSuitableForChildren(r.Title) }},
		{Field: fieldAuthor, Message: msgFictionAuthorShort, When: isFiction,
			Check: func(r CreateOrderRequest) bool { return utf8.RuneCountInString(r.Author) >= 5 }},

		// Cross-field rules, evaluated unconditionally after the per-field rules.
		{Field: fieldStockQuantity, Message: msgExpensiveStock,
			Check: func(r CreateOrderRequest) bool {
				return !(r.Price.GreaterThan(decimal.NewFromInt(100)) && r.StockQuantity > 20)
			}},
		// Duplicates the conditional five-year rule above; both fire
		// independently for an out-of-date technical order.
		{Field: fieldPublishedDate, Message: msgTechnicalTooOld,
			Check: func(r CreateOrderRequest) bool {
				return !(r.Category == CategoryTechnical && r.PublishedDate.Before(fiveYearsAgo))
			}},

		// Business rule composite - fails fast internally across its checks.
		{Field: fieldBusinessRules, Message: msgBusinessRules,
			CheckCtx: v.passBusinessRules},
	}
}

func (v *Validator) titleIsUnique(ctx context.Context, request CreateOrderRequest) (bool, error) {
	existing, err := v.reader.FindByTitle(ctx, request.Title)
	if err != nil {
		return false, err
	}

	return existing == nil, nil
}

func (v *Validator) isbnIsUnique(ctx context.Context, request CreateOrderRequest) (bool, error) {
	existing, err := v.reader.FindByISBN(ctx, request.ISBN)
	if err != nil {
		return false, err
	}

	return existing == nil, nil
}

func titleIsAppropriate(title string) bool {
	lowered := strings.ToLower(title)
	for _, word := range inappropriateWords {
		if strings.Contains(lowered, word) {
			return false
		}
	}

	return true
}

// isValidISBN strips hyphens and spaces; the remainder must be exactly
// 10 or 13 characters long.
func isValidISBN(isbn string) bool {
	trimmed := strings.NewReplacer("-", "", " ", "").Replace(isbn)

	return len(trimmed) == 10 || len(trimmed) == 13
}

// isValidImageURL checks the suffix after the last dot for a known image
// extension. The match is substring containment, not an exact suffix
// comparison, so a path ending in ".jpgx" passes - kept to match the
// long-standing catalog behavior.
func isValidImageURL(imageURL string) bool {
	dot := strings.LastIndex(imageURL, ".")
	if dot < 0 {
		return false
	}

	extension := imageURL[dot:]
	for _, validExtension := range imageExtensions {
		if strings.Contains(extension, validExtension) {
			return true
		}
	}

	return false
}

func containsTechnicalKeyword(title string) bool {
	lowered := strings.ToLower(title)
	for _, word := range technicalKeywords {
		if strings.Contains(lowered, word) {
			return true
		}
	}

	return false
}

func titleSuitableForChildren(title string) bool {
	lowered := strings.ToLower(title)
	for _, word := range childrenRestrictedWords {
		if strings.Contains(lowered, word) {
			return false
		}
	}

	return true
}
