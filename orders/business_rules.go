package orders

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dailyCreationLimit caps how many orders may be created per UTC calendar day.
const dailyCreationLimit = 500

const (
	logMsgDailyLimitReached   = "business rule failed: daily order limit reached"
	logMsgTechnicalUnderPrice = "business rule failed: technical order below minimum price"
	logMsgChildrenRestricted  = "business rule failed: children's order title contains restricted content"
	logMsgHighValueStock      = "business rule failed: high-value order exceeds stock limit"
	logMsgBusinessRulesPassed = "all business rules passed"

	logAttrDailyCount = "daily_count"
	logAttrDailyLimit = "daily_limit"
	logAttrPrice      = "price"
	logAttrStock      = "stock"
)

// childrenRestrictedPatterns match restricted words on word boundaries.
// This is deliberately stricter than the substring rule in the field
// validation: the substring rule rejects "violence" inside any title text,
// the business rule only trips on whole words.
var childrenRestrictedPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(childrenRestrictedWords))
	for i, word := range childrenRestrictedWords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(word)) + `\b`)
	}
	return patterns
}()

// passBusinessRules runs the composite asynchronous business check.
// The four conditions are evaluated in order and the composite
// short-circuits on the first failing one. Every failure logs a warning;
// a full pass logs a debug trace.
func (v *Validator) passBusinessRules(ctx context.Context, request CreateOrderRequest) (bool, error) {
	now := v.clock().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	todaysCount, err := v.reader.CountCreatedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return false, err
	}

	if todaysCount >= dailyCreationLimit {
		v.warn(ctx, logMsgDailyLimitReached,
			logAttrDailyCount, todaysCount,
			logAttrDailyLimit, dailyCreationLimit)
		return false, nil
	}

	if request.Category == CategoryTechnical && request.Price.LessThan(decimal.NewFromInt(20)) {
		v.warn(ctx, logMsgTechnicalUnderPrice,
			logAttrPrice, request.Price.String(),
			logAttrTitle, request.Title)
		return false, nil
	}

	if request.Category == CategoryChildren {
		loweredTitle := strings.ToLower(request.Title)
		for _, pattern := range childrenRestrictedPatterns {
			if pattern.MatchString(loweredTitle) {
				v.warn(ctx, logMsgChildrenRestricted, logAttrTitle, request.Title)
				return false, nil
			}
		}
	}

	if request.Price.GreaterThan(decimal.NewFromInt(500)) && request.StockQuantity > 10 {
		v.warn(ctx, logMsgHighValueStock,
			logAttrPrice, request.Price.String(),
			logAttrStock, request.StockQuantity)
		return false, nil
	}

	v.debug(ctx, logMsgBusinessRulesPassed,
		logAttrTitle, request.Title,
		logAttrISBN, request.ISBN,
		logAttrAuthor, request.Author)

	return true, nil
}

func (v *Validator) warn(ctx context.Context, msg string, args ...any) {
	if v.contextualLogger != nil {
		v.contextualLogger.WarnContext(ctx, msg, args...)
	} else if v.logger != nil {
		v.logger.Warn(msg, args...)
	}
}

func (v *Validator) debug(ctx context.Context, msg string, args ...any) {
	if v.contextualLogger != nil {
		v.contextualLogger.DebugContext(ctx, msg, args...)
	} else if v.logger != nil {
		v.logger.Debug(msg, args...)
	}
}
