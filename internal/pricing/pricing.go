// Package pricing computes ticket prices from an event's base price and the
// credential-backed discounts a buyer holds.
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidArgument is wrapped by every validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

const FullDiscount = 100

var hundred = decimal.NewFromInt(100)

// Event is the calculator's view of an event: a base price and a discount
// table keyed by credential tag.
type Event struct {
	BasePrice decimal.Decimal
	Discounts map[string]int
}

type Result struct {
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Quantity        int
	DiscountPercent int
	// AppliedCredential is empty when no held credential earned a discount.
	AppliedCredential string
}

// EventFromModel flattens a stored event and its discount rows.
func EventFromModel(e models.Event) Event {
	discounts := make(map[string]int, len(e.Discounts))
	for _, d := range e.Discounts {
		discounts[d.CredentialTag] = d.Percent
	}
	return Event{BasePrice: e.BasePrice, Discounts: discounts}
}

// Validate reports whether the event can be priced.
func (e Event) Validate() error {
	if e.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base price %s is negative", ErrInvalidArgument, e.BasePrice)
	}
	for tag, pct := range e.Discounts {
		if tag == "" {
			return fmt.Errorf("%w: discount table has an empty credential tag", ErrInvalidArgument)
		}
		if pct < 0 || pct > FullDiscount {
			return fmt.Errorf("%w: discount for %q is %d%%, want 0-100", ErrInvalidArgument, tag, pct)
		}
	}
	return nil
}

// BestDiscount picks the held credential with the greatest discount. Equal
// percents go to the lexicographically smallest tag so the choice does not
// depend on the order credentials were listed in. A 0% match is not a discount.
func BestDiscount(discounts map[string]int, held []string) (tag string, percent int) {
	tags := uniqueTags(held)
	for _, t := range tags {
		pct, ok := discounts[t]
		if !ok || pct <= percent {
			continue
		}
		tag, percent = t, pct
	}
	return tag, percent
}

// ComputePurchase prices quantity tickets for a buyer holding the given
// credential tags.
func ComputePurchase(event Event, quantity int, held []string) (Result, error) {
	if quantity < 1 {
		return Result{}, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidArgument, quantity)
	}
	if err := event.Validate(); err != nil {
		return Result{}, err
	}

	tag, pct := BestDiscount(event.Discounts, held)

	unit := decimal.Zero
	if pct < FullDiscount {
		unit = event.BasePrice.Mul(hundred.Sub(decimal.NewFromInt(int64(pct)))).Div(hundred)
	}

	return Result{
		UnitPrice:         unit,
		TotalPrice:        unit.Mul(decimal.NewFromInt(int64(quantity))),
		Quantity:          quantity,
		DiscountPercent:   pct,
		AppliedCredential: tag,
	}, nil
}

func uniqueTags(held []string) []string {
	seen := make(map[string]struct{}, len(held))
	tags := make([]string, 0, len(held))
	for _, t := range held {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
