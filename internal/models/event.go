package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Money columns hold the exact decimal text. Prices are not rounded to cents,
// and SQLite would coerce a numeric column to a float.
type Event struct {
	gorm.Model
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartsAt    time.Time       `json:"starts_at"`
	BasePrice   decimal.Decimal `json:"base_price" gorm:"type:text"`
	Discounts   []EventDiscount `json:"discounts"`
}

// EventDiscount grants Percent off the base price to holders of CredentialTag.
type EventDiscount struct {
	gorm.Model
	EventID       uint   `json:"event_id" gorm:"uniqueIndex:idx_event_tag"`
	CredentialTag string `json:"credential_tag" gorm:"uniqueIndex:idx_event_tag"`
	Percent       int    `json:"percent"`
}

type Ticket struct {
	ID                string          `json:"id" gorm:"primaryKey"`
	CreatedAt         time.Time       `json:"created_at"`
	EventID           uint            `json:"event_id" gorm:"index"`
	Event             Event           `json:"-"`
	UserID            uint            `json:"user_id" gorm:"index"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price" gorm:"type:text"`
	TotalPrice        decimal.Decimal `json:"total_price" gorm:"type:text"`
	DiscountPercent   int             `json:"discount_percent"`
	AppliedCredential *string         `json:"applied_credential"`
}

// All returns every model for auto migration.
func All() []any {
	return []any{
		&User{},
		&APIKey{},
		&Achievement{},
		&Credential{},
		&Event{},
		&EventDiscount{},
		&Ticket{},
	}
}
