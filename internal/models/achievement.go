package models

import (
	"time"

	"gorm.io/gorm"
)

type Achievement struct {
	gorm.Model
	UserID       uint       `json:"user_id" gorm:"index"`
	User         User       `json:"-"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Description  string     `json:"description"`
	Verified     bool       `json:"verified"`
	VerifiedAt   *time.Time `json:"verified_at"`
	VerifiedByID *uint      `json:"verified_by_id"`
}

// Credential is the collectible minted from a verified achievement. Its Tag is
// the key events use to look up discounts.
type Credential struct {
	gorm.Model
	UserID        uint        `json:"user_id" gorm:"index"`
	AchievementID uint        `json:"achievement_id" gorm:"uniqueIndex"`
	Achievement   Achievement `json:"-"`
	Tag           string      `json:"tag" gorm:"index"`
	Rarity        Rarity      `json:"rarity"`
	TokenID       string      `json:"token_id" gorm:"uniqueIndex"`
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}
