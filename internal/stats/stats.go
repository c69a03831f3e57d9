// Package stats derives the gamified dashboard numbers from a user's
// achievement and credential counts.
package stats

import (
	"context"
	"fmt"

	"github.com/gdg-garage/academic-nft-api/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultTotalXP       = 5000
	DefaultMaxStreakDays = 30
)

const (
	RankLegendary     = "Legendary Scholar"
	RankEpic          = "Epic Scholar"
	RankDistinguished = "Distinguished Student"
	RankRising        = "Rising Scholar"
)

type Counts struct {
	TotalAchievements    int `json:"totalAchievements"`
	VerifiedAchievements int `json:"verifiedAchievements"`
	MintedCredentials    int `json:"mintedCredentials"`
	RareCount            int `json:"rareCount"`
	LegendaryCount       int `json:"legendaryCount"`
}

type Options struct {
	TotalXP       int
	MaxStreakDays int
}

func DefaultOptions() Options {
	return Options{TotalXP: DefaultTotalXP, MaxStreakDays: DefaultMaxStreakDays}
}

type DerivedStats struct {
	Level                 int    `json:"level"`
	XP                    int    `json:"xp"`
	TotalXP               int    `json:"totalXP"`
	StreakDays            int    `json:"streakDays"`
	Rank                  string `json:"rank"`
	BattlePassLevel       int    `json:"battlePassLevel"`
	SkillPoints           int    `json:"skillPoints"`
	UnlockedOpportunities int    `json:"unlockedOpportunities"`
}

// ComputeStats applies the fixed dashboard formulas. Negative counts are
// treated as zero.
func ComputeStats(c Counts, opts Options) DerivedStats {
	c = c.clamped()
	verified, minted := c.VerifiedAchievements, c.MintedCredentials

	return DerivedStats{
		Level:                 (verified+minted)/2 + 1,
		XP:                    verified*200 + minted*300,
		TotalXP:               opts.TotalXP,
		StreakDays:            min(c.TotalAchievements*2, opts.MaxStreakDays),
		Rank:                  Rank(c),
		BattlePassLevel:       (verified+minted)/3 + 1,
		SkillPoints:           verified*10 + minted*15,
		UnlockedOpportunities: verified*2 + minted*3,
	}
}

// Rank returns the first label whose condition holds, checked from
// legendary down.
func Rank(c Counts) string {
	switch {
	case c.LegendaryCount > 0:
		return RankLegendary
	case c.RareCount > 2:
		return RankEpic
	case c.VerifiedAchievements > 5:
		return RankDistinguished
	default:
		return RankRising
	}
}

func (c Counts) clamped() Counts {
	return Counts{
		TotalAchievements:    max(c.TotalAchievements, 0),
		VerifiedAchievements: max(c.VerifiedAchievements, 0),
		MintedCredentials:    max(c.MintedCredentials, 0),
		RareCount:            max(c.RareCount, 0),
		LegendaryCount:       max(c.LegendaryCount, 0),
	}
}

// CountsForUser recounts a user's achievements and credentials.
func CountsForUser(ctx context.Context, db *gorm.DB, userID uint) (Counts, error) {
	db = db.WithContext(ctx)

	var total, verified, minted, rare, legendary int64
	queries := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"achievements", db.Model(&models.Achievement{}).Where("user_id = ?", userID), &total},
		{"verified achievements", db.Model(&models.Achievement{}).Where("user_id = ? AND verified = ?", userID, true), &verified},
		{"credentials", db.Model(&models.Credential{}).Where("user_id = ?", userID), &minted},
		{"rare credentials", db.Model(&models.Credential{}).Where("user_id = ? AND rarity = ?", userID, models.RarityRare), &rare},
		{"legendary credentials", db.Model(&models.Credential{}).Where("user_id = ? AND rarity = ?", userID, models.RarityLegendary), &legendary},
	}
	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.name, err)
		}
	}

	return Counts{
		TotalAchievements:    int(total),
		VerifiedAchievements: int(verified),
		MintedCredentials:    int(minted),
		RareCount:            int(rare),
		LegendaryCount:       int(legendary),
	}, nil
}
