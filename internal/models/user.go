package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	// DiscordID is nil for users that never logged in through Discord.
	DiscordID *string `gorm:"uniqueIndex"`
	Username  string
	Email     string
	Avatar    string
	Organizer bool
	// Demo marks the account the demo token acts as. It is never matched by
	// username, so a Discord user with the same name stays separate.
	Demo bool `gorm:"index"`
}
