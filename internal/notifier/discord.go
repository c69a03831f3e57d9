package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/academic-nft-api/internal/models"
)

type Notifier interface {
	NotifyPurchase(user models.User, event models.Event, ticket models.Ticket) error
	NotifyMint(user models.User, achievement models.Achievement, credential models.Credential) error
}

// MessageSender is the part of a discordgo session the notifier needs.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
}

func NewDiscordNotifier(session MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewDiscordSession opens a bot session for botToken.
func NewDiscordSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	return discordgo.New("Bot " + botToken)
}

func (n *DiscordNotifier) NotifyPurchase(user models.User, event models.Event, ticket models.Ticket) error {
	discount := "none"
	if ticket.AppliedCredential != nil {
		discount = fmt.Sprintf("%d%% via `%s`", ticket.DiscountPercent, *ticket.AppliedCredential)
	}

	message := fmt.Sprintf("🎟️ **Ticket Purchase**\n**User:** %s\n**Event:** %s (%s)\n**Quantity:** %d\n**Total:** %s\n**Discount:** %s",
		user.Username,
		event.Name,
		event.StartsAt.Format("2006-01-02"),
		ticket.Quantity,
		ticket.TotalPrice.StringFixed(2),
		discount,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyMint(user models.User, achievement models.Achievement, credential models.Credential) error {
	message := fmt.Sprintf("🏅 **Credential Minted**\n**User:** %s\n**Achievement:** %s\n**Credential:** `%s` (%s)",
		user.Username,
		achievement.Title,
		credential.Tag,
		credential.Rarity,
	)
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}
