package editorial

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxListed keeps the reply under Telegram's message size limit.
const maxListed = 30

// TelegramHandler handles Telegram commands for the editorial feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the editorial feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes editorial Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "dangling":
		text, err := h.danglingText(context.Background())
		if err != nil {
			bot.Send(tgbotapi.NewMessage(chatID, "❌ Failed to list dangling links"))
			return err
		}
		_, err = bot.Send(tgbotapi.NewMessage(chatID, text))
		return err
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown editorial command. Use /dangling"))
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"dangling": "List links whose target was deleted",
	}
}

// HandleCallback handles callback queries for this feature (editorial has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) danglingText(ctx context.Context) (string, error) {
	items, err := h.service.Dangling(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "✅ No dangling links", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧹 %d dangling link(s)\n", len(items))
	for i, item := range items {
		if i == maxListed {
			fmt.Fprintf(&b, "… and %d more", len(items)-maxListed)
			break
		}
		owner := item.OwnerTitle
		if owner == "" {
			owner = item.OwnerID
		}
		fmt.Fprintf(&b, "• %s: %s link %d\n", owner, item.Kind, item.LinkID)
	}
	return b.String(), nil
}
