package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/contre95/monkeypress/src/content"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the metrics feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the metrics feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes stats Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "stats":
		return h.handleStats(bot, chatID)
	default:
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Unknown stats command. Use /stats"))
		return nil
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"stats": "Show content statistics",
	}
}

// HandleCallback handles callback queries for this feature (metrics has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// handleStats shows content statistics
func (h *TelegramHandler) handleStats(bot *tgbotapi.BotAPI, chatID int64) error {
	stats, err := h.service.Refresh(context.Background())
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "❌ Failed to get content statistics")
		bot.Send(msg)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, statsMessage(stats))
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

func statsMessage(stats *Stats) string {
	var b strings.Builder
	b.WriteString("📊 *Content Statistics*\n\n")
	for _, kind := range content.Kinds {
		fmt.Fprintf(&b, "%s: `%d`\n", kind, stats.Entities[kind])
	}
	fmt.Fprintf(&b, "---\n🧹 Dangling links: `%d`", stats.Dangling)
	return b.String()
}
