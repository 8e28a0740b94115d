package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"urly/internal/monitor"
	"urly/internal/registry"
)

const helpText = `🏠 <b>UR-ly</b>

<b>Commands:</b>

<b>/list</b> - List all subscriptions

<b>/check &lt;id&gt;</b> - Check vacancies of a subscription now
Example: /check 3f1c2b7e-...

<b>/remove &lt;id&gt;</b> - Delete a subscription
Example: /remove 3f1c2b7e-...

<b>/help</b> - Show this message
`

// Commands answers operator commands
type Commands struct {
	bot        Sender
	registry   *registry.Registry
	monitor    *monitor.Monitor
	authChatID int64 // Zero allows every chat
}

// NewCommands returns the command handlers. When authChatID is not zero only
// that chat may use commands other than /start and /help.
func NewCommands(bot Sender, reg *registry.Registry, mon *monitor.Monitor, authChatID int64) *Commands {
	return &Commands{bot: bot, registry: reg, monitor: mon, authChatID: authChatID}
}

// Handle dispatches one message
func (c *Commands) Handle(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	// Drop the @botname suffix
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	chatID := message.Chat.ID
	isPublicCommand := command == "/start" || command == "/help"

	if !isPublicCommand && c.authChatID != 0 && chatID != c.authChatID {
		c.reply(chatID, "You are not authorized to use this bot.", false)
		return
	}

	switch command {
	case "/start", "/help":
		c.reply(chatID, helpText, true)
	case "/list":
		c.handleList(ctx, chatID)
	case "/check":
		c.handleCheck(ctx, chatID, parts[1:])
	case "/remove":
		c.handleRemove(ctx, chatID, parts[1:])
	default:
		c.reply(chatID, "Unknown command. Use /help to see the available commands.", false)
	}
}

func (c *Commands) handleList(ctx context.Context, chatID int64) {
	subs, err := c.registry.ListAll(ctx)
	if err != nil {
		c.reply(chatID, fmt.Sprintf("❌ Failed to list subscriptions: %v", err), false)
		return
	}

	if len(subs) == 0 {
		c.reply(chatID, "📋 No subscriptions yet.", false)
		return
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("📋 <b>Subscriptions (%d):</b>\n\n", len(subs)))

	for _, s := range subs {
		response.WriteString(fmt.Sprintf("🆔 <code>%s</code>\n", escapeHTML(s.ID)))
		response.WriteString(fmt.Sprintf("🏢 %s\n", escapeHTML(s.DisplayName())))
		response.WriteString(fmt.Sprintf("🎯 Threshold: %d\n", s.Threshold))

		if s.LastCount != nil {
			response.WriteString(fmt.Sprintf("🚪 Last count: %d\n", *s.LastCount))
		}
		if s.LastChecked != nil {
			response.WriteString(fmt.Sprintf("🕐 Last checked: %s\n", s.LastChecked.Format("2006-01-02 15:04")))
		} else {
			response.WriteString("🕐 Last checked: never\n")
		}
		if s.LastNotified != nil {
			response.WriteString(fmt.Sprintf("🔔 Last notified: %s\n", s.LastNotified.Format("2006-01-02 15:04")))
		}

		response.WriteString(fmt.Sprintf("🔗 %s\n\n", escapeHTML(s.PropertyURL)))
	}

	c.reply(chatID, response.String(), true)
}

func (c *Commands) handleCheck(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		c.reply(chatID, "❌ Usage: /check <id>", false)
		return
	}

	sub, err := c.registry.Get(ctx, args[0])
	if errors.Is(err, registry.ErrNotFound) {
		c.reply(chatID, "❌ Subscription not found.", false)
		return
	}
	if err != nil {
		c.reply(chatID, fmt.Sprintf("❌ Failed to load subscription: %v", err), false)
		return
	}

	result, err := c.monitor.CheckSubscription(ctx, *sub)
	if err != nil {
		c.reply(chatID, fmt.Sprintf("❌ Check failed: %v", err), false)
		return
	}

	response := fmt.Sprintf(
		"📊 <b>%s</b>\n\n"+
			"Available rooms: %d\n"+
			"Threshold: %d\n"+
			"Link: %s",
		escapeHTML(sub.DisplayName()),
		result.Vacancies,
		sub.Threshold,
		escapeHTML(sub.PropertyURL),
	)

	switch {
	case result.Notified:
		response += "\n\n🔔 Notification sent."
	case result.NotifyErr != nil:
		response += fmt.Sprintf("\n\n⚠️ Notification failed: %s", escapeHTML(result.NotifyErr.Error()))
	}

	c.reply(chatID, response, true)
}

func (c *Commands) handleRemove(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		c.reply(chatID, "❌ Usage: /remove <id>", false)
		return
	}

	if err := c.registry.Delete(ctx, args[0]); err != nil {
		c.reply(chatID, fmt.Sprintf("❌ Failed to remove subscription: %v", err), false)
		return
	}

	c.reply(chatID, fmt.Sprintf("✅ Subscription removed: %s", args[0]), false)
}

// reply sends text, retrying without formatting when HTML is rejected
func (c *Commands) reply(chatID int64, text string, html bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	if _, err := c.bot.Send(msg); err != nil {
		if !html {
			log.Errorf("Failed to send message: %v", err)
			return
		}
		log.Warnf("Failed to send HTML message, retrying as plain text: %v", err)
		msg.ParseMode = ""
		if _, err := c.bot.Send(msg); err != nil {
			log.Errorf("Failed to send message: %v", err)
		}
	}
}

// escapeHTML escapes the characters Telegram HTML mode reserves
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}
