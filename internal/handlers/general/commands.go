package general

import (
	"context"
	"fmt"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/powerbot/internal/bot"
	"github.com/iamwavecut/powerbot/internal/handlers/base"
)

const (
	TextStartGroup = "🤖 *PowerBot Activated!*\n\n" +
		"I'm now protecting and enhancing this group.\n\n" +
		"*Features:*\n" +
		"• Anti-spam protection\n" +
		"• Welcome messages\n" +
		"• Crypto price alerts\n" +
		"• Group management\n\n" +
		"Use /help to see all commands."

	TextStartPrivate = "👋 *Welcome to PowerBot!*\n\n" +
		"I'm a powerful Telegram bot for:\n" +
		"• 📊 Crypto price tracking\n" +
		"• 🛡️ Group management\n" +
		"• 🚫 Anti-spam protection\n" +
		"• 👋 Custom welcome messages\n\n" +
		"*Commands:*\n" +
		"/price <coin> - Get crypto price\n" +
		"/alert <coin> <price> - Set price alert\n" +
		"/help - Full command list\n\n" +
		"Add me to your group to get started!"

	TextHelp = "📚 *PowerBot Commands*\n\n" +
		"*Crypto:*\n" +
		"/price <coin> - Get current price\n" +
		"/top - Top 10 coins by market cap\n" +
		"/alert <coin> <price> - Set price alert\n" +
		"/alerts - View your alerts\n\n" +
		"*Group Management (Admins):*\n" +
		"/ban - Reply to ban user\n" +
		"/kick - Reply to kick user\n" +
		"/mute <duration> - Mute user (1h, 1d, etc)\n" +
		"/warn - Warn user\n" +
		"/setwelcome <message> - Set welcome message\n" +
		"/setspam <level> - Set anti-spam (low/medium/high/off)\n\n" +
		"*Utility:*\n" +
		"/stats - Group statistics\n" +
		"/id - Get user/chat ID\n"
)

func Start(ctx context.Context, c bot.ChatContext, _ []string) error {
	if base.IsGroup(c.Chat()) {
		return c.Reply(ctx, TextStartGroup, api.ModeMarkdown)
	}
	return c.Reply(ctx, TextStartPrivate, api.ModeMarkdown)
}

func Help(ctx context.Context, c bot.ChatContext, _ []string) error {
	return c.Reply(ctx, TextHelp, api.ModeMarkdown)
}

// ID tells the sender their user id and the current chat id.
func ID(ctx context.Context, c bot.ChatContext, _ []string) error {
	user := c.Sender()
	username := user.UserName
	if username == "" {
		username = "N/A"
	}
	text := fmt.Sprintf("👤 *Your Info:*\nID: `%d`\nUsername: @%s\n\n💬 *Chat ID:* `%d`", user.ID, username, c.Chat().ID)
	return c.Reply(ctx, text, api.ModeMarkdown)
}
