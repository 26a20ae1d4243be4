package moderation

import (
	"context"
	"fmt"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/bot"
	"github.com/iamwavecut/powerbot/internal/handlers/base"
)

// Commands implements the admin moderation commands. Each method is a
// bot.CommandFunc.
type Commands struct {
	warnings *WarningStore
	now      func() time.Time
}

func NewCommands(warnings *WarningStore) *Commands {
	return &Commands{
		warnings: warnings,
		now:      time.Now,
	}
}

func (m *Commands) logEntry(ctx context.Context, c bot.ChatContext, target *api.User) *log.Entry {
	return bot.LogEntry(ctx).WithFields(log.Fields{
		"object":    "Moderation",
		"chat_id":   c.Chat().ID,
		"target_id": target.ID,
	})
}

// prepare checks the common preconditions and returns the reply target.
func (m *Commands) prepare(ctx context.Context, c bot.ChatContext, verb string) (*api.User, error) {
	if err := base.RequireGroupAdmin(ctx, c); err != nil {
		return nil, err
	}
	return base.ReplyTarget(c, verb)
}

func (m *Commands) Ban(ctx context.Context, c bot.ChatContext, _ []string) error {
	target, err := m.prepare(ctx, c, "ban")
	if err != nil {
		return err
	}
	if err := c.BanChatMember(ctx, target.ID); err != nil {
		m.logEntry(ctx, c, target).WithField("error", err.Error()).Warn("ban failed")
		return c.Reply(ctx, "❌ Failed to ban: "+errors.Cause(err).Error(), "")
	}
	m.logEntry(ctx, c, target).Info("banned")
	return c.Reply(ctx, "🔨 *Banned* "+base.MarkdownMention(target), api.ModeMarkdown)
}

// Kick bans and immediately unbans so the user is able to rejoin.
func (m *Commands) Kick(ctx context.Context, c bot.ChatContext, _ []string) error {
	target, err := m.prepare(ctx, c, "kick")
	if err != nil {
		return err
	}
	err = c.BanChatMember(ctx, target.ID)
	if err == nil {
		err = c.UnbanChatMember(ctx, target.ID)
	}
	if err != nil {
		m.logEntry(ctx, c, target).WithField("error", err.Error()).Warn("kick failed")
		return c.Reply(ctx, "❌ Failed to kick: "+errors.Cause(err).Error(), "")
	}
	m.logEntry(ctx, c, target).Info("kicked")
	return c.Reply(ctx, "👢 *Kicked* "+base.MarkdownMention(target), api.ModeMarkdown)
}

func (m *Commands) Mute(ctx context.Context, c bot.ChatContext, args []string) error {
	target, err := m.prepare(ctx, c, "mute")
	if err != nil {
		return err
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	duration := ParseMuteDuration(arg)

	if err := c.RestrictChatMember(ctx, target.ID, m.now().Add(duration), api.ChatPermissions{}); err != nil {
		m.logEntry(ctx, c, target).WithField("error", err.Error()).Warn("mute failed")
		return c.Reply(ctx, "❌ Failed to mute: "+errors.Cause(err).Error(), "")
	}
	m.logEntry(ctx, c, target).WithField("duration", duration.String()).Info("muted")
	return c.Reply(ctx, fmt.Sprintf("🔇 *Muted* %s for %s", base.MarkdownMention(target), FormatMuteDuration(duration)), api.ModeMarkdown)
}

// Warn bans the target on the WarnLimit-th warning. The counter is cleared only
// once the ban went through, so a failed ban is retried by the next warning.
func (m *Commands) Warn(ctx context.Context, c bot.ChatContext, _ []string) error {
	target, err := m.prepare(ctx, c, "warn")
	if err != nil {
		return err
	}

	chatID := c.Chat().ID
	count := m.warnings.Increment(chatID, target.ID)
	entry := m.logEntry(ctx, c, target).WithField("warnings", count)

	if count < WarnLimit {
		entry.Info("warned")
		return c.Reply(ctx, fmt.Sprintf("⚠️ *Warning %d/%d* for %s", count, WarnLimit, base.MarkdownMention(target)), api.ModeMarkdown)
	}

	if err := c.BanChatMember(ctx, target.ID); err != nil {
		entry.WithField("error", err.Error()).Warn("ban after warnings failed")
		return c.Reply(ctx, fmt.Sprintf("⚠️ %s has %d warnings but I couldn't ban them.", base.Mention(target), WarnLimit), "")
	}
	m.warnings.Clear(chatID, target.ID)
	entry.Info("banned after warnings")
	return c.Reply(ctx, fmt.Sprintf("🔨 %s has been *banned* after %d warnings!", base.MarkdownMention(target), WarnLimit), api.ModeMarkdown)
}

// Stats is open to every member of a group.
func (m *Commands) Stats(ctx context.Context, c bot.ChatContext, _ []string) error {
	if err := base.RequireGroup(c); err != nil {
		return err
	}

	count, err := c.GetChatMembersCount(ctx)
	if err != nil {
		bot.LogEntry(ctx).WithField("error", err.Error()).Warn("cant get members count")
		return c.Reply(ctx, "❌ Failed to get stats.", "")
	}
	chat, err := c.GetChat(ctx)
	if err != nil {
		bot.LogEntry(ctx).WithField("error", err.Error()).Warn("cant get chat")
		return c.Reply(ctx, "❌ Failed to get stats.", "")
	}

	return c.Reply(ctx, fmt.Sprintf("📊 *Group Stats*\n\n👥 Members: %d\n📝 Title: %s\n🆔 ID: `%d`",
		count, chat.Title, chat.ID), api.ModeMarkdown)
}
