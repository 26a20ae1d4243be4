package antispam

import (
	"context"
	"fmt"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/bot"
	errs "github.com/iamwavecut/powerbot/internal/errors"
	"github.com/iamwavecut/powerbot/internal/handlers/base"
	"github.com/iamwavecut/powerbot/internal/observability"
)

const textSettingsUsage = "🛡️ *Anti-Spam Settings*\n\n" +
	"Current level: *%s*\n\n" +
	"Usage: /setspam <level>\n\n" +
	"Levels:\n" +
	"• off - Disabled\n" +
	"• low - Lenient (10 msg/5s)\n" +
	"• medium - Moderate (6 msg/5s)\n" +
	"• high - Strict (3 msg/5s)"

// Handler checks every group message against the chat's anti-spam level.
type Handler struct {
	*base.BaseHandler
	settings *SettingsStore
	detector *Detector
	now      func() time.Time
}

func NewHandler(s bot.Service, settings *SettingsStore, detector *Detector) *Handler {
	return &Handler{
		BaseHandler: base.NewBaseHandler(s, "antispam"),
		settings:    settings,
		detector:    detector,
		now:         time.Now,
	}
}

func (h *Handler) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if err := h.ValidateUpdate(u, chat, user); err != nil || u.Message == nil {
		return true, nil
	}
	if chat.IsPrivate() {
		return true, nil
	}
	level := h.settings.Get(chat.ID)
	if !level.Active() {
		return true, nil
	}

	c := h.GetService().NewChatContext(u.Message)
	action := h.detector.Check(chat.ID, user.ID, c.IsAdmin(ctx), u.Message.Text, level, h.now())
	if action == ActionAllow {
		return true, nil
	}

	entry := bot.LogEntry(ctx).WithFields(log.Fields{
		"object":     "AntiSpam",
		"chat_id":    chat.ID,
		"user_id":    user.ID,
		"spam_level": string(level),
		"action":     action.String(),
	})
	entry.Info("spam detected")
	observability.RecordSpamAction(action.String())

	if err := c.DeleteMessage(ctx); err != nil {
		entry.WithField("error", err.Error()).Warn("cant delete spam message")
	}

	var notice string
	switch action {
	case ActionMute:
		until := h.now().Add(MuteDuration)
		if err := c.RestrictChatMember(ctx, user.ID, until, api.ChatPermissions{}); err != nil {
			entry.WithField("error", err.Error()).Warn("cant mute spammer")
		}
		notice = fmt.Sprintf("🚫 %s muted for 5 min (spam detected)", base.Mention(user))
	case ActionDeleteDuplicate:
		notice = fmt.Sprintf("⚠️ %s, please don't spam the same message.", base.Mention(user))
	}

	if err := c.Reply(ctx, notice, ""); err != nil {
		entry.WithField("error", err.Error()).Warn("cant post spam notice")
	}
	return false, nil
}

// SetSpam is the /setspam command.
func (h *Handler) SetSpam(ctx context.Context, c bot.ChatContext, args []string) error {
	if err := base.RequireGroup(c); err != nil {
		return err
	}
	if !c.IsAdmin(ctx) {
		return errs.Reject(errs.ErrPermissionDenied, "❌ Only admins can configure anti-spam.")
	}

	chatID := c.Chat().ID
	var level Level
	ok := false
	if len(args) > 0 {
		level, ok = ParseLevel(args[0])
	}
	if !ok {
		return c.Reply(ctx, fmt.Sprintf(textSettingsUsage, h.settings.Get(chatID)), api.ModeMarkdown)
	}

	h.settings.Set(chatID, level)
	h.GetLogger().WithFields(log.Fields{
		"chat_id":    chatID,
		"spam_level": string(level),
	}).Info("anti-spam level changed")

	emoji := "✅"
	if !level.Active() {
		emoji = "⚠️"
	}
	return c.Reply(ctx, fmt.Sprintf("%s Anti-spam set to *%s*", emoji, level), api.ModeMarkdown)
}
