package welcome

import (
	"context"
	"strconv"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/bot"
	errs "github.com/iamwavecut/powerbot/internal/errors"
	"github.com/iamwavecut/powerbot/internal/handlers/base"
)

const (
	textUsage = "📝 *Set Welcome Message*\n\n" +
		"Usage: /setwelcome <message>\n\n" +
		"*Variables:*\n" +
		"{user} - User's name/mention\n" +
		"{group} - Group name\n" +
		"{count} - Member count\n\n" +
		"Example:\n" +
		"/setwelcome Welcome {user}! You are member #{count}"

	previewCount = "100"
)

// Handler greets new chat members and serves /setwelcome.
type Handler struct {
	*base.BaseHandler
	templates *TemplateStore
}

func NewHandler(s bot.Service, templates *TemplateStore) *Handler {
	return &Handler{
		BaseHandler: base.NewBaseHandler(s, "welcome"),
		templates:   templates,
	}
}

func (h *Handler) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if err := h.ValidateUpdate(u, chat, user); err != nil {
		return true, nil
	}
	if u.Message == nil || len(u.Message.NewChatMembers) == 0 {
		return true, nil
	}

	c := h.GetService().NewChatContext(u.Message)
	template := h.templates.Get(chat.ID)
	count := ""

	for i := range u.Message.NewChatMembers {
		member := &u.Message.NewChatMembers[i]
		if member.IsBot {
			continue
		}
		if count == "" {
			count = h.memberCount(ctx, c)
		}

		text := Render(template, member, chat, count)
		if err := c.Reply(ctx, text, api.ModeMarkdown); err != nil {
			return false, errors.WithMessage(err, "cant send welcome")
		}
		h.GetLogger().WithFields(log.Fields{
			"chat_id": chat.ID,
			"user_id": member.ID,
		}).Debug("welcomed")
	}
	return false, nil
}

func (h *Handler) memberCount(ctx context.Context, c bot.ChatContext) string {
	n, err := c.GetChatMembersCount(ctx)
	if err != nil {
		h.GetLogger().WithField("error", err.Error()).Warn("cant get members count")
		return "?"
	}
	return strconv.Itoa(n)
}

// SetWelcome is the /setwelcome command. The template is everything after the
// command, line breaks included.
func (h *Handler) SetWelcome(ctx context.Context, c bot.ChatContext, _ []string) error {
	if err := base.RequireGroup(c); err != nil {
		return err
	}
	if !c.IsAdmin(ctx) {
		return errs.Reject(errs.ErrPermissionDenied, "❌ Only admins can set the welcome message.")
	}

	template := strings.TrimSpace(c.Message().CommandArguments())
	if template == "" {
		return c.Reply(ctx, textUsage, api.ModeMarkdown)
	}

	chat := c.Chat()
	h.templates.Set(chat.ID, template)
	h.GetLogger().WithField("chat_id", chat.ID).Info("welcome template updated")

	preview := Render(template, c.Sender(), chat, previewCount)
	return c.Reply(ctx, "✅ Welcome message updated!\n\nPreview:\n"+preview, "")
}
