package base

import (
	"context"
	"errors"
	"fmt"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/bot"
	errs "github.com/iamwavecut/powerbot/internal/errors"
)

const (
	TextGroupOnly = "❌ This command only works in groups."
	TextAdminOnly = "❌ Only admins can use this command."
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	service bot.Service
	logger  *log.Entry
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(service bot.Service, handlerName string) *BaseHandler {
	return &BaseHandler{
		service: service,
		logger:  log.WithField("handler", handlerName),
	}
}

// GetService returns the bot service
func (h *BaseHandler) GetService() bot.Service {
	return h.service
}

// GetLogger returns the handler's logger
func (h *BaseHandler) GetLogger() *log.Entry {
	return h.logger
}

// ValidateUpdate performs common update validation
func (h *BaseHandler) ValidateUpdate(u *api.Update, chat *api.Chat, user *api.User) error {
	if u == nil {
		return ErrNilUpdate
	}
	if chat == nil || user == nil {
		return ErrNilChatOrUser
	}
	return nil
}

// IsGroup reports whether the chat is a group or supergroup.
func IsGroup(chat *api.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}

func RequireGroup(c bot.ChatContext) error {
	if !IsGroup(c.Chat()) {
		return errs.Reject(errs.ErrPreconditionFailed, TextGroupOnly)
	}
	return nil
}

func RequireAdmin(ctx context.Context, c bot.ChatContext) error {
	if !c.IsAdmin(ctx) {
		return errs.Reject(errs.ErrPermissionDenied, TextAdminOnly)
	}
	return nil
}

// RequireGroupAdmin is RequireGroup followed by RequireAdmin.
func RequireGroupAdmin(ctx context.Context, c bot.ChatContext) error {
	if err := RequireGroup(c); err != nil {
		return err
	}
	return RequireAdmin(ctx, c)
}

// ReplyTarget returns the sender of the message the command replies to.
func ReplyTarget(c bot.ChatContext, verb string) (*api.User, error) {
	reply := c.Message().ReplyToMessage
	if reply == nil || reply.From == nil {
		return nil, errs.Reject(errs.ErrPreconditionFailed, fmt.Sprintf("❌ Reply to a message to %s that user.", verb))
	}
	return reply.From, nil
}

// Mention renders a user as @username, falling back to the first name.
func Mention(user *api.User) string {
	if user == nil {
		return "@unknown"
	}
	return "@" + bot.GetUN(user)
}

// MarkdownMention is Mention escaped for a Markdown reply.
func MarkdownMention(user *api.User) string {
	return api.EscapeText(api.ModeMarkdown, Mention(user))
}

var (
	ErrNilUpdate     = errors.New("nil update")
	ErrNilChatOrUser = errors.New("nil chat or user")
)
