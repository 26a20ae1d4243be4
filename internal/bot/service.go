package bot

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/powerbot/internal/infrastructure/telegram"
)

// ServiceBot defines bot-specific operations
type ServiceBot interface {
	GetBot() *api.BotAPI
}

// Service is what handlers get injected with.
type Service interface {
	ServiceBot
	NewChatContext(msg *api.Message) ChatContext
}

// ChatContext is the per-update capability handlers act through. It is bound
// to the chat, sender and message of one inbound message.
type ChatContext interface {
	Chat() *api.Chat
	Sender() *api.User
	Message() *api.Message

	IsAdmin(ctx context.Context) bool
	Reply(ctx context.Context, text string, parseMode string) error
	DeleteMessage(ctx context.Context) error
	BanChatMember(ctx context.Context, userID int64) error
	UnbanChatMember(ctx context.Context, userID int64) error
	RestrictChatMember(ctx context.Context, userID int64, until time.Time, permissions api.ChatPermissions) error
	GetChatMembersCount(ctx context.Context) (int, error)
	GetChat(ctx context.Context) (api.ChatFullInfo, error)
	GetChatMember(ctx context.Context, userID int64) (api.ChatMember, error)
}

// Handler defines the interface for all update handlers in the system
type Handler interface {
	Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (proceed bool, err error)
}

type service struct {
	bot    *api.BotAPI
	admins map[int64]struct{}
}

func NewService(bot *api.BotAPI, admins map[int64]struct{}) *service {
	if admins == nil {
		admins = map[int64]struct{}{}
	}
	return &service{
		bot:    bot,
		admins: admins,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) NewChatContext(msg *api.Message) ChatContext {
	return telegram.NewChatContext(s.bot, s.admins, msg)
}
