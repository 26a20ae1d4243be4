package telegram

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/policy/permissions"
)

// Client is the subset of *api.BotAPI the chat context needs.
type Client interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
	GetChatMember(config api.GetChatMemberConfig) (api.ChatMember, error)
	GetChat(config api.ChatInfoConfig) (api.ChatFullInfo, error)
	GetChatMembersCount(config api.ChatMemberCountConfig) (int, error)
}

// ChatContext provides Telegram operations bound to one inbound message.
type ChatContext struct {
	client Client
	admins map[int64]struct{}
	msg    *api.Message
}

// NewChatContext creates a ChatContext for msg
func NewChatContext(client Client, admins map[int64]struct{}, msg *api.Message) *ChatContext {
	return &ChatContext{
		client: client,
		admins: admins,
		msg:    msg,
	}
}

func (c *ChatContext) Chat() *api.Chat {
	return &c.msg.Chat
}

func (c *ChatContext) Sender() *api.User {
	return c.msg.From
}

func (c *ChatContext) Message() *api.Message {
	return c.msg
}

// IsAdmin is true in private chats, for allowlisted users and for chat
// creators/administrators. A failed member lookup counts as not admin.
func (c *ChatContext) IsAdmin(ctx context.Context) bool {
	if c.msg.Chat.Type == "private" {
		return true
	}
	if c.msg.From == nil {
		return false
	}
	if permissions.IsAllowlisted(c.admins, c.msg.From.ID) {
		return true
	}
	member, err := c.GetChatMember(ctx, c.msg.From.ID)
	if err != nil {
		c.getLogEntry().WithField("error", err.Error()).Debug("admin check failed")
		return false
	}
	return permissions.IsAdministrator(&member)
}

// Reply sends text to the chat of the bound message
func (c *ChatContext) Reply(ctx context.Context, text string, parseMode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := api.NewMessage(c.msg.Chat.ID, text)
	msg.ParseMode = parseMode
	if c.msg.Chat.IsForum {
		msg.MessageThreadID = c.msg.MessageThreadID
	}
	if _, err := c.client.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

// DeleteMessage deletes the bound message
func (c *ChatContext) DeleteMessage(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.client.Request(api.NewDeleteMessage(c.msg.Chat.ID, c.msg.MessageID)); err != nil {
		return errors.Wrap(err, "failed to delete message")
	}
	return nil
}

// BanChatMember removes a user from the chat until unbanned
func (c *ChatContext) BanChatMember(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.BanChatMemberConfig{
		ChatMemberConfig: c.memberConfig(userID),
	}
	if _, err := c.client.Request(config); err != nil {
		return errors.Wrap(err, "failed to ban user")
	}
	return nil
}

// UnbanChatMember lifts a ban so the user can rejoin
func (c *ChatContext) UnbanChatMember(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.UnbanChatMemberConfig{
		ChatMemberConfig: c.memberConfig(userID),
		OnlyIfBanned:     true,
	}
	if _, err := c.client.Request(config); err != nil {
		return errors.Wrap(err, "failed to unban user")
	}
	return nil
}

// RestrictChatMember applies permissions to a user until the given time
func (c *ChatContext) RestrictChatMember(ctx context.Context, userID int64, until time.Time, perms api.ChatPermissions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	config := api.RestrictChatMemberConfig{
		ChatMemberConfig: c.memberConfig(userID),
		UntilDate:        until.Unix(),
		Permissions:      &perms,
	}
	if _, err := c.client.Request(config); err != nil {
		return errors.Wrap(err, "failed to restrict user")
	}
	return nil
}

func (c *ChatContext) GetChatMembersCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := c.client.GetChatMembersCount(api.ChatMemberCountConfig{
		ChatConfig: api.ChatConfig{ChatID: c.msg.Chat.ID},
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get chat members count")
	}
	return count, nil
}

func (c *ChatContext) GetChat(ctx context.Context) (api.ChatFullInfo, error) {
	if err := ctx.Err(); err != nil {
		return api.ChatFullInfo{}, err
	}
	chat, err := c.client.GetChat(api.ChatInfoConfig{
		ChatConfig: api.ChatConfig{ChatID: c.msg.Chat.ID},
	})
	if err != nil {
		return api.ChatFullInfo{}, errors.Wrap(err, "failed to get chat")
	}
	return chat, nil
}

func (c *ChatContext) GetChatMember(ctx context.Context, userID int64) (api.ChatMember, error) {
	if err := ctx.Err(); err != nil {
		return api.ChatMember{}, err
	}
	member, err := c.client.GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			ChatConfig: api.ChatConfig{ChatID: c.msg.Chat.ID},
			UserID:     userID,
		},
	})
	if err != nil {
		return api.ChatMember{}, errors.Wrap(err, "failed to get chat member")
	}
	return member, nil
}

func (c *ChatContext) memberConfig(userID int64) api.ChatMemberConfig {
	return api.ChatMemberConfig{
		ChatConfig: api.ChatConfig{ChatID: c.msg.Chat.ID},
		UserID:     userID,
	}
}

func (c *ChatContext) getLogEntry() *log.Entry {
	return log.WithFields(log.Fields{
		"object":  "ChatContext",
		"chat_id": c.msg.Chat.ID,
	})
}
