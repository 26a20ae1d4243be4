// Package bottest provides in-memory doubles of the bot capability interfaces.
package bottest

import (
	"context"
	"strings"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/powerbot/internal/bot"
)

type Reply struct {
	Text      string
	ParseMode string
}

type Restriction struct {
	UserID      int64
	Until       time.Time
	Permissions api.ChatPermissions
}

// ChatContext records every call made through the bot.ChatContext interface.
type ChatContext struct {
	mu sync.Mutex

	Msg          *api.Message
	Admin        bool
	MembersCount int
	ChatInfo     api.ChatFullInfo
	Members      map[int64]api.ChatMember

	ReplyErr    error
	DeleteErr   error
	BanErr      error
	UnbanErr    error
	RestrictErr error
	CountErr    error
	ChatErr     error

	Replies      []Reply
	Deleted      int
	Banned       []int64
	Unbanned     []int64
	Restrictions []Restriction
	AdminChecks  int
}

var _ bot.ChatContext = (*ChatContext)(nil)

func NewChatContext(msg *api.Message) *ChatContext {
	return &ChatContext{Msg: msg, Members: map[int64]api.ChatMember{}}
}

func (c *ChatContext) Chat() *api.Chat       { return &c.Msg.Chat }
func (c *ChatContext) Sender() *api.User     { return c.Msg.From }
func (c *ChatContext) Message() *api.Message { return c.Msg }

func (c *ChatContext) IsAdmin(context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AdminChecks++
	return c.Admin
}

func (c *ChatContext) Reply(_ context.Context, text string, parseMode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReplyErr != nil {
		return c.ReplyErr
	}
	c.Replies = append(c.Replies, Reply{Text: text, ParseMode: parseMode})
	return nil
}

func (c *ChatContext) DeleteMessage(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	c.Deleted++
	return nil
}

func (c *ChatContext) BanChatMember(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BanErr != nil {
		return c.BanErr
	}
	c.Banned = append(c.Banned, userID)
	return nil
}

func (c *ChatContext) UnbanChatMember(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.UnbanErr != nil {
		return c.UnbanErr
	}
	c.Unbanned = append(c.Unbanned, userID)
	return nil
}

func (c *ChatContext) RestrictChatMember(_ context.Context, userID int64, until time.Time, permissions api.ChatPermissions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.RestrictErr != nil {
		return c.RestrictErr
	}
	c.Restrictions = append(c.Restrictions, Restriction{UserID: userID, Until: until, Permissions: permissions})
	return nil
}

func (c *ChatContext) GetChatMembersCount(context.Context) (int, error) {
	if c.CountErr != nil {
		return 0, c.CountErr
	}
	return c.MembersCount, nil
}

func (c *ChatContext) GetChat(context.Context) (api.ChatFullInfo, error) {
	if c.ChatErr != nil {
		return api.ChatFullInfo{}, c.ChatErr
	}
	return c.ChatInfo, nil
}

func (c *ChatContext) GetChatMember(_ context.Context, userID int64) (api.ChatMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Members[userID], nil
}

// LastReply returns the most recent reply text, or "" if none.
func (c *ChatContext) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Replies) == 0 {
		return ""
	}
	return c.Replies[len(c.Replies)-1].Text
}

// Service hands out recording chat contexts. Configure, when set, runs on
// each new context before it is returned.
type Service struct {
	mu        sync.Mutex
	Configure func(c *ChatContext)
	Created   []*ChatContext
}

var _ bot.Service = (*Service)(nil)

func (s *Service) GetBot() *api.BotAPI {
	return nil
}

func (s *Service) NewChatContext(msg *api.Message) bot.ChatContext {
	c := NewChatContext(msg)
	if s.Configure != nil {
		s.Configure(c)
	}
	s.mu.Lock()
	s.Created = append(s.Created, c)
	s.mu.Unlock()
	return c
}

// Last returns the most recently created context, or nil.
func (s *Service) Last() *ChatContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Created) == 0 {
		return nil
	}
	return s.Created[len(s.Created)-1]
}

// GroupMessage builds a message in a supergroup. A leading "/word" becomes a
// bot_command entity.
func GroupMessage(chatID int64, from *api.User, text string) *api.Message {
	msg := &api.Message{
		MessageID: 1,
		From:      from,
		Date:      int(time.Now().Unix()),
		Chat:      api.Chat{ID: chatID, Type: "supergroup", Title: "Test Group"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexAny(text, " \n"); i >= 0 {
			length = i
		}
		msg.Entities = []api.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return msg
}

// PrivateMessage is GroupMessage in a private chat with the sender.
func PrivateMessage(from *api.User, text string) *api.Message {
	msg := GroupMessage(from.ID, from, text)
	msg.Chat.Type = "private"
	msg.Chat.Title = ""
	return msg
}

// ReplyTo makes msg a reply to a message sent by target.
func ReplyTo(msg *api.Message, target *api.User) *api.Message {
	msg.ReplyToMessage = &api.Message{
		MessageID: msg.MessageID - 1,
		From:      target,
		Chat:      msg.Chat,
	}
	return msg
}
