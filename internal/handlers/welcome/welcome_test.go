package welcome

import (
	"context"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamwavecut/powerbot/internal/bot/bottest"
	errs "github.com/iamwavecut/powerbot/internal/errors"
)

var (
	admin    = &api.User{ID: 1, UserName: "admin"}
	newbie   = api.User{ID: 5, UserName: "newbie"}
	nameless = api.User{ID: 6, FirstName: "Ann"}
)

func TestRender(t *testing.T) {
	t.Parallel()

	chat := &api.Chat{ID: -100, Title: "Traders"}
	tests := []struct {
		name     string
		template string
		user     *api.User
		chat     *api.Chat
		count    string
		want     string
	}{
		{"default", DefaultTemplate, &newbie, chat, "10", "👋 Welcome to the group, @newbie!\n\nPlease read the rules and enjoy your stay."},
		{"all variables", "{user} joined {group} as #{count}, hi {user}", &newbie, chat, "7", "@newbie joined Traders as #7, hi @newbie"},
		{"mention link", "hi {user}", &nameless, chat, "1", "hi [Ann](tg://user?id=6)"},
		{"untitled chat", "welcome to {group}", &newbie, &api.Chat{ID: -1}, "1", "welcome to the group"},
		{"escaped names", "{user} joined {group}", &api.User{ID: 8, UserName: "john_doe"}, &api.Chat{ID: -1, Title: "*Alpha*"}, "1", "@john\\_doe joined \\*Alpha\\*"},
		{"unknown count", "#{count}", &newbie, chat, "?", "#?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.user, tt.chat, tt.count))
		})
	}
}

func joinUpdate(members ...api.User) *api.Update {
	msg := bottest.GroupMessage(-100, &members[0], "")
	msg.NewChatMembers = members
	return &api.Update{Message: msg}
}

func TestHandlerGreetsNewMembers(t *testing.T) {
	t.Parallel()

	svc := &bottest.Service{Configure: func(c *bottest.ChatContext) { c.MembersCount = 51 }}
	templates := NewTemplateStore()
	templates.Set(-100, "Hi {user}, member #{count} of {group}")
	h := NewHandler(svc, templates)

	robot := api.User{ID: 9, IsBot: true, UserName: "robot"}
	u := joinUpdate(newbie, robot, nameless)
	proceed, err := h.Handle(context.Background(), u, &u.Message.Chat, u.Message.From)
	require.NoError(t, err)
	assert.False(t, proceed)

	c := svc.Last()
	require.Len(t, c.Replies, 2)
	assert.Equal(t, "Hi @newbie, member #51 of Test Group", c.Replies[0].Text)
	assert.Equal(t, "Hi [Ann](tg://user?id=6), member #51 of Test Group", c.Replies[1].Text)
	assert.Equal(t, api.ModeMarkdown, c.Replies[0].ParseMode)
}

func TestHandlerCountFallback(t *testing.T) {
	t.Parallel()

	svc := &bottest.Service{Configure: func(c *bottest.ChatContext) { c.CountErr = errors.New("timeout") }}
	templates := NewTemplateStore()
	templates.Set(-100, "#{count}")
	h := NewHandler(svc, templates)

	u := joinUpdate(newbie)
	_, err := h.Handle(context.Background(), u, &u.Message.Chat, u.Message.From)
	require.NoError(t, err)
	assert.Equal(t, "#?", svc.Last().LastReply())
}

func TestHandlerIgnoresRegularMessages(t *testing.T) {
	t.Parallel()

	svc := &bottest.Service{}
	h := NewHandler(svc, NewTemplateStore())
	msg := bottest.GroupMessage(-100, admin, "hello")
	proceed, err := h.Handle(context.Background(), &api.Update{Message: msg}, &msg.Chat, admin)
	require.NoError(t, err)
	assert.True(t, proceed)
	assert.Nil(t, svc.Last())
}

func TestSetWelcome(t *testing.T) {
	t.Parallel()

	t.Run("stores template and previews", func(t *testing.T) {
		templates := NewTemplateStore()
		h := NewHandler(&bottest.Service{}, templates)
		c := bottest.NewChatContext(bottest.GroupMessage(-100, admin, "/setwelcome Hello {user}\nYou are #{count}"))
		c.Admin = true

		require.NoError(t, h.SetWelcome(context.Background(), c, nil))
		assert.Equal(t, "Hello {user}\nYou are #{count}", templates.Get(-100))
		assert.Equal(t, "✅ Welcome message updated!\n\nPreview:\nHello @admin\nYou are #100", c.LastReply())
	})

	t.Run("usage without template", func(t *testing.T) {
		templates := NewTemplateStore()
		h := NewHandler(&bottest.Service{}, templates)
		c := bottest.NewChatContext(bottest.GroupMessage(-100, admin, "/setwelcome"))
		c.Admin = true

		require.NoError(t, h.SetWelcome(context.Background(), c, nil))
		assert.Contains(t, c.LastReply(), "Usage: /setwelcome <message>")
		assert.Equal(t, DefaultTemplate, templates.Get(-100))
	})

	t.Run("admin only", func(t *testing.T) {
		templates := NewTemplateStore()
		h := NewHandler(&bottest.Service{}, templates)
		c := bottest.NewChatContext(bottest.GroupMessage(-100, admin, "/setwelcome hi"))

		rejection, ok := errs.AsRejection(h.SetWelcome(context.Background(), c, nil))
		require.True(t, ok)
		assert.Equal(t, "❌ Only admins can set the welcome message.", rejection.Text)
		assert.Equal(t, DefaultTemplate, templates.Get(-100))
	})
}
