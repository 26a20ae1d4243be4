package general

import (
	"context"
	"testing"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/iamwavecut/powerbot/internal/bot/bottest"
)

func TestStart(t *testing.T) {
	t.Parallel()

	user := &api.User{ID: 3, UserName: "zed"}
	tests := []struct {
		name string
		msg  *api.Message
		want string
	}{
		{"group", bottest.GroupMessage(-100, user, "/start"), TextStartGroup},
		{"private", bottest.PrivateMessage(user, "/start"), TextStartPrivate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := bottest.NewChatContext(tt.msg)
			if err := Start(context.Background(), c, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.LastReply(); got != tt.want {
				t.Fatalf("unexpected reply %q", got)
			}
			if c.Replies[0].ParseMode != api.ModeMarkdown {
				t.Fatalf("expected markdown, got %q", c.Replies[0].ParseMode)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	t.Parallel()

	c := bottest.NewChatContext(bottest.PrivateMessage(&api.User{ID: 3}, "/help"))
	if err := Help(context.Background(), c, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LastReply() != TextHelp {
		t.Fatalf("unexpected reply %q", c.LastReply())
	}
}

func TestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user *api.User
		want string
	}{
		{"with username", &api.User{ID: 3, UserName: "zed"}, "👤 *Your Info:*\nID: `3`\nUsername: @zed\n\n💬 *Chat ID:* `-100`"},
		{"without username", &api.User{ID: 4, FirstName: "Ann"}, "👤 *Your Info:*\nID: `4`\nUsername: @N/A\n\n💬 *Chat ID:* `-100`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := bottest.NewChatContext(bottest.GroupMessage(-100, tt.user, "/id"))
			if err := ID(context.Background(), c, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.LastReply(); got != tt.want {
				t.Fatalf("unexpected reply %q", got)
			}
		})
	}
}
