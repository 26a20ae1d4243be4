package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	sent       []api.Chattable
	requests   []api.Chattable
	member     api.ChatMember
	memberErr  error
	memberHits int
	requestErr error
}

func (f *fakeClient) Send(c api.Chattable) (api.Message, error) {
	f.sent = append(f.sent, c)
	return api.Message{}, nil
}

func (f *fakeClient) Request(c api.Chattable) (*api.APIResponse, error) {
	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &api.APIResponse{Ok: true}, nil
}

func (f *fakeClient) GetChatMember(api.GetChatMemberConfig) (api.ChatMember, error) {
	f.memberHits++
	return f.member, f.memberErr
}

func (f *fakeClient) GetChat(config api.ChatInfoConfig) (api.ChatFullInfo, error) {
	info := api.ChatFullInfo{}
	info.ID = config.ChatID
	info.Title = "Group"
	return info, nil
}

func (f *fakeClient) GetChatMembersCount(api.ChatMemberCountConfig) (int, error) {
	return 12, nil
}

func groupMessage(fromID int64) *api.Message {
	return &api.Message{
		MessageID: 77,
		From:      &api.User{ID: fromID, FirstName: "Alice"},
		Chat:      api.Chat{ID: -100, Type: "supergroup", Title: "Group"},
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	t.Run("private chat bypasses lookup", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{}
		msg := groupMessage(1)
		msg.Chat.Type = "private"
		assert.True(t, NewChatContext(client, nil, msg).IsAdmin(context.Background()))
		assert.Zero(t, client.memberHits)
	})

	t.Run("allowlisted", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{member: api.ChatMember{Status: "member"}}
		c := NewChatContext(client, map[int64]struct{}{5: {}}, groupMessage(5))
		assert.True(t, c.IsAdmin(context.Background()))
		assert.Zero(t, client.memberHits)
	})

	t.Run("administrator status", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{member: api.ChatMember{Status: "administrator"}}
		assert.True(t, NewChatContext(client, nil, groupMessage(6)).IsAdmin(context.Background()))
	})

	t.Run("plain member", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{member: api.ChatMember{Status: "member"}}
		assert.False(t, NewChatContext(client, nil, groupMessage(6)).IsAdmin(context.Background()))
	})

	t.Run("lookup error", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{memberErr: errors.New("Bad Request: user not found")}
		assert.False(t, NewChatContext(client, nil, groupMessage(6)).IsAdmin(context.Background()))
	})
}

func TestReplySetsParseMode(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewChatContext(client, nil, groupMessage(1))
	require.NoError(t, c.Reply(context.Background(), "*hi*", api.ModeMarkdown))

	require.Len(t, client.sent, 1)
	msg, ok := client.sent[0].(api.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, "*hi*", msg.Text)
	assert.Equal(t, api.ModeMarkdown, msg.ParseMode)
}

func TestRestrictChatMemberBuildsConfig(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewChatContext(client, nil, groupMessage(1))
	until := time.Unix(1_700_000_300, 0)
	require.NoError(t, c.RestrictChatMember(context.Background(), 9, until, api.ChatPermissions{}))

	require.Len(t, client.requests, 1)
	cfg, ok := client.requests[0].(api.RestrictChatMemberConfig)
	require.True(t, ok)
	assert.Equal(t, int64(9), cfg.UserID)
	assert.Equal(t, int64(-100), cfg.ChatID)
	assert.Equal(t, until.Unix(), cfg.UntilDate)
	require.NotNil(t, cfg.Permissions)
	assert.False(t, cfg.Permissions.CanSendMessages)
}

func TestBanChatMemberWrapsError(t *testing.T) {
	t.Parallel()

	cause := errors.New("Bad Request: not enough rights to restrict/unrestrict chat member")
	client := &fakeClient{requestErr: cause}
	err := NewChatContext(client, nil, groupMessage(1)).BanChatMember(context.Background(), 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to ban user")
}

func TestCanceledContextSkipsCall(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{}
	err := NewChatContext(client, nil, groupMessage(1)).DeleteMessage(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.requests)
}
