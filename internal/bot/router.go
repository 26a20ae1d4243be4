package bot

import (
	"context"
	"sort"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	errs "github.com/iamwavecut/powerbot/internal/errors"
	"github.com/iamwavecut/powerbot/internal/observability"
)

// CommandFunc handles one command. args are the whitespace separated words
// after the command. Returning an errs.Reject error replies its text.
type CommandFunc func(ctx context.Context, c ChatContext, args []string) error

// CommandRouter dispatches bot commands by lower-cased name. Unknown commands
// and non-command updates proceed down the handler chain.
type CommandRouter struct {
	s        Service
	commands map[string]CommandFunc
}

func NewCommandRouter(s Service) *CommandRouter {
	return &CommandRouter{
		s:        s,
		commands: make(map[string]CommandFunc),
	}
}

func (r *CommandRouter) Register(name string, fn CommandFunc) {
	r.commands[strings.ToLower(name)] = fn
}

// Commands lists registered command names, sorted.
func (r *CommandRouter) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *CommandRouter) Handle(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) (bool, error) {
	if u == nil || u.Message == nil || chat == nil || user == nil || !u.Message.IsCommand() {
		return true, nil
	}

	name := strings.ToLower(u.Message.Command())
	fn, ok := r.commands[name]
	if !ok {
		return true, nil
	}

	entry := LogEntry(ctx).WithFields(log.Fields{
		"object":  "CommandRouter",
		"command": name,
		"chat_id": chat.ID,
		"user_id": user.ID,
	})
	c := r.s.NewChatContext(u.Message)

	err := fn(ctx, c, strings.Fields(u.Message.CommandArguments()))
	if err == nil {
		observability.RecordCommand(name, "ok")
		return false, nil
	}

	if rejection, ok := errs.AsRejection(err); ok {
		observability.RecordCommand(name, "rejected")
		entry.WithField("reason", rejection.Kind.Error()).Debug("command rejected")
		if replyErr := c.Reply(ctx, rejection.Text, ""); replyErr != nil {
			return false, errors.WithMessage(replyErr, "cant reply rejection")
		}
		return false, nil
	}

	observability.RecordCommand(name, "error")
	entry.WithField("error", err.Error()).Error("command failed")
	return false, errors.WithMessagef(err, "command %s", name)
}
