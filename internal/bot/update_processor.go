package bot

import (
	"context"
	"fmt"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iamwavecut/powerbot/internal/observability"
)

const (
	UpdateTimeout = 5 * time.Minute

	logTextLimit = 50
)

type (
	UpdateProcessor struct {
		enabledHandlers []string
		handlers        map[string]Handler
	}

	entryKey struct{}
)

// NewUpdateProcessor runs registered handlers in the order given by enabled.
func NewUpdateProcessor(enabled []string) *UpdateProcessor {
	return &UpdateProcessor{
		enabledHandlers: enabled,
		handlers:        make(map[string]Handler),
	}
}

func (up *UpdateProcessor) RegisterUpdateHandler(title string, handler Handler) {
	if handler == nil {
		return
	}
	up.handlers[title] = handler
}

func (up *UpdateProcessor) chain() []Handler {
	chain := make([]Handler, 0, len(up.enabledHandlers))
	for _, name := range up.enabledHandlers {
		handler, ok := up.handlers[name]
		if !ok {
			log.Warnf("no registered handler: %s", name)
			continue
		}
		chain = append(chain, handler)
	}
	return chain
}

func (up *UpdateProcessor) Process(ctx context.Context, u *api.Update) error {
	if u == nil {
		return errors.New("update is nil")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	updateType := GetUpdateType(u)
	updateTime := time.Now()
	if u.Message != nil {
		updateTime = time.Unix(int64(u.Message.Date), 0)
	}
	if time.Since(updateTime) > UpdateTimeout {
		log.WithFields(log.Fields{
			"update_time": updateTime,
			"age":         time.Since(updateTime).String(),
		}).Debug("Skipping outdated update")
		observability.RecordUpdate(updateType, "outdated", 0)
		return nil
	}

	chat := u.FromChat()
	user := u.SentFrom()

	ctx, span := observability.Tracer().Start(ctx, "process-update", trace.WithAttributes(
		attribute.Int("update.id", u.UpdateID),
		attribute.String("update.type", updateType),
	))
	defer span.End()

	entry := log.WithFields(log.Fields{
		"request_id": uuid.New(),
		"update_id":  u.UpdateID,
	})
	ctx = context.WithValue(ctx, entryKey{}, entry)

	started := time.Now()
	err := up.runChain(ctx, u, chat, user)
	elapsed := time.Since(started)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.RecordUpdate(updateType, status, elapsed)

	if u.Message != nil {
		text := []rune(u.Message.Text)
		if len(text) > logTextLimit {
			text = text[:logTextLimit]
		}
		summary := string(text)
		if summary == "" {
			summary = "non-text"
		}
		entry.Infof("%s: %s (%dms)", senderTag(user), summary, elapsed.Milliseconds())
	}
	return err
}

func (up *UpdateProcessor) runChain(ctx context.Context, u *api.Update, chat *api.Chat, user *api.User) error {
	for _, handler := range up.chain() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		proceed, err := handler.Handle(ctx, u, chat, user)
		if err != nil {
			return errors.WithMessage(err, "handling error")
		}
		if !proceed {
			LogEntry(ctx).Trace("not proceeding")
			return nil
		}
	}
	return nil
}

// LogEntry returns the per-update log entry stored by Process, or a plain one.
func LogEntry(ctx context.Context) *log.Entry {
	if entry, ok := ctx.Value(entryKey{}).(*log.Entry); ok {
		return entry
	}
	return log.NewEntry(log.StandardLogger())
}

func GetUpdateType(u *api.Update) string {
	switch {
	case u.Message != nil && len(u.Message.NewChatMembers) > 0:
		return "new_chat_members"
	case u.Message != nil && u.Message.IsCommand():
		return "command"
	case u.Message != nil:
		return "message"
	case u.EditedMessage != nil:
		return "edited_message"
	case u.CallbackQuery != nil:
		return "callback_query"
	case u.MyChatMember != nil:
		return "my_chat_member"
	case u.ChatMember != nil:
		return "chat_member"
	default:
		return "other"
	}
}

// GetUN returns the username, falling back to the first name.
func GetUN(user *api.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}

func senderTag(user *api.User) string {
	if user == nil {
		return "unknown"
	}
	if user.UserName != "" {
		return user.UserName
	}
	return fmt.Sprint(user.ID)
}
