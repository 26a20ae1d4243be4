package welcome

import (
	"fmt"
	"strings"
	"sync"

	api "github.com/OvyFlash/telegram-bot-api"
)

const DefaultTemplate = "👋 Welcome to the group, {user}!\n\nPlease read the rules and enjoy your stay."

// TemplateStore keeps the custom welcome template of each chat.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[int64]string
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[int64]string)}
}

// Get returns the chat's template or DefaultTemplate.
func (s *TemplateStore) Get(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tpl, ok := s.templates[chatID]; ok {
		return tpl
	}
	return DefaultTemplate
}

func (s *TemplateStore) Set(chatID int64, template string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[chatID] = template
}

// Render substitutes {user}, {group} and {count}. A user without a username
// becomes a Markdown mention link. Substituted names are Markdown escaped.
func Render(template string, user *api.User, chat *api.Chat, count string) string {
	name := "someone"
	if user != nil {
		if user.UserName != "" {
			name = api.EscapeText(api.ModeMarkdown, "@"+user.UserName)
		} else {
			name = fmt.Sprintf("[%s](tg://user?id=%d)", api.EscapeText(api.ModeMarkdown, user.FirstName), user.ID)
		}
	}
	group := "the group"
	if chat != nil && chat.Title != "" {
		group = api.EscapeText(api.ModeMarkdown, chat.Title)
	}
	return strings.NewReplacer(
		"{user}", name,
		"{group}", group,
		"{count}", count,
	).Replace(template)
}
