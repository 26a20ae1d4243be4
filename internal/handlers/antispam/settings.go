package antispam

import "sync"

// SettingsStore keeps the anti-spam level of each chat. Chats without an
// entry are off.
type SettingsStore struct {
	mu     sync.RWMutex
	levels map[int64]Level
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{levels: make(map[int64]Level)}
}

func (s *SettingsStore) Get(chatID int64) Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.levels[chatID]; ok {
		return l
	}
	return LevelOff
}

func (s *SettingsStore) Set(chatID int64, level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !level.Active() {
		delete(s.levels, chatID)
		return
	}
	s.levels[chatID] = level
}
