package moderation

import "sync"

// WarnLimit is the warning count at which a user gets banned.
const WarnLimit = 3

type warnKey struct {
	chatID int64
	userID int64
}

// WarningStore counts warnings per (chat, user).
type WarningStore struct {
	mu     sync.Mutex
	counts map[warnKey]int
}

func NewWarningStore() *WarningStore {
	return &WarningStore{counts: make(map[warnKey]int)}
}

// Increment adds one warning and returns the new count.
func (s *WarningStore) Increment(chatID, userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := warnKey{chatID: chatID, userID: userID}
	s.counts[key]++
	return s.counts[key]
}

func (s *WarningStore) Get(chatID, userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[warnKey{chatID: chatID, userID: userID}]
}

func (s *WarningStore) Clear(chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, warnKey{chatID: chatID, userID: userID})
}
