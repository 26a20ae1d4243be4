package antispam

import (
	"sync"
	"time"
)

type (
	windowKey struct {
		chatID int64
		userID int64
	}

	// Window is the activity of one user in one chat since Start.
	Window struct {
		Count    int
		Start    time.Time
		Messages []string
	}
)

// WindowStore owns the activity windows of all tracked (chat, user) pairs.
type WindowStore struct {
	mu      sync.Mutex
	windows map[windowKey]*Window
}

func NewWindowStore() *WindowStore {
	return &WindowStore{windows: make(map[windowKey]*Window)}
}

// Update runs fn on the window of (chatID, userID) under the store lock. A
// missing window is passed as nil. fn returns the window to keep, or nil to
// drop the entry.
func (s *WindowStore) Update(chatID, userID int64, fn func(w *Window) *Window) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := windowKey{chatID: chatID, userID: userID}
	if next := fn(s.windows[key]); next != nil {
		s.windows[key] = next
		return
	}
	delete(s.windows, key)
}

// Get returns a copy of the window, if tracked.
func (s *WindowStore) Get(chatID, userID int64) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[windowKey{chatID: chatID, userID: userID}]
	if !ok {
		return Window{}, false
	}
	cp := *w
	cp.Messages = append([]string(nil), w.Messages...)
	return cp, true
}

func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Sweep removes windows that started more than maxAge before now and returns
// how many were removed.
func (s *WindowStore) Sweep(now time.Time, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if now.Sub(w.Start) > maxAge {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}
