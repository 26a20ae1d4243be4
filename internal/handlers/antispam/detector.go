package antispam

import "time"

type Action int

const (
	ActionAllow Action = iota
	ActionMute
	ActionDeleteDuplicate
)

// MuteDuration is how long a flooding user loses the right to send messages.
const MuteDuration = 300 * time.Second

func (a Action) String() string {
	switch a {
	case ActionMute:
		return "mute"
	case ActionDeleteDuplicate:
		return "delete_duplicate"
	default:
		return "allow"
	}
}

type Detector struct {
	windows *WindowStore
}

func NewDetector(windows *WindowStore) *Detector {
	return &Detector{windows: windows}
}

// Check records text in the sender's window and decides what to do with it.
// Empty text (media, stickers) counts toward the message limit but is never
// a duplicate.
func (d *Detector) Check(chatID, userID int64, isAdmin bool, text string, level Level, now time.Time) Action {
	if isAdmin || !level.Active() {
		return ActionAllow
	}
	t := level.Thresholds()

	action := ActionAllow
	d.windows.Update(chatID, userID, func(w *Window) *Window {
		if w == nil || now.Sub(w.Start) > t.Interval {
			w = &Window{Start: now}
		}
		w.Count++
		w.Messages = append(w.Messages, text)

		if w.Count > t.Messages {
			action = ActionMute
			return nil
		}

		if text == "" {
			return w
		}
		duplicates := 0
		for _, m := range w.Messages {
			if m == text {
				duplicates++
			}
		}
		if duplicates >= t.Duplicates {
			action = ActionDeleteDuplicate
		}
		return w
	})
	return action
}
