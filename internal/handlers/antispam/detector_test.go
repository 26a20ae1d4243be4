package antispam

import (
	"fmt"
	"testing"
	"time"
)

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestDetectorMutesAboveMessageThreshold(t *testing.T) {
	t.Parallel()

	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		t.Run(string(level), func(t *testing.T) {
			windows := NewWindowStore()
			d := NewDetector(windows)
			limit := level.Thresholds().Messages

			mutes := 0
			for i := 0; i <= limit; i++ {
				now := start.Add(time.Duration(i) * 100 * time.Millisecond)
				action := d.Check(1, 2, false, fmt.Sprintf("message %d", i), level, now)
				if action == ActionMute {
					mutes++
				} else if action != ActionAllow {
					t.Fatalf("message %d: unexpected action %s", i, action)
				}
			}
			if mutes != 1 {
				t.Fatalf("expected exactly one mute, got %d", mutes)
			}
			if _, ok := windows.Get(1, 2); ok {
				t.Fatal("window must be cleared after mute")
			}
		})
	}
}

func TestDetectorDuplicates(t *testing.T) {
	t.Parallel()

	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		t.Run(string(level), func(t *testing.T) {
			d := NewDetector(NewWindowStore())
			dup := level.Thresholds().Duplicates

			for i := 1; i <= dup; i++ {
				action := d.Check(1, 2, false, "buy now", level, start)
				want := ActionAllow
				if i == dup {
					want = ActionDeleteDuplicate
				}
				if action != want {
					t.Fatalf("copy %d: expected %s, got %s", i, want, action)
				}
			}
		})
	}
}

func TestDetectorEmptyTextIsNeverDuplicate(t *testing.T) {
	t.Parallel()

	windows := NewWindowStore()
	d := NewDetector(windows)
	limit := LevelHigh.Thresholds().Messages

	for i := 1; i <= limit; i++ {
		if action := d.Check(1, 2, false, "", LevelHigh, start); action != ActionAllow {
			t.Fatalf("media %d: expected allow, got %s", i, action)
		}
	}
	w, ok := windows.Get(1, 2)
	if !ok || w.Count != limit {
		t.Fatalf("media must count toward the limit, got %+v", w)
	}
	if action := d.Check(1, 2, false, "", LevelHigh, start); action != ActionMute {
		t.Fatalf("expected mute above the limit, got %s", action)
	}
}

func TestDetectorAdminExempt(t *testing.T) {
	t.Parallel()

	windows := NewWindowStore()
	d := NewDetector(windows)
	for i := 0; i < 50; i++ {
		if action := d.Check(1, 2, true, "same", LevelHigh, start); action != ActionAllow {
			t.Fatalf("admin got %s", action)
		}
	}
	if windows.Len() != 0 {
		t.Fatal("admins must not be tracked")
	}
}

func TestDetectorOffDisablesImmediately(t *testing.T) {
	t.Parallel()

	d := NewDetector(NewWindowStore())
	d.Check(1, 2, false, "same", LevelHigh, start)
	for i := 0; i < 10; i++ {
		if action := d.Check(1, 2, false, "same", LevelOff, start); action != ActionAllow {
			t.Fatalf("off level got %s", action)
		}
	}
}

func TestDetectorWindowResets(t *testing.T) {
	t.Parallel()

	windows := NewWindowStore()
	d := NewDetector(windows)

	for i := 0; i < 3; i++ {
		d.Check(1, 2, false, fmt.Sprint(i), LevelHigh, start)
	}
	if action := d.Check(1, 2, false, "late", LevelHigh, start.Add(Interval+time.Millisecond)); action != ActionAllow {
		t.Fatalf("expected reset window to allow, got %s", action)
	}
	w, ok := windows.Get(1, 2)
	if !ok || w.Count != 1 || len(w.Messages) != 1 {
		t.Fatalf("expected fresh window, got %+v", w)
	}
}

func TestDetectorSeparatesUsersAndChats(t *testing.T) {
	t.Parallel()

	d := NewDetector(NewWindowStore())
	d.Check(1, 2, false, "hi", LevelHigh, start)
	if action := d.Check(1, 3, false, "hi", LevelHigh, start); action != ActionAllow {
		t.Fatalf("other user got %s", action)
	}
	if action := d.Check(9, 2, false, "hi", LevelHigh, start); action != ActionAllow {
		t.Fatalf("other chat got %s", action)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"high", LevelHigh, true},
		{"MEDIUM", LevelMedium, true},
		{"off", LevelOff, true},
		{"extreme", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("ParseLevel(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestSettingsStore(t *testing.T) {
	t.Parallel()

	s := NewSettingsStore()
	if got := s.Get(1); got != LevelOff {
		t.Fatalf("default must be off, got %s", got)
	}
	s.Set(1, LevelMedium)
	if got := s.Get(1); got != LevelMedium {
		t.Fatalf("expected medium, got %s", got)
	}
	s.Set(1, LevelOff)
	if got := s.Get(1); got != LevelOff {
		t.Fatalf("expected off, got %s", got)
	}
}
