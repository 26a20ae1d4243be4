package antispam

import (
	"math"
	"strings"
	"time"
)

type Level string

const (
	LevelOff    Level = "off"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Interval is the fixed window length of every active level.
const Interval = 5 * time.Second

// Thresholds of one level. A window is muted once it holds more than Messages
// messages and a text is a duplicate once it occurs Duplicates times.
type Thresholds struct {
	Messages   int
	Duplicates int
	Interval   time.Duration
}

var thresholds = map[Level]Thresholds{
	LevelOff:    {Messages: math.MaxInt, Duplicates: math.MaxInt},
	LevelLow:    {Messages: 10, Duplicates: 5, Interval: Interval},
	LevelMedium: {Messages: 6, Duplicates: 3, Interval: Interval},
	LevelHigh:   {Messages: 3, Duplicates: 2, Interval: Interval},
}

// Levels lists the levels from most lenient to strictest.
var Levels = []Level{LevelOff, LevelLow, LevelMedium, LevelHigh}

func (l Level) Thresholds() Thresholds {
	if t, ok := thresholds[l]; ok {
		return t
	}
	return thresholds[LevelOff]
}

func (l Level) Active() bool {
	return l != LevelOff && l != ""
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	_, ok := thresholds[l]
	return l, ok
}
