package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorRed         = 31
	colorGreen       = 32
	colorYellow      = 33
	colorBlue        = 36
	colorGray        = 37
	colorLightGreen  = 92
	colorLightYellow = 93
	colorCyan        = 96
)

// PbFormatter renders one colored key=value line per entry.
type PbFormatter struct {
	DisableColors bool
}

func (f *PbFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer

	f.writePair(&b, "level", strings.ToUpper(entry.Level.String())[:4], levelColor(entry.Level))
	f.writePair(&b, "ts", entry.Time.Format("2006-01-02 15:04:05.000"), colorLightYellow)
	if entry.HasCaller() {
		f.writePair(&b, "source", fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), colorLightYellow)
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := stringifyValue(entry.Data[k])
		if s == "" {
			continue
		}
		valueColor := colorCyan
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			valueColor = colorGreen
		} else if strings.HasPrefix(s, `"`) {
			valueColor = colorLightYellow
		}
		f.writePair(&b, k, s, valueColor)
	}
	f.writePair(&b, "msg", strconv.Quote(entry.Message), colorLightGreen)

	line := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(strings.TrimPrefix(b.String(), " "))
	return []byte(line + "\n"), nil
}

func (f *PbFormatter) writePair(b *bytes.Buffer, key, value string, valueColor int) {
	if f.DisableColors {
		fmt.Fprintf(b, " %s=%s", key, value)
		return
	}
	fmt.Fprintf(b, " \x1b[%dm%s\x1b[0m=\x1b[%dm%s\x1b[0m", colorCyan, key, valueColor, value)
}

func stringifyValue(val any) string {
	if err, ok := val.(error); ok {
		return strconv.Quote(err.Error())
	}
	m, err := json.Marshal(val)
	if err != nil {
		return ""
	}
	return string(m)
}

func levelColor(level log.Level) int {
	switch level {
	case log.TraceLevel, log.DebugLevel:
		return colorGray
	case log.WarnLevel:
		return colorYellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return colorRed
	default:
		return colorBlue
	}
}
