package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN": "123:abc",
	}))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramAPIToken)
	assert.Equal(t, []string{"commands", "welcome", "antispam"}, cfg.EnabledHandlers)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.PriceAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.AntiSpam.SweepInterval)
	assert.Equal(t, time.Minute, cfg.AntiSpam.WindowMaxAge)
	assert.Equal(t, 8, cfg.UpdateWorkers)
	assert.Empty(t, cfg.Admins())
}

func TestLoadWithRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"BOT_TOKEN":      "t",
		"COINGECKO_API":  "http://localhost:9000/api/",
		"UPDATE_WORKERS": "0",
		"HANDLERS":       "commands",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api", cfg.PriceAPI.BaseURL)
	assert.Equal(t, 1, cfg.UpdateWorkers)
	assert.Equal(t, []string{"commands"}, cfg.EnabledHandlers)
}

func TestAdminsTrimsAndSkipsInvalid(t *testing.T) {
	t.Parallel()

	cfg := Config{AdminIDs: " 42, 7 ,nope,,-1001"}
	admins := cfg.Admins()

	assert.Len(t, admins, 3)
	for _, id := range []int64{42, 7, -1001} {
		_, ok := admins[id]
		assert.True(t, ok, "admin %d missing", id)
	}
}

func TestPbFormatterPlain(t *testing.T) {
	t.Parallel()

	entry := log.NewEntry(log.New()).WithFields(log.Fields{"chat_id": 10, "object": "Test"})
	entry.Level = log.WarnLevel
	entry.Message = "line\nbreak"

	out, err := (&PbFormatter{DisableColors: true}).Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "level=WARN ts="))
	assert.Contains(t, line, `chat_id=10 object="Test"`)
	assert.Contains(t, line, `msg="line\nbreak"`)
	assert.Equal(t, 1, strings.Count(line, "\n"))
}
