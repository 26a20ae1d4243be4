package config

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"BOT_TOKEN,required"`
		AdminIDs         string   `env:"ADMIN_IDS"`
		EnabledHandlers  []string `env:"HANDLERS,default=commands,welcome,antispam"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		UpdateWorkers    int      `env:"UPDATE_WORKERS,default=8"`
		PriceAPI         PriceAPI
		AntiSpam         AntiSpam
		Observability    Observability
	}

	PriceAPI struct {
		BaseURL           string        `env:"COINGECKO_API,default=https://api.coingecko.com/api/v3"`
		Timeout           time.Duration `env:"COINGECKO_TIMEOUT,default=10s"`
		RequestsPerMinute int           `env:"COINGECKO_RPM,default=30"`
		CacheTTL          time.Duration `env:"COINGECKO_CACHE_TTL,default=30s"`
	}

	AntiSpam struct {
		SweepInterval time.Duration `env:"ANTISPAM_SWEEP_INTERVAL,default=30s"`
		WindowMaxAge  time.Duration `env:"ANTISPAM_WINDOW_MAX_AGE,default=60s"`
	}

	Observability struct {
		MetricsAddr    string `env:"METRICS_ADDR,default=:2112"`
		TracingEnabled bool   `env:"TRACING_ENABLED,default=false"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

// Load reads the process environment once and caches the result.
func Load() (Config, error) {
	once.Do(func() {
		cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
		if err != nil {
			globalErr = err
			return
		}
		log.Traceln("loaded config")
		globalConfig = &cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	cfg := Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Lookuper: lookuper,
		Target:   &cfg,
	}); err != nil {
		return Config{}, errors.Wrap(err, "process env config")
	}
	cfg.PriceAPI.BaseURL = strings.TrimRight(cfg.PriceAPI.BaseURL, "/")
	if cfg.UpdateWorkers < 1 {
		cfg.UpdateWorkers = 1
	}
	return cfg, nil
}

// Admins parses ADMIN_IDS. Entries that are not integers are skipped.
func (c Config) Admins() map[int64]struct{} {
	admins := map[int64]struct{}{}
	for _, raw := range strings.Split(c.AdminIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.WithFields(log.Fields{"value": raw, "error": err.Error()}).Warn("skipping invalid admin id")
			continue
		}
		admins[id] = struct{}{}
	}
	return admins
}
