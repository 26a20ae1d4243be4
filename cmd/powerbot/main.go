package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iamwavecut/powerbot/internal/adapters/coingecko"
	"github.com/iamwavecut/powerbot/internal/bot"
	"github.com/iamwavecut/powerbot/internal/config"
	"github.com/iamwavecut/powerbot/internal/handlers/antispam"
	"github.com/iamwavecut/powerbot/internal/handlers/crypto"
	"github.com/iamwavecut/powerbot/internal/handlers/general"
	"github.com/iamwavecut/powerbot/internal/handlers/moderation"
	"github.com/iamwavecut/powerbot/internal/handlers/welcome"
	"github.com/iamwavecut/powerbot/internal/infra"
	"github.com/iamwavecut/powerbot/internal/lifecycle"
	"github.com/iamwavecut/powerbot/internal/observability"
)

const (
	pollTimeoutSeconds = 60
	updatesBuffer      = 100
	shutdownTimeout    = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warnln("cant load .env")
	}

	cfg, err := config.Load()
	log.SetFormatter(&config.PbFormatter{})
	log.SetOutput(os.Stdout)
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		log.WithError(err).Fatalln("cant initialize bot api")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	log.WithField("username", botAPI.Self.UserName).Infoln("authorized")

	service := bot.NewService(botAPI, cfg.Admins())

	prices, err := coingecko.NewClient(coingecko.Options{
		BaseURL:           cfg.PriceAPI.BaseURL,
		Timeout:           cfg.PriceAPI.Timeout,
		RequestsPerMinute: cfg.PriceAPI.RequestsPerMinute,
		CacheTTL:          cfg.PriceAPI.CacheTTL,
	})
	if err != nil {
		log.WithError(err).Fatalln("cant initialize price client")
	}

	windows := antispam.NewWindowStore()
	spamSettings := antispam.NewSettingsStore()
	antiSpam := antispam.NewHandler(service, spamSettings, antispam.NewDetector(windows))
	greeter := welcome.NewHandler(service, welcome.NewTemplateStore())
	moderator := moderation.NewCommands(moderation.NewWarningStore())
	market := crypto.NewCommands(prices, crypto.NewRegistry(prices))

	router := bot.NewCommandRouter(service)
	router.Register("start", general.Start)
	router.Register("help", general.Help)
	router.Register("id", general.ID)
	router.Register("price", market.Price)
	router.Register("top", market.Top)
	router.Register("alert", market.Alert)
	router.Register("alerts", market.Alerts)
	router.Register("ban", moderator.Ban)
	router.Register("kick", moderator.Kick)
	router.Register("mute", moderator.Mute)
	router.Register("warn", moderator.Warn)
	router.Register("stats", moderator.Stats)
	router.Register("setwelcome", greeter.SetWelcome)
	router.Register("setspam", antiSpam.SetSpam)
	log.WithField("commands", router.Commands()).Debugln("commands registered")

	updateProcessor := bot.NewUpdateProcessor(cfg.EnabledHandlers)
	updateProcessor.RegisterUpdateHandler("commands", router)
	updateProcessor.RegisterUpdateHandler("welcome", greeter)
	updateProcessor.RegisterUpdateHandler("antispam", antiSpam)

	runtime := lifecycle.NewRuntime()
	runtime.Register("tracing", observability.NewTracing(cfg.Observability.TracingEnabled))
	runtime.Register("metrics", observability.NewMetricsServer(cfg.Observability.MetricsAddr))
	runtime.Register("antispam-sweeper", antispam.NewSweeper(windows, cfg.AntiSpam.SweepInterval, cfg.AntiSpam.WindowMaxAge))
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updates := bot.GetUpdatesChans(ctx, botAPI, updateConfig, updatesBuffer)

	// In-flight updates finish after a shutdown signal.
	processCtx := context.WithoutCancel(ctx)
	var workers errgroup.Group
	workers.SetLimit(cfg.UpdateWorkers)

	log.WithField("workers", cfg.UpdateWorkers).Infoln("processing updates")
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			workers.Go(func() error {
				err := infra.Recover(fmt.Sprintf("update-%d", update.UpdateID), func() error {
					return updateProcessor.Process(processCtx, &update)
				})
				if err != nil {
					log.WithError(err).Errorln("cant process update")
				}
				return nil
			})
		}
	}

	log.Infoln("shutting down")
	_ = workers.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := runtime.Stop(shutdownCtx); err != nil {
		log.WithError(err).Errorln("unclean shutdown")
	}
}
