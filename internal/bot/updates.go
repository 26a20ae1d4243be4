package bot

import (
	"context"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
)

const getUpdatesRetryDelay = 3 * time.Second

// UpdatesGetter is the long-polling part of *api.BotAPI.
type UpdatesGetter interface {
	GetUpdates(config api.UpdateConfig) ([]api.Update, error)
}

// GetUpdatesChans long-polls until ctx is done. Polling errors are logged and
// retried after a short delay. The channel is closed on return.
func GetUpdatesChans(ctx context.Context, bot UpdatesGetter, config api.UpdateConfig, buffer int) api.UpdatesChannel {
	ch := make(chan api.Update, buffer)
	entry := log.WithField("object", "UpdatesPoller")

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			updates, err := bot.GetUpdates(config)
			if err != nil {
				entry.WithField("error", err.Error()).Warn("failed to get updates, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(getUpdatesRetryDelay):
				}
				continue
			}

			for _, update := range updates {
				if update.UpdateID < config.Offset {
					continue
				}
				config.Offset = update.UpdateID + 1
				select {
				case ch <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch
}
