package crypto

import (
	"context"
	"fmt"
	"strings"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamwavecut/tool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/powerbot/internal/adapters/coingecko"
	"github.com/iamwavecut/powerbot/internal/bot"
	errs "github.com/iamwavecut/powerbot/internal/errors"
)

const (
	topLimit = 10

	textPriceUsage   = "Usage: /price <coin>\nExample: /price btc"
	textAlertUsage   = "Usage: /alert <coin> <target_price>\nExample: /alert btc 50000"
	textInvalidPrice = "❌ Invalid price. Please enter a number."
	textTopFailed    = "❌ Failed to fetch top coins. Try again later."
	textNoAlerts     = "📭 You have no active price alerts.\n\nUse /alert <coin> <price> to set one."

	tplPrice = `{{ .emoji }} *{{ .coin }}*

💰 Price: *${{ .price }}*
📊 24h: {{ .change }}
💎 MCap: {{ .mcap }}`

	tplAlertSet = `✅ *Alert Set!*

Coin: {{ .coin }}
Current: ${{ .current }}
Alert when: {{ .direction }} ${{ .target }}`
)

// Prices is the part of the CoinGecko client the commands need.
type Prices interface {
	PriceSource
	TopCoins(ctx context.Context, limit int) ([]coingecko.MarketCoin, error)
}

// Commands implements /price, /top, /alert and /alerts.
type Commands struct {
	prices   Prices
	registry *Registry
}

func NewCommands(prices Prices, registry *Registry) *Commands {
	return &Commands{
		prices:   prices,
		registry: registry,
	}
}

func (cc *Commands) getLogEntry(ctx context.Context) *log.Entry {
	return bot.LogEntry(ctx).WithField("object", "Crypto")
}

func (cc *Commands) Price(ctx context.Context, c bot.ChatContext, args []string) error {
	if len(args) == 0 {
		return errs.Reject(errs.ErrPreconditionFailed, textPriceUsage)
	}

	coin := coingecko.ResolveCoinID(args[0])
	quote, err := cc.prices.Price(ctx, coin)
	if err != nil {
		cc.getLogEntry(ctx).WithField("coin", coin).WithField("error", err.Error()).Debug("price lookup failed")
		return errs.Reject(errs.ErrNotFound, fmt.Sprintf("❌ Couldn't find price for \"%s\". Try the full name or check the spelling.", args[0]))
	}

	emoji := "📈"
	if quote.Change24h < 0 {
		emoji = "📉"
	}
	text := tool.ExecTemplate(tplPrice, map[string]any{
		"emoji":  emoji,
		"coin":   strings.ToUpper(coin),
		"price":  FormatPrice(quote.USD),
		"change": FormatChange(quote.Change24h, 2),
		"mcap":   FormatMarketCap(quote.MarketCap),
	})
	return c.Reply(ctx, text, api.ModeMarkdown)
}

func (cc *Commands) Top(ctx context.Context, c bot.ChatContext, _ []string) error {
	coins, err := cc.prices.TopCoins(ctx, topLimit)
	if err != nil {
		cc.getLogEntry(ctx).WithField("error", err.Error()).Warn("top coins lookup failed")
		return errs.Reject(errs.ErrExternal, textTopFailed)
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Top 10 Cryptocurrencies*\n\n")
	for i, coin := range coins {
		emoji := "🟢"
		if coin.PriceChangePercentage24h < 0 {
			emoji = "🔴"
		}
		fmt.Fprintf(&sb, "%d. *%s* — $%s %s %s\n",
			i+1,
			strings.ToUpper(coin.Symbol),
			FormatPrice(coin.CurrentPrice),
			emoji,
			FormatChange(coin.PriceChangePercentage24h, 1),
		)
	}
	return c.Reply(ctx, sb.String(), api.ModeMarkdown)
}

func (cc *Commands) Alert(ctx context.Context, c bot.ChatContext, args []string) error {
	if len(args) < 2 {
		return errs.Reject(errs.ErrPreconditionFailed, textAlertUsage)
	}

	target, err := decimal.NewFromString(args[1])
	if err != nil || !target.IsPositive() {
		return errs.Reject(errs.ErrPreconditionFailed, textInvalidPrice)
	}

	alert, err := cc.registry.SetAlert(ctx, c.Sender().ID, c.Chat().ID, args[0], target)
	if err != nil {
		cc.getLogEntry(ctx).WithField("error", err.Error()).Debug("cant set alert")
		return errs.Reject(errs.ErrNotFound, fmt.Sprintf("❌ Couldn't find \"%s\". Check the coin name.", args[0]))
	}

	direction := "falls below"
	if alert.Direction == DirectionAbove {
		direction = "rises above"
	}
	text := tool.ExecTemplate(tplAlertSet, map[string]any{
		"coin":      strings.ToUpper(alert.Coin),
		"current":   FormatPrice(alert.CurrentPrice.InexactFloat64()),
		"direction": direction,
		"target":    FormatPrice(alert.Target.InexactFloat64()),
	})
	return c.Reply(ctx, text, api.ModeMarkdown)
}

func (cc *Commands) Alerts(ctx context.Context, c bot.ChatContext, _ []string) error {
	alerts := cc.registry.ListAlerts(c.Sender().ID)
	if len(alerts) == 0 {
		return c.Reply(ctx, textNoAlerts, "")
	}

	var sb strings.Builder
	sb.WriteString("🔔 *Your Price Alerts*\n\n")
	for i, alert := range alerts {
		fmt.Fprintf(&sb, "%d. %s → $%s (%s)\n",
			i+1,
			strings.ToUpper(alert.Coin),
			FormatPrice(alert.Target.InexactFloat64()),
			alert.Direction,
		)
	}
	return c.Reply(ctx, sb.String(), api.ModeMarkdown)
}
