package crypto

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iamwavecut/powerbot/internal/adapters/coingecko"
)

type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// PriceSource quotes a CoinGecko coin id in USD.
type PriceSource interface {
	Price(ctx context.Context, coinID string) (coingecko.Quote, error)
}

type (
	alertKey struct {
		userID int64
		coin   string
	}

	Alert struct {
		UserID       int64
		ChatID       int64
		Coin         string
		Target       decimal.Decimal
		CurrentPrice decimal.Decimal
		Direction    Direction
		CreatedAt    time.Time

		seq uint64
	}
)

// Registry stores one price alert per (user, coin). Alerts are only listed,
// nothing watches them.
type Registry struct {
	prices PriceSource
	now    func() time.Time

	mu     sync.RWMutex
	alerts map[alertKey]*Alert
	seq    uint64
}

func NewRegistry(prices PriceSource) *Registry {
	return &Registry{
		prices: prices,
		now:    time.Now,
		alerts: make(map[alertKey]*Alert),
	}
}

// SetAlert resolves coinInput, quotes it and stores the alert, replacing any
// previous alert of the user for that coin. Errors of the price source are
// returned as is; an unknown coin is errs.ErrNotFound.
func (r *Registry) SetAlert(ctx context.Context, userID, chatID int64, coinInput string, target decimal.Decimal) (Alert, error) {
	coin := coingecko.ResolveCoinID(coinInput)
	quote, err := r.prices.Price(ctx, coin)
	if err != nil {
		return Alert{}, errors.WithMessagef(err, "cant quote %s", coin)
	}

	current := decimal.NewFromFloat(quote.USD)
	direction := DirectionBelow
	if target.GreaterThan(current) {
		direction = DirectionAbove
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := alertKey{userID: userID, coin: coin}
	alert := &Alert{
		UserID:       userID,
		ChatID:       chatID,
		Coin:         coin,
		Target:       target,
		CurrentPrice: current,
		Direction:    direction,
		CreatedAt:    r.now(),
	}
	if prev, ok := r.alerts[key]; ok {
		alert.seq = prev.seq
	} else {
		r.seq++
		alert.seq = r.seq
	}
	r.alerts[key] = alert
	return *alert, nil
}

// ListAlerts returns the user's alerts in the order they were first set.
func (r *Registry) ListAlerts(userID int64) []Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []Alert
	for _, alert := range r.alerts {
		if alert.UserID == userID {
			res = append(res, *alert)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].seq < res[j].seq })
	return res
}
