package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

type fakeGetter struct {
	mu      sync.Mutex
	batches [][]api.Update
	errs    []error
	offsets []int
}

func (g *fakeGetter) GetUpdates(config api.UpdateConfig) ([]api.Update, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.offsets = append(g.offsets, config.Offset)
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		return nil, err
	}
	if len(g.batches) == 0 {
		return nil, nil
	}
	batch := g.batches[0]
	g.batches = g.batches[1:]
	return batch, nil
}

func TestGetUpdatesChansAdvancesOffset(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{batches: [][]api.Update{
		{{UpdateID: 10}, {UpdateID: 11}},
		{{UpdateID: 11}, {UpdateID: 12}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := GetUpdatesChans(ctx, getter, api.UpdateConfig{}, 4)

	var got []int
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case u := <-ch:
			got = append(got, u.UpdateID)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[0] != 10 || got[1] != 11 || got[2] != 12 {
		t.Fatalf("unexpected updates %v", got)
	}

	cancel()
	for range ch {
	}

	getter.mu.Lock()
	defer getter.mu.Unlock()
	if getter.offsets[1] != 12 {
		t.Fatalf("expected second poll at offset 12, got %v", getter.offsets)
	}
}

func TestGetUpdatesChansClosesOnCancel(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{errs: []error{errors.New("network down")}}
	ctx, cancel := context.WithCancel(context.Background())
	ch := GetUpdatesChans(ctx, getter, api.UpdateConfig{}, 0)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected no updates")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed")
	}
}
