package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 5 * time.Second

// viewStore is the subset of *redis.Client the deduper needs.
type viewStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// ViewDeduper counts one view per client and listing within a time window.
type ViewDeduper struct {
	store  viewStore
	window time.Duration
	logger zerolog.Logger
}

func NewViewDeduper(ctx context.Context, addr string, window time.Duration, logger zerolog.Logger) (*ViewDeduper, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	logger.Info().Str("address", addr).Dur("window", window).Msg("View dedup enabled")
	return newViewDeduper(client, window, logger), nil
}

func newViewDeduper(store viewStore, window time.Duration, logger zerolog.Logger) *ViewDeduper {
	return &ViewDeduper{
		store:  store,
		window: window,
		logger: logger,
	}
}

// FirstView reports whether this is the first fetch of the listing by client
// inside the window.
func (d *ViewDeduper) FirstView(ctx context.Context, listingID int, client string) (bool, error) {
	first, err := d.store.SetNX(ctx, viewKey(listingID, client), 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("setnx view key: %w", err)
	}
	if !first {
		d.logger.Debug().Int("listing_id", listingID).Msg("Repeat view within window")
	}
	return first, nil
}

func (d *ViewDeduper) Close() error {
	return d.store.Close()
}

func viewKey(listingID int, client string) string {
	return "listing:views:" + strconv.Itoa(listingID) + ":" + client
}
