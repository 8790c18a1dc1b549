package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mimics SETNX over an in-memory key set and records the TTL used.
type fakeStore struct {
	keys   map[string]bool
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func TestViewKey(t *testing.T) {
	assert.Equal(t, "listing:views:42:203.0.113.7", viewKey(42, "203.0.113.7"))
	assert.NotEqual(t, viewKey(1, "a"), viewKey(1, "b"))
	assert.NotEqual(t, viewKey(1, "a"), viewKey(2, "a"))
}

func TestNewViewDeduper_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	d, err := NewViewDeduper(ctx, "127.0.0.1:1", time.Minute, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, d)
}

func TestFirstView(t *testing.T) {
	store := newFakeStore()
	d := newViewDeduper(store, 10*time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := d.FirstView(ctx, 7, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, 10*time.Minute, store.ttls[viewKey(7, "203.0.113.7")])

	repeat, err := d.FirstView(ctx, 7, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, repeat)

	other, err := d.FirstView(ctx, 7, "198.51.100.4")
	require.NoError(t, err)
	assert.True(t, other)

	otherListing, err := d.FirstView(ctx, 8, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, otherListing)
}

func TestFirstView_StoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection reset")
	d := newViewDeduper(store, time.Minute, zerolog.Nop())

	first, err := d.FirstView(context.Background(), 7, "203.0.113.7")
	assert.ErrorIs(t, err, store.err)
	assert.False(t, first)
}

func TestViewDeduper_Close(t *testing.T) {
	store := newFakeStore()
	d := newViewDeduper(store, time.Minute, zerolog.Nop())

	require.NoError(t, d.Close())
	assert.True(t, store.closed)
}
