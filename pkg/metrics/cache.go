package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

// instrumentedCache reports every operation of the wrapped cache.
type instrumentedCache[V any] struct {
	next    cache.Cache[V]
	rec     *Recorder
	backend string
}

// InstrumentCache wraps c so each call is recorded under backend.
// A nil recorder returns c unchanged.
func InstrumentCache[V any](c cache.Cache[V], rec *Recorder, backend string) cache.Cache[V] {
	if rec == nil {
		return c
	}
	return &instrumentedCache[V]{next: c, rec: rec, backend: backend}
}

func (c *instrumentedCache[V]) observe(op string, started time.Time, err error) {
	result := ResultOK
	switch {
	case errors.Is(err, cache.ErrNotFound):
		result = ResultMiss
	case err != nil:
		result = ResultError
	case op == "get":
		result = ResultHit
	}
	c.rec.ObserveCache(c.backend, op, result, time.Since(started))
}

func (c *instrumentedCache[V]) Get(ctx context.Context, key string) (V, error) {
	started := time.Now()
	v, err := c.next.Get(ctx, key)
	c.observe("get", started, err)
	return v, err
}

func (c *instrumentedCache[V]) Set(ctx context.Context, key string, value V, expiresAt time.Time) error {
	started := time.Now()
	err := c.next.Set(ctx, key, value, expiresAt)
	c.observe("set", started, err)
	return err
}

func (c *instrumentedCache[V]) Delete(ctx context.Context, key string) error {
	started := time.Now()
	err := c.next.Delete(ctx, key)
	c.observe("delete", started, err)
	return err
}

func (c *instrumentedCache[V]) Has(ctx context.Context, key string) (bool, error) {
	started := time.Now()
	ok, err := c.next.Has(ctx, key)
	c.observe("has", started, err)
	return ok, err
}

func (c *instrumentedCache[V]) Clear(ctx context.Context) error {
	started := time.Now()
	err := c.next.Clear(ctx)
	c.observe("clear", started, err)
	return err
}

func (c *instrumentedCache[V]) Close() error {
	return c.next.Close()
}
