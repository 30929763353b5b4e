// Package converter holds the engine shared by the service surfaces and
// records conversion metrics.
package converter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jusunglee/singlish/internal/db"
	"github.com/jusunglee/singlish/internal/metrics"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/samber/lo"
)

// Converter serves conversions from an immutable engine. Adding passthrough
// words builds a new engine and swaps it in; conversions already running
// finish on the engine they started with.
type Converter struct {
	engine atomic.Pointer[transliteration.Engine]
	mu     sync.Mutex
}

func New(engine *transliteration.Engine) *Converter {
	c := &Converter{}
	c.engine.Store(engine)
	metrics.PassthroughWords.Set(float64(engine.Registry().Len()))
	return c
}

// Engine returns the engine currently in use.
func (c *Converter) Engine() *transliteration.Engine {
	return c.engine.Load()
}

// Convert converts s and records metrics under surface (web, bot, cli).
func (c *Converter) Convert(surface, s string) transliteration.Result {
	start := time.Now()
	res := c.engine.Load().ConvertDetailed(s)
	metrics.ConversionDuration.Observe(time.Since(start).Seconds())
	metrics.ConversionInputBytes.Observe(float64(len(s)))
	metrics.ConversionsTotal.WithLabelValues(surface).Inc()
	if n := len(res.Unresolved); n > 0 {
		metrics.UnresolvedWordsTotal.WithLabelValues(surface).Add(float64(n))
	}
	return res
}

// AddWords swaps in an engine whose registry also holds words.
func (c *Converter) AddWords(words ...string) (*transliteration.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.engine.Load()
	next, err := transliteration.New(transliteration.Config{
		Rules:    cur.Rules(),
		Registry: cur.Registry().With(words...),
	})
	if err != nil {
		return nil, fmt.Errorf("rebuilding engine: %w", err)
	}
	c.engine.Store(next)
	metrics.PassthroughWords.Set(float64(next.Registry().Len()))
	return next, nil
}

// LoadStored adds the passthrough words kept in repo.
func (c *Converter) LoadStored(ctx context.Context, repo db.Repository) (int, error) {
	stored, err := repo.ListPassthroughWords(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing passthrough words: %w", err)
	}
	if len(stored) == 0 {
		return 0, nil
	}
	words := lo.Map(stored, func(w db.PassthroughWord, _ int) string { return w.Word })
	if _, err := c.AddWords(words...); err != nil {
		return 0, err
	}
	return len(words), nil
}
