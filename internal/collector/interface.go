// Package collector defines the candle data source interface and the
// registry that commands resolve providers from.
package collector

import (
	"context"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// Provider fetches historical candles for a symbol.
type Provider interface {
	Name() string

	// FetchCandles returns candles of the given granularity (seconds)
	// covering [start, end], ordered oldest to newest.
	FetchCandles(ctx context.Context, symbol string, granularity int, start, end time.Time) ([]core.Candle, error)
}

// Registry manages candle providers
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
