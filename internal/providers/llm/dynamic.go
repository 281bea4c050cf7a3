package llm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/ceramicsrag/internal/config"
	"github.com/sandevgo/ceramicsrag/internal/core"
)

// DynamicProvider lets the chat model be switched while requests are in flight.
type DynamicProvider struct {
	config  config.ProviderConfig
	current atomic.Value // Provider
	mu      sync.Mutex
}

func NewDynamicProvider(ctx context.Context, cfg config.ProviderConfig) (*DynamicProvider, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial provider: %w", err)
	}
	return newDynamic(cfg, provider), nil
}

func newDynamic(cfg config.ProviderConfig, p Provider) *DynamicProvider {
	d := &DynamicProvider{config: cfg}
	d.current.Store(p)
	return d
}

func (d *DynamicProvider) provider() Provider {
	return d.current.Load().(Provider)
}

func (d *DynamicProvider) Chat(ctx context.Context, turns []core.Turn) (string, error) {
	return d.provider().Chat(ctx, turns)
}

func (d *DynamicProvider) Models(ctx context.Context) ([]core.Model, error) {
	return d.provider().Models(ctx)
}

func (d *DynamicProvider) Model() string {
	return d.provider().Model()
}

// SetModel swaps in a provider for model. The change lasts for the process lifetime.
func (d *DynamicProvider) SetModel(ctx context.Context, model string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg := d.config
	cfg.Model = model

	newProvider, err := NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	d.config = cfg
	d.current.Store(newProvider)
	return nil
}
