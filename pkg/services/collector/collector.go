package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/provider"
)

// Collector is one per-service cost/usage adapter. Implementations
// live outside this layer; the orchestrator only needs the contract.
type Collector interface {
	Name() string
	Collect(ctx context.Context, clients provider.ClientFactory, region string) (*domain.BatchResult, error)
}

// Func adapts a plain function into a Collector.
type Func struct {
	CollectorName string
	CollectFn     func(ctx context.Context, clients provider.ClientFactory, region string) (*domain.BatchResult, error)
}

func (f Func) Name() string { return f.CollectorName }

func (f Func) Collect(
	ctx context.Context,
	clients provider.ClientFactory,
	region string,
) (*domain.BatchResult, error) {
	return f.CollectFn(ctx, clients, region)
}

// Registry maps collector names to implementations.
type Registry interface {
	Register(c Collector) error
	Get(name string) (Collector, error)
	Names() []string
}

type registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

func NewRegistry() Registry {
	return &registry{collectors: make(map[string]Collector)}
}

func (r *registry) Register(c Collector) error {
	if c == nil || c.Name() == "" {
		return fmt.Errorf("collector must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collectors[c.Name()]; exists {
		return fmt.Errorf("collector %q is already registered", c.Name())
	}
	r.collectors[c.Name()] = c
	return nil
}

func (r *registry) Get(name string) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.collectors[name]
	if !exists {
		return nil, fmt.Errorf("collector %q is not registered", name)
	}
	return c, nil
}

func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	return names
}
