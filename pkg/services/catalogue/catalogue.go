package catalogue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ops-tools/costpilot/pkg/models/domain"
	"github.com/ops-tools/costpilot/pkg/services/cache"
	"github.com/ops-tools/costpilot/pkg/store/object"
)

const cacheKey = "catalogue/collectors"

// Provider lists the collector catalogue from wherever it is managed.
type Provider interface {
	ListCollectors(ctx context.Context) ([]domain.CollectorDef, error)
}

// Resolver resolves the catalogue, degrading to the embedded default
// set when the provider is unavailable. The fallback is carried as a
// value on the returned Catalogue, not as an error.
type Resolver struct {
	provider Provider
	cache    *cache.Cache
}

func NewResolver(provider Provider, c *cache.Cache) *Resolver {
	return &Resolver{provider: provider, cache: c}
}

func (r *Resolver) Resolve(ctx context.Context) domain.Catalogue {
	logger := zerolog.Ctx(ctx)

	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			return cached.(domain.Catalogue)
		}
	}

	collectors, err := r.provider.ListCollectors(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("catalogue unavailable, using embedded default")
		return domain.Catalogue{
			Collectors: DefaultCollectors(),
			Source:     domain.CatalogueSourceEmbedded,
		}
	}

	resolved := domain.Catalogue{
		Collectors: collectors,
		Source:     domain.CatalogueSourceRemote,
	}
	if r.cache != nil {
		r.cache.Set(cacheKey, resolved)
	}
	return resolved
}

type collectorDoc struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Priority        int    `json:"priority"`
	QuotaLimitedAPI bool   `json:"requires_quota_limited_api"`
}

// objectProvider reads the ops-managed catalogue document from the
// object store.
type objectProvider struct {
	objects object.Store
	key     string
}

func NewObjectProvider(objects object.Store, key string) Provider {
	if key == "" {
		key = object.CatalogueKey
	}
	return &objectProvider{objects: objects, key: key}
}

func (p *objectProvider) ListCollectors(ctx context.Context) ([]domain.CollectorDef, error) {
	raw, err := p.objects.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}

	var docs []collectorDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue document: %w", err)
	}

	collectors := make([]domain.CollectorDef, 0, len(docs))
	for _, d := range docs {
		priority := d.Priority
		if priority < 1 || priority > 5 {
			priority = 3
		}
		collectors = append(collectors, domain.CollectorDef{
			Name:            d.Name,
			Category:        d.Category,
			Priority:        priority,
			QuotaLimitedAPI: d.QuotaLimitedAPI,
		})
	}
	return collectors, nil
}
