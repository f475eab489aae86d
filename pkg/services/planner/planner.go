package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ops-tools/costpilot/pkg/models/domain"
)

const DefaultBatchSize = 20

// Request carries the per-run collector filters and batch sizing.
type Request struct {
	Include    []string
	Exclude    []string
	Categories []string
	BatchSize  int
}

// Planner partitions the collector catalogue into rate-aware batches.
// Quota-limited collectors are chunked at half the batch size to bound
// pressure on the shared rate-limited API; the split is deterministic
// so a retried planning step reproduces identical batches.
type Planner struct {
	batchSize int
}

func New(batchSize int) *Planner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Planner{batchSize: batchSize}
}

func (p *Planner) Plan(catalogue domain.Catalogue, req Request) []domain.Batch {
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = p.batchSize
	}

	collectors := filter(catalogue.Collectors, req)
	sortCollectors(collectors)

	var rateLimited, standard []domain.CollectorDef
	for _, c := range collectors {
		if c.QuotaLimitedAPI {
			rateLimited = append(rateLimited, c)
		} else {
			standard = append(standard, c)
		}
	}

	rateChunk := batchSize / 2
	if rateChunk < 1 {
		rateChunk = 1
	}

	var batches []domain.Batch
	for i, chunk := range chunks(rateLimited, rateChunk) {
		batches = append(batches, domain.Batch{
			ID:          fmt.Sprintf("batch-ce-%d", i+1),
			Type:        domain.BatchTypeRateLimited,
			Collectors:  chunk,
			RateLimited: true,
		})
	}
	for i, chunk := range chunks(standard, batchSize) {
		batches = append(batches, domain.Batch{
			ID:         fmt.Sprintf("batch-%d", i+1),
			Type:       domain.BatchTypeStandard,
			Collectors: chunk,
		})
	}
	return batches
}

func filter(collectors []domain.CollectorDef, req Request) []domain.CollectorDef {
	include := toSet(req.Include)
	exclude := toSet(req.Exclude)
	categories := toSet(req.Categories)

	var out []domain.CollectorDef
	for _, c := range collectors {
		if len(include) > 0 {
			if _, ok := include[c.Name]; !ok {
				continue
			}
		}
		if _, ok := exclude[c.Name]; ok {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[c.Category]; !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func sortCollectors(collectors []domain.CollectorDef) {
	sort.Slice(collectors, func(i, j int) bool {
		if collectors[i].Priority != collectors[j].Priority {
			return collectors[i].Priority < collectors[j].Priority
		}
		return collectors[i].Name < collectors[j].Name
	})
}

func chunks(collectors []domain.CollectorDef, size int) [][]domain.CollectorDef {
	var out [][]domain.CollectorDef
	for start := 0; start < len(collectors); start += size {
		end := start + size
		if end > len(collectors) {
			end = len(collectors)
		}
		out = append(out, collectors[start:end])
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
