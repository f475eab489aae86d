package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/costpilot/pkg/models/domain"
)

func syntheticCatalogue(quotaLimited, standard int) domain.Catalogue {
	var collectors []domain.CollectorDef
	for i := 0; i < quotaLimited; i++ {
		collectors = append(collectors, domain.CollectorDef{
			Name:            fmt.Sprintf("ce-collector-%03d", i),
			Category:        "billing",
			Priority:        1 + i%5,
			QuotaLimitedAPI: true,
		})
	}
	for i := 0; i < standard; i++ {
		collectors = append(collectors, domain.CollectorDef{
			Name:     fmt.Sprintf("collector-%03d", i),
			Category: "compute",
			Priority: 1 + i%5,
		})
	}
	return domain.Catalogue{Collectors: collectors, Source: domain.CatalogueSourceEmbedded}
}

func TestPlan_PartitionCounts(t *testing.T) {
	// Given: 6 quota-limited and 246 standard collectors, batch size 20
	p := New(20)
	catalogue := syntheticCatalogue(6, 246)

	// When
	batches := p.Plan(catalogue, Request{})

	// Then: 1 rate-limited batch (6 <= 10) and ceil(246/20) = 13
	var rateLimited, standard int
	for _, b := range batches {
		switch b.Type {
		case domain.BatchTypeRateLimited:
			rateLimited++
			assert.True(t, b.RateLimited)
			assert.LessOrEqual(t, len(b.Collectors), 10)
		case domain.BatchTypeStandard:
			standard++
			assert.False(t, b.RateLimited)
			assert.LessOrEqual(t, len(b.Collectors), 20)
		}
	}
	assert.Equal(t, 1, rateLimited)
	assert.Equal(t, 13, standard)
	assert.Len(t, batches, 14)
}

func TestPlan_EveryCollectorAssignedExactlyOnce(t *testing.T) {
	// Given
	p := New(20)
	catalogue := syntheticCatalogue(6, 246)

	// When
	batches := p.Plan(catalogue, Request{})

	// Then
	seen := make(map[string]int)
	for _, b := range batches {
		for _, c := range b.Collectors {
			seen[c.Name]++
		}
	}
	assert.Len(t, seen, 252)
	for name, count := range seen {
		assert.Equal(t, 1, count, "collector %s assigned %d times", name, count)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	// Given
	p := New(20)
	catalogue := syntheticCatalogue(6, 50)

	// When
	first := p.Plan(catalogue, Request{})
	second := p.Plan(catalogue, Request{})

	// Then
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Collectors, second[i].Collectors)
	}
}

func TestPlan_SortsByPriorityThenName(t *testing.T) {
	// Given
	p := New(10)
	catalogue := domain.Catalogue{Collectors: []domain.CollectorDef{
		{Name: "zeta", Category: "compute", Priority: 1},
		{Name: "alpha", Category: "compute", Priority: 2},
		{Name: "beta", Category: "compute", Priority: 1},
	}}

	// When
	batches := p.Plan(catalogue, Request{})

	// Then
	require.Len(t, batches, 1)
	names := batches[0].CollectorNames()
	assert.Equal(t, []string{"beta", "zeta", "alpha"}, names)
}

func TestPlan_StableBatchIDs(t *testing.T) {
	// Given
	p := New(4)
	catalogue := syntheticCatalogue(5, 9)

	// When
	batches := p.Plan(catalogue, Request{})

	// Then: quota-limited chunked at 4/2=2, standard at 4
	var ids []string
	for _, b := range batches {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"batch-ce-1", "batch-ce-2", "batch-ce-3", "batch-1", "batch-2", "batch-3"}, ids)
}

func TestPlan_Filters(t *testing.T) {
	// Given
	p := New(20)
	catalogue := domain.Catalogue{Collectors: []domain.CollectorDef{
		{Name: "ec2-instances", Category: "compute", Priority: 1},
		{Name: "s3-buckets", Category: "storage", Priority: 1},
		{Name: "rds-instances", Category: "database", Priority: 1},
	}}

	// When
	batches := p.Plan(catalogue, Request{
		Categories: []string{"compute", "storage"},
		Exclude:    []string{"s3-buckets"},
	})

	// Then
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"ec2-instances"}, batches[0].CollectorNames())
}

func TestPlan_FullyFilteredCatalogue_YieldsZeroBatches(t *testing.T) {
	// Given
	p := New(20)
	catalogue := syntheticCatalogue(2, 2)

	// When
	batches := p.Plan(catalogue, Request{Include: []string{"does-not-exist"}})

	// Then: empty plan is not an error
	assert.Empty(t, batches)
}

func TestPlan_BatchSizeOne_RateChunkStaysPositive(t *testing.T) {
	// Given
	p := New(1)
	catalogue := syntheticCatalogue(3, 0)

	// When
	batches := p.Plan(catalogue, Request{})

	// Then
	assert.Len(t, batches, 3)
}
