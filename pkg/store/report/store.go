package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ops-tools/costpilot/pkg/models/store"
	"github.com/ops-tools/costpilot/pkg/store/object"
)

// Store persists finalized reports and their summaries. Each report is
// written under its dated key and mirrored to the latest pointer.
type Store interface {
	SaveReport(ctx context.Context, report *store.Report) error
	SaveSummary(ctx context.Context, summary *store.Summary) error
	GetLatestReport(ctx context.Context) (*store.Report, error)
}

type defaultStore struct {
	objects object.Store
	now     func() time.Time
}

type Option func(*defaultStore)

func WithClock(now func() time.Time) Option {
	return func(s *defaultStore) { s.now = now }
}

func NewStore(objects object.Store, opts ...Option) (Store, error) {
	if objects == nil {
		return nil, fmt.Errorf("object store is nil")
	}
	s := &defaultStore{objects: objects, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *defaultStore) SaveReport(ctx context.Context, report *store.Report) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = s.now()
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := object.ReportKey(report.GeneratedAt, report.ExecutionID)
	if err := s.objects.Put(ctx, key, raw); err != nil {
		return err
	}
	return s.objects.Put(ctx, object.LatestReportKey, raw)
}

func (s *defaultStore) SaveSummary(ctx context.Context, summary *store.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return s.objects.Put(ctx, object.SummaryKey(summary.CompletedAt, summary.ExecutionID), raw)
}

func (s *defaultStore) GetLatestReport(ctx context.Context) (*store.Report, error) {
	raw, err := s.objects.Get(ctx, object.LatestReportKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report store.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest report: %w", err)
	}
	return &report, nil
}
