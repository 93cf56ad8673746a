package metrics

import (
	"context"
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
)

// Store is the part of the content repository the metrics feature reads.
type Store interface {
	CountEntities(ctx context.Context) (map[content.Kind]int, error)
	DanglingLinks(ctx context.Context) ([]content.DanglingReference, error)
}

// Service provides content statistics and keeps the gauges in sync.
type Service struct {
	store     Store
	collector *Collector
}

// NewService creates a new metrics service.
func NewService(store Store, collector *Collector) *Service {
	return &Service{
		store:     store,
		collector: collector,
	}
}

// Collector returns the collector the service updates.
func (s *Service) Collector() *Collector {
	return s.collector
}

// Stats is a snapshot of the stored content.
type Stats struct {
	Entities map[content.Kind]int `json:"entities"`
	Dangling int                  `json:"dangling"`
}

// Refresh reads the current counts from the store and updates the gauges.
func (s *Service) Refresh(ctx context.Context) (*Stats, error) {
	slog.Debug("Refresh metrics service called")
	counts, err := s.store.CountEntities(ctx)
	if err != nil {
		slog.Error("CountEntities failed", "error", err)
		return nil, err
	}
	dangling, err := s.store.DanglingLinks(ctx)
	if err != nil {
		slog.Error("DanglingLinks failed", "error", err)
		return nil, err
	}

	s.collector.SetEntityCounts(counts)
	s.collector.SetDangling(len(dangling))

	stats := &Stats{Entities: counts, Dangling: len(dangling)}
	slog.Debug("Refresh completed", "dangling", stats.Dangling)
	return stats, nil
}
