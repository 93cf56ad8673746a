package editorial

import (
	"context"
	"errors"
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/metrics"
)

// Store is the part of the content repository the editorial report reads.
type Store interface {
	DanglingLinks(ctx context.Context) ([]content.DanglingReference, error)
	GetEntity(ctx context.Context, id string) (*content.Entity, error)
}

// Item is a dangling link together with the entity that owns it.
type Item struct {
	content.DanglingReference
	OwnerTitle string       `json:"owner_title"`
	OwnerKind  content.Kind `json:"owner_kind"`
}

// Service builds the dangling link report.
type Service struct {
	store     Store
	collector *metrics.Collector
}

// NewService creates a new editorial service. collector may be nil.
func NewService(store Store, collector *metrics.Collector) *Service {
	return &Service{
		store:     store,
		collector: collector,
	}
}

// Dangling lists every stored link without a target, grouped by owner.
func (s *Service) Dangling(ctx context.Context) ([]Item, error) {
	slog.Debug("Dangling service called")
	refs, err := s.store.DanglingLinks(ctx)
	if err != nil {
		slog.Error("Dangling failed", "error", err)
		return nil, err
	}
	s.collector.SetDangling(len(refs))

	owners := make(map[string]*content.Entity)
	items := make([]Item, 0, len(refs))
	for _, ref := range refs {
		owner, ok := owners[ref.OwnerID]
		if !ok {
			owner, err = s.store.GetEntity(ctx, ref.OwnerID)
			if err != nil && !errors.Is(err, content.ErrNotFound) {
				slog.Error("Dangling owner lookup failed", "error", err, "owner", ref.OwnerID)
				return nil, err
			}
			owners[ref.OwnerID] = owner
		}
		item := Item{DanglingReference: ref}
		if owner != nil {
			item.OwnerTitle = owner.Title
			item.OwnerKind = owner.Kind
		}
		items = append(items, item)
	}
	slog.Debug("Dangling completed", "count", len(items))
	return items, nil
}
