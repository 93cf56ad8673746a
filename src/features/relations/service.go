package relations

import (
	"context"
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/metrics"
)

// Service manages ordered relationship collections and their reverse lookups.
type Service struct {
	links     content.LinkStore
	reporter  content.DanglingReporter
	collector *metrics.Collector
}

// NewService creates a new relations service. reporter and collector may be nil.
func NewService(links content.LinkStore, reporter content.DanglingReporter, collector *metrics.Collector) *Service {
	return &Service{
		links:     links,
		reporter:  reporter,
		collector: collector,
	}
}

// List returns every link of owner/kind in order, dangling ones included.
func (s *Service) List(ctx context.Context, ownerID string, kind content.LinkKind) ([]content.Linked, error) {
	slog.Debug("List service called", "owner", ownerID, "kind", kind)
	links, err := s.links.ListLinks(ctx, ownerID, kind)
	if err != nil {
		slog.Error("List failed", "error", err, "owner", ownerID, "kind", kind)
		return nil, err
	}
	slog.Debug("List completed", "count", len(links))
	return links, nil
}

// Targets returns the resolved targets of owner/kind in order, for rendering.
// Dangling links are skipped and reported for editorial cleanup.
func (s *Service) Targets(ctx context.Context, ownerID string, kind content.LinkKind) ([]*content.Entity, error) {
	links, err := s.List(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}

	targets := make([]*content.Entity, 0, len(links))
	var dangling []content.DanglingReference
	for _, l := range links {
		if l.Dangling() || l.Target == nil {
			dangling = append(dangling, l.Reference())
			continue
		}
		targets = append(targets, l.Target)
	}
	s.report(ctx, "render", dangling)
	return targets, nil
}

// LiveTargets is Targets restricted to published entities.
func (s *Service) LiveTargets(ctx context.Context, ownerID string, kind content.LinkKind) ([]*content.Entity, error) {
	targets, err := s.Targets(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}
	live := targets[:0]
	for _, t := range targets {
		if t.Live {
			live = append(live, t)
		}
	}
	return live, nil
}

// Add links target to owner. A nil position appends after the last link.
func (s *Service) Add(ctx context.Context, ownerID string, kind content.LinkKind, targetID string, position *int) (int64, error) {
	slog.Debug("Add service called", "owner", ownerID, "kind", kind, "target", targetID)
	id, err := s.links.AddLink(ctx, ownerID, kind, targetID, position)
	s.collector.ObserveWrite("add", kind, err)
	if err != nil {
		slog.Error("Add failed", "error", err, "owner", ownerID, "kind", kind)
		return 0, err
	}
	slog.Info("Link added", "owner", ownerID, "kind", kind, "link", id)
	return id, nil
}

// Remove deletes one link of owner/kind. Siblings keep their positions.
func (s *Service) Remove(ctx context.Context, ownerID string, kind content.LinkKind, linkID int64) error {
	slog.Debug("Remove service called", "owner", ownerID, "kind", kind, "link", linkID)
	err := s.links.RemoveLink(ctx, ownerID, kind, linkID)
	s.collector.ObserveWrite("remove", kind, err)
	if err != nil {
		slog.Error("Remove failed", "error", err, "owner", ownerID, "kind", kind, "link", linkID)
		return err
	}
	slog.Info("Link removed", "owner", ownerID, "kind", kind, "link", linkID)
	return nil
}

// Reorder renumbers the links of owner/kind to follow order.
func (s *Service) Reorder(ctx context.Context, ownerID string, kind content.LinkKind, order []int64) error {
	slog.Debug("Reorder service called", "owner", ownerID, "kind", kind, "order", order)
	err := s.links.ReorderLinks(ctx, ownerID, kind, order)
	s.collector.ObserveWrite("reorder", kind, err)
	if err != nil {
		slog.Error("Reorder failed", "error", err, "owner", ownerID, "kind", kind)
		return err
	}
	slog.Info("Links reordered", "owner", ownerID, "kind", kind, "count", len(order))
	return nil
}

// Retarget points an existing link at another entity.
func (s *Service) Retarget(ctx context.Context, ownerID string, kind content.LinkKind, linkID int64, targetID string) error {
	slog.Debug("Retarget service called", "owner", ownerID, "kind", kind, "link", linkID, "target", targetID)
	err := s.links.RetargetLink(ctx, ownerID, kind, linkID, targetID)
	s.collector.ObserveWrite("retarget", kind, err)
	if err != nil {
		slog.Error("Retarget failed", "error", err, "owner", ownerID, "kind", kind, "link", linkID)
		return err
	}
	slog.Info("Link retargeted", "owner", ownerID, "kind", kind, "link", linkID, "target", targetID)
	return nil
}

// OwnersOf returns the entities owning a link of kind to target. liveOnly
// must be chosen by the caller: public pages pass true, admin views false.
func (s *Service) OwnersOf(ctx context.Context, targetID string, kind content.LinkKind, liveOnly bool) ([]*content.Entity, error) {
	slog.Debug("OwnersOf service called", "target", targetID, "kind", kind, "liveOnly", liveOnly)
	owners, err := s.links.OwnersOf(ctx, targetID, kind, liveOnly)
	if err != nil {
		slog.Error("OwnersOf failed", "error", err, "target", targetID, "kind", kind)
		return nil, err
	}
	slog.Debug("OwnersOf completed", "count", len(owners))
	return owners, nil
}

func (s *Service) report(ctx context.Context, source string, refs []content.DanglingReference) {
	if len(refs) == 0 {
		return
	}
	if s.reporter == nil {
		for _, ref := range refs {
			slog.Warn("Dangling link", "link", ref.LinkID, "owner", ref.OwnerID, "kind", ref.Kind)
		}
		return
	}
	s.reporter.Report(ctx, source, refs...)
}
