package entities

import (
	"context"
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
)

// Service is the domain service for editing entities.
type Service struct {
	store    content.Entities
	reporter content.DanglingReporter
}

// NewService creates a new entities service. reporter may be nil.
func NewService(store content.Entities, reporter content.DanglingReporter) *Service {
	return &Service{
		store:    store,
		reporter: reporter,
	}
}

// Create stores a new entity with its initial links. Nothing is written
// unless the entity and every link are valid.
func (s *Service) Create(ctx context.Context, e *content.Entity, drafts []content.LinkDraft) error {
	slog.Debug("Create service called", "kind", e.Kind, "title", e.Title, "links", len(drafts))
	if e.Kind.IsSnippet() {
		e.Live = true
	}
	if err := s.store.AddEntity(ctx, e, drafts); err != nil {
		slog.Error("Create failed", "error", err, "kind", e.Kind, "title", e.Title)
		return err
	}
	slog.Info("Entity created", "kind", e.Kind, "id", e.ID, "slug", e.Slug)
	return nil
}

// Update saves the fields of an existing entity. Links are edited through
// the relations feature.
func (s *Service) Update(ctx context.Context, e *content.Entity) error {
	slog.Debug("Update service called", "id", e.ID)
	if e.Kind.IsSnippet() {
		e.Live = true
	}
	if err := s.store.UpdateEntity(ctx, e); err != nil {
		slog.Error("Update failed", "error", err, "id", e.ID)
		return err
	}
	slog.Info("Entity updated", "kind", e.Kind, "id", e.ID)
	return nil
}

// Delete removes an entity and returns the links its deletion left
// dangling, which are also handed to the reporter.
func (s *Service) Delete(ctx context.Context, id string) ([]content.DanglingReference, error) {
	slog.Debug("Delete service called", "id", id)
	refs, err := s.store.DeleteEntity(ctx, id)
	if err != nil {
		slog.Error("Delete failed", "error", err, "id", id)
		return nil, err
	}
	if len(refs) > 0 && s.reporter != nil {
		s.reporter.Report(ctx, "delete", refs...)
	}
	slog.Info("Entity deleted", "id", id, "dangling", len(refs))
	return refs, nil
}

// Get returns an entity by id.
func (s *Service) Get(ctx context.Context, id string) (*content.Entity, error) {
	slog.Debug("Get service called", "id", id)
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		slog.Error("Get failed", "error", err, "id", id)
		return nil, err
	}
	return e, nil
}

// GetBySlug returns the entity of kind with slug.
func (s *Service) GetBySlug(ctx context.Context, kind content.Kind, slug string) (*content.Entity, error) {
	slog.Debug("GetBySlug service called", "kind", kind, "slug", slug)
	e, err := s.store.GetEntityBySlug(ctx, kind, slug)
	if err != nil {
		slog.Error("GetBySlug failed", "error", err, "kind", kind, "slug", slug)
		return nil, err
	}
	return e, nil
}

// List returns the entities of kind ordered by title, drafts included.
func (s *Service) List(ctx context.Context, kind content.Kind) ([]*content.Entity, error) {
	slog.Debug("List service called", "kind", kind)
	if !kind.Valid() {
		return nil, content.Invalid("kind", "unknown kind %q", kind)
	}
	list, err := s.store.ListEntities(ctx, kind, false)
	if err != nil {
		slog.Error("List failed", "error", err, "kind", kind)
		return nil, err
	}
	slog.Debug("List completed", "count", len(list))
	return list, nil
}
