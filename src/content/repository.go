package content

import (
	"context"
)

// Entities is the repository for content entities.
type Entities interface {
	// AddEntity stores e together with its initial links in one transaction.
	AddEntity(ctx context.Context, e *Entity, links []LinkDraft) error
	UpdateEntity(ctx context.Context, e *Entity) error
	// DeleteEntity removes e and its own links, applies each link kind's
	// delete policy to links targeting it, and returns the links left
	// dangling.
	DeleteEntity(ctx context.Context, id string) ([]DanglingReference, error)
	GetEntity(ctx context.Context, id string) (*Entity, error)
	GetEntityBySlug(ctx context.Context, kind Kind, slug string) (*Entity, error)
	ListEntities(ctx context.Context, kind Kind, liveOnly bool) ([]*Entity, error)
	CountEntities(ctx context.Context) (map[Kind]int, error)
}

// LinkStore is the repository for relationship links. Every write runs in a
// single transaction and validates cardinality inside it.
type LinkStore interface {
	// ListLinks returns the links of owner/kind in ascending position,
	// ties broken by link id, with targets resolved.
	ListLinks(ctx context.Context, ownerID string, kind LinkKind) ([]Linked, error)
	AddLink(ctx context.Context, ownerID string, kind LinkKind, targetID string, position *int) (int64, error)
	RemoveLink(ctx context.Context, ownerID string, kind LinkKind, linkID int64) error
	ReorderLinks(ctx context.Context, ownerID string, kind LinkKind, order []int64) error
	RetargetLink(ctx context.Context, ownerID string, kind LinkKind, linkID int64, targetID string) error
	// OwnersOf scans links of kind pointing at targetID and returns the
	// distinct owners ordered by title then id.
	OwnersOf(ctx context.Context, targetID string, kind LinkKind, liveOnly bool) ([]*Entity, error)
	DanglingLinks(ctx context.Context) ([]DanglingReference, error)
}

// ItemStore keeps the positioned child records of albums and tours. Items
// follow the link position rules: appends take max+1, explicit positions
// must be free, removals never renumber and reorders take a permutation.
type ItemStore interface {
	ListTracks(ctx context.Context, albumID string) ([]Track, error)
	AddTrack(ctx context.Context, albumID string, t *Track, position *int) (int64, error)
	RemoveTrack(ctx context.Context, albumID string, trackID int64) error
	ReorderTracks(ctx context.Context, albumID string, order []int64) error

	ListTourDates(ctx context.Context, tourID string) ([]TourDate, error)
	AddTourDate(ctx context.Context, tourID string, d *TourDate, position *int) (int64, error)
	RemoveTourDate(ctx context.Context, tourID string, dateID int64) error
	ReorderTourDates(ctx context.Context, tourID string, order []int64) error
}

// Repository is the full persistence port of the content domain.
type Repository interface {
	Entities
	LinkStore
}

// DanglingReporter receives dangling links found while rendering or
// produced by a delete, for editorial cleanup.
type DanglingReporter interface {
	Report(ctx context.Context, source string, refs ...DanglingReference)
}
