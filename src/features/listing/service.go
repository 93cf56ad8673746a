package listing

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/contre95/monkeypress/src/features/config"
	"github.com/contre95/monkeypress/src/features/metrics"
)

// Index is a public paginated listing of one kind of entity.
type Index struct {
	Name string
	Kind content.Kind
	// Filterable indexes accept the rating, artist_name and genre filters
	// and the sort_by key.
	Filterable bool
}

// Indexes are the public listings by name.
var Indexes = map[string]Index{
	"reviews":  {Name: "reviews", Kind: content.KindReview, Filterable: true},
	"news":     {Name: "news", Kind: content.KindNews},
	"features": {Name: "features", Kind: content.KindFeature},
	"tours":    {Name: "tours", Kind: content.KindTour},
	"artists":  {Name: "artists", Kind: content.KindArtist},
	"authors":  {Name: "authors", Kind: content.KindAuthor},
}

// Section is a group of related entities shown on a detail page. Reverse
// sections list the live owners linking to the entity instead of its own
// targets.
type Section struct {
	Name    string
	Kind    content.LinkKind
	Reverse bool
}

var detailSections = map[content.Kind][]Section{
	content.KindReview: {
		{Name: "albums", Kind: content.ReviewAlbum},
		{Name: "artists", Kind: content.ReviewArtist},
		{Name: "authors", Kind: content.ReviewAuthor},
		{Name: "related", Kind: content.RelatedPage},
	},
	content.KindNews: {
		{Name: "artists", Kind: content.NewsArtist},
		{Name: "albums", Kind: content.NewsAlbum},
		{Name: "authors", Kind: content.NewsAuthor},
		{Name: "related", Kind: content.RelatedPage},
	},
	content.KindFeature: {
		{Name: "artists", Kind: content.FeatureArtist},
		{Name: "authors", Kind: content.FeatureAuthor},
	},
	content.KindTour: {
		{Name: "artists", Kind: content.TourArtist},
		{Name: "albums", Kind: content.TourAlbum},
	},
	content.KindArtist: {
		{Name: "genres", Kind: content.ArtistGenre},
		{Name: "albums", Kind: content.ArtistAlbum},
		{Name: "discography", Kind: content.AlbumArtist, Reverse: true},
		{Name: "reviews", Kind: content.ReviewArtist, Reverse: true},
		{Name: "news", Kind: content.NewsArtist, Reverse: true},
		{Name: "features", Kind: content.FeatureArtist, Reverse: true},
		{Name: "tours", Kind: content.TourArtist, Reverse: true},
	},
	content.KindAlbum: {
		{Name: "artists", Kind: content.AlbumArtist},
		{Name: "genres", Kind: content.AlbumGenre},
		{Name: "subgenres", Kind: content.AlbumSubgenre},
		{Name: "reviews", Kind: content.ReviewAlbum, Reverse: true},
		{Name: "news", Kind: content.NewsAlbum, Reverse: true},
		{Name: "tours", Kind: content.TourAlbum, Reverse: true},
	},
	content.KindAuthor: {
		{Name: "reviews", Kind: content.ReviewAuthor, Reverse: true},
		{Name: "news", Kind: content.NewsAuthor, Reverse: true},
		{Name: "features", Kind: content.FeatureAuthor, Reverse: true},
	},
}

// Store is the part of the content repository the listings read.
type Store interface {
	ListEntities(ctx context.Context, kind content.Kind, liveOnly bool) ([]*content.Entity, error)
	GetEntityBySlug(ctx context.Context, kind content.Kind, slug string) (*content.Entity, error)
	ListTracks(ctx context.Context, albumID string) ([]content.Track, error)
	ListTourDates(ctx context.Context, tourID string) ([]content.TourDate, error)
}

// Service builds the public listings and detail pages.
type Service struct {
	store         Store
	relations     Relations
	pipeline      *Pipeline
	configManager *config.Manager
	collector     *metrics.Collector
}

// NewService creates a new listing service. collector may be nil.
func NewService(store Store, relations Relations, cfgManager *config.Manager, collector *metrics.Collector) *Service {
	return &Service{
		store:         store,
		relations:     relations,
		pipeline:      NewPipeline(relations),
		configManager: cfgManager,
		collector:     collector,
	}
}

// Result is one page of an index.
type Result struct {
	Index   string            `json:"index"`
	Items   []*content.Entity `json:"items"`
	Page    Page              `json:"pagination"`
	Filters map[string]string `json:"filters,omitempty"`
	Sort    string            `json:"sort_by,omitempty"`
}

// Detail is a published entity with its related entities by section name.
// Albums carry their track list and tours their dates, in position order.
type Detail struct {
	Entity  *content.Entity              `json:"entity"`
	Related map[string][]*content.Entity `json:"related"`
	Tracks  []content.Track              `json:"tracks,omitempty"`
	Dates   []content.TourDate           `json:"dates,omitempty"`
}

// Index returns the requested page of the named index. Filters and sort
// are only honoured by filterable indexes; the page is clamped, never
// rejected.
func (s *Service) Index(ctx context.Context, name string, q Query, page string) (*Result, error) {
	slog.Debug("Index service called", "index", name, "filters", q.Filters, "sort", q.Sort, "page", page)
	idx, ok := Indexes[name]
	if !ok {
		return nil, &content.NotFoundError{What: "index", ID: name}
	}
	defer s.collector.ObserveListing(name, time.Now())

	base, err := s.store.ListEntities(ctx, idx.Kind, true)
	if err != nil {
		slog.Error("Index failed", "error", err, "index", name)
		return nil, err
	}

	var items []*content.Entity
	switch {
	case idx.Kind.IsSnippet():
		items = slices.SortedFunc(slices.Values(base), byTitle)
	case idx.Filterable:
		items, err = s.pipeline.Query(ctx, base, q)
	default:
		items, err = s.pipeline.Query(ctx, base, Query{})
	}
	if err != nil {
		slog.Error("Index query failed", "error", err, "index", name)
		return nil, err
	}

	pageItems, p := Paginate(items, s.pageSize(name), page)
	result := &Result{Index: name, Items: pageItems, Page: p}
	if idx.Filterable {
		result.Filters = q.Filters
		result.Sort = q.Sort
	}
	slog.Debug("Index completed", "index", name, "total", p.TotalCount, "page", p.Number)
	return result, nil
}

func (s *Service) pageSize(name string) int {
	if s.configManager == nil {
		return 10
	}
	return s.configManager.Get().Listing.PageSize(name)
}

// Detail returns the published entity of kind with slug and its related
// entities. Unpublished entities are reported as not found.
func (s *Service) Detail(ctx context.Context, kind content.Kind, slug string) (*Detail, error) {
	slog.Debug("Detail service called", "kind", kind, "slug", slug)
	e, err := s.store.GetEntityBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}
	if !e.Live {
		return nil, &content.NotFoundError{What: string(kind), ID: slug}
	}

	d := &Detail{Entity: e, Related: make(map[string][]*content.Entity)}
	for _, section := range detailSections[kind] {
		var related []*content.Entity
		if section.Reverse {
			related, err = s.relations.OwnersOf(ctx, e.ID, section.Kind, true)
			if err == nil && len(related) > 0 && !related[0].Kind.IsSnippet() {
				slices.SortFunc(related, byDateDesc)
			}
		} else {
			related, err = s.relations.LiveTargets(ctx, e.ID, section.Kind)
		}
		if err != nil {
			slog.Error("Detail section failed", "error", err, "kind", kind, "slug", slug, "section", section.Name)
			return nil, err
		}
		d.Related[section.Name] = related
	}

	switch kind {
	case content.KindAlbum:
		d.Tracks, err = s.store.ListTracks(ctx, e.ID)
	case content.KindTour:
		d.Dates, err = s.store.ListTourDates(ctx, e.ID)
	}
	if err != nil {
		slog.Error("Detail items failed", "error", err, "kind", kind, "slug", slug)
		return nil, err
	}
	return d, nil
}
