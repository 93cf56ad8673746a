package content

import (
	"slices"
)

// LinkKind tags which semantic relationship a link represents.
type LinkKind string

const (
	AlbumArtist   LinkKind = "album-artist"
	AlbumGenre    LinkKind = "album-genre"
	AlbumSubgenre LinkKind = "album-subgenre"
	ArtistAlbum   LinkKind = "artist-album"
	ArtistGenre   LinkKind = "artist-genre"
	FeatureArtist LinkKind = "feature-artist"
	FeatureAuthor LinkKind = "feature-author"
	NewsArtist    LinkKind = "news-artist"
	NewsAlbum     LinkKind = "news-album"
	NewsAuthor    LinkKind = "news-author"
	ReviewArtist  LinkKind = "review-artist"
	ReviewAlbum   LinkKind = "review-album"
	ReviewAuthor  LinkKind = "review-author"
	TourArtist    LinkKind = "tour-artist"
	TourAlbum     LinkKind = "tour-album"
	RelatedPage   LinkKind = "related-page"
)

const unboundedLinks = 0

// DeletePolicy decides what happens to a link when its target is deleted.
type DeletePolicy string

const (
	// Cascade removes the link together with the target.
	Cascade DeletePolicy = "cascade"
	// SetNull keeps the link with a null target so editors can repair it.
	SetNull DeletePolicy = "set-null"
)

// LinkSpec declares the owner and target kinds, cardinality and delete
// policy of a link kind. Max 0 means unbounded.
type LinkSpec struct {
	Kind     LinkKind
	Owners   []Kind
	Targets  []Kind
	Min      int
	Max      int
	OnDelete DeletePolicy
}

// AllowsOwner reports whether entities of kind k may own links of this kind.
func (s LinkSpec) AllowsOwner(k Kind) bool { return slices.Contains(s.Owners, k) }

// AllowsTarget reports whether entities of kind k may be targeted.
func (s LinkSpec) AllowsTarget(k Kind) bool { return slices.Contains(s.Targets, k) }

// Bounded reports whether the kind has a maximum cardinality.
func (s LinkSpec) Bounded() bool { return s.Max != unboundedLinks }

// CheckAdd validates adding one link to an owner that currently has
// count links of this kind.
func (s LinkSpec) CheckAdd(count int) error {
	if s.Bounded() && count+1 > s.Max {
		return Invalid(string(s.Kind), "at most %d allowed, already has %d", s.Max, count)
	}
	return nil
}

// CheckRemove validates removing one link from an owner that currently has
// count links of this kind.
func (s LinkSpec) CheckRemove(count int) error {
	if count-1 < s.Min {
		return Invalid(string(s.Kind), "at least %d required, removing would leave %d", s.Min, count-1)
	}
	return nil
}

// CheckCount validates a complete set of links, as submitted when an owner
// is created.
func (s LinkSpec) CheckCount(count int) error {
	if count < s.Min {
		return Invalid(string(s.Kind), "at least %d required, got %d", s.Min, count)
	}
	if s.Bounded() && count > s.Max {
		return Invalid(string(s.Kind), "at most %d allowed, got %d", s.Max, count)
	}
	return nil
}

// Registry holds every known link kind.
type Registry struct {
	specs    []LinkSpec
	byKind   map[LinkKind]LinkSpec
	byOwner  map[Kind][]LinkSpec
	byTarget map[Kind][]LinkSpec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		specs:    []LinkSpec{},
		byKind:   make(map[LinkKind]LinkSpec),
		byOwner:  make(map[Kind][]LinkSpec),
		byTarget: make(map[Kind][]LinkSpec),
	}
}

// Register adds a link kind to the registry.
func (r *Registry) Register(spec LinkSpec) {
	r.specs = append(r.specs, spec)
	r.byKind[spec.Kind] = spec
	for _, owner := range spec.Owners {
		r.byOwner[owner] = append(r.byOwner[owner], spec)
	}
	for _, target := range spec.Targets {
		r.byTarget[target] = append(r.byTarget[target], spec)
	}
}

// Spec returns the definition of a link kind.
func (r *Registry) Spec(kind LinkKind) (LinkSpec, error) {
	spec, ok := r.byKind[kind]
	if !ok {
		return LinkSpec{}, Invalid("kind", "unknown link kind %q", kind)
	}
	return spec, nil
}

// OwnedBy returns the link kinds an entity kind may own.
func (r *Registry) OwnedBy(k Kind) []LinkSpec { return r.byOwner[k] }

// Targeting returns the link kinds that may point at an entity kind.
func (r *Registry) Targeting(k Kind) []LinkSpec { return r.byTarget[k] }

// All returns every registered link kind.
func (r *Registry) All() []LinkSpec { return r.specs }

// Links is the registry of the site's relationship kinds.
var Links = NewRegistry()

func init() {
	pages := []Kind{KindReview, KindNews, KindFeature, KindTour}
	for _, spec := range []LinkSpec{
		{Kind: AlbumArtist, Owners: []Kind{KindAlbum}, Targets: []Kind{KindArtist}, Min: 1, OnDelete: SetNull},
		{Kind: AlbumGenre, Owners: []Kind{KindAlbum}, Targets: []Kind{KindGenre}, Min: 1, Max: 1, OnDelete: SetNull},
		{Kind: AlbumSubgenre, Owners: []Kind{KindAlbum}, Targets: []Kind{KindSubgenre}, Min: 1, OnDelete: SetNull},
		{Kind: ArtistAlbum, Owners: []Kind{KindArtist}, Targets: []Kind{KindAlbum}, OnDelete: Cascade},
		{Kind: ArtistGenre, Owners: []Kind{KindArtist}, Targets: []Kind{KindGenre}, Min: 1, Max: 1, OnDelete: SetNull},
		{Kind: FeatureArtist, Owners: []Kind{KindFeature}, Targets: []Kind{KindArtist}, OnDelete: Cascade},
		{Kind: FeatureAuthor, Owners: []Kind{KindFeature}, Targets: []Kind{KindAuthor}, OnDelete: Cascade},
		{Kind: NewsArtist, Owners: []Kind{KindNews}, Targets: []Kind{KindArtist}, Min: 1, OnDelete: SetNull},
		{Kind: NewsAlbum, Owners: []Kind{KindNews}, Targets: []Kind{KindAlbum}, OnDelete: Cascade},
		{Kind: NewsAuthor, Owners: []Kind{KindNews}, Targets: []Kind{KindAuthor}, OnDelete: Cascade},
		{Kind: ReviewArtist, Owners: []Kind{KindReview}, Targets: []Kind{KindArtist}, Min: 1, OnDelete: SetNull},
		{Kind: ReviewAlbum, Owners: []Kind{KindReview}, Targets: []Kind{KindAlbum}, Min: 1, Max: 1, OnDelete: SetNull},
		{Kind: ReviewAuthor, Owners: []Kind{KindReview}, Targets: []Kind{KindAuthor}, Min: 1, OnDelete: SetNull},
		{Kind: TourArtist, Owners: []Kind{KindTour}, Targets: []Kind{KindArtist}, Min: 1, OnDelete: SetNull},
		{Kind: TourAlbum, Owners: []Kind{KindTour}, Targets: []Kind{KindAlbum}, OnDelete: Cascade},
		{Kind: RelatedPage, Owners: []Kind{KindReview, KindNews}, Targets: pages, OnDelete: SetNull},
	} {
		Links.Register(spec)
	}
}
