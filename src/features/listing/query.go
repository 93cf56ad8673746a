package listing

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/contre95/monkeypress/src/content"
)

// Filter keys read from the query string.
const (
	FilterRating     = "rating"
	FilterArtistName = "artist_name"
	FilterGenre      = "genre"
)

// Sort keys accepted in sort_by. Anything else sorts by date.
const (
	SortRatingDesc = "rating-desc"
	SortRatingAsc  = "rating-asc"
	SortDateDesc   = ""
)

// Query is a set of optional filters and a sort key. Empty filter values
// and unknown keys are ignored.
type Query struct {
	Filters map[string]string
	Sort    string
}

// Relations resolves the links a listing reads.
type Relations interface {
	Targets(ctx context.Context, ownerID string, kind content.LinkKind) ([]*content.Entity, error)
	LiveTargets(ctx context.Context, ownerID string, kind content.LinkKind) ([]*content.Entity, error)
	OwnersOf(ctx context.Context, targetID string, kind content.LinkKind, liveOnly bool) ([]*content.Entity, error)
}

// Pipeline filters and sorts entity sets by following their links.
type Pipeline struct {
	relations Relations
}

// NewPipeline creates a new pipeline.
func NewPipeline(relations Relations) *Pipeline {
	return &Pipeline{relations: relations}
}

type predicate func(ctx context.Context, e *content.Entity) (bool, error)

// Query returns the entities of base that pass every filter of q, ordered
// by q.Sort. base is not modified.
func (p *Pipeline) Query(ctx context.Context, base []*content.Entity, q Query) ([]*content.Entity, error) {
	preds := p.predicates(q.Filters)

	out := make([]*content.Entity, 0, len(base))
	for _, e := range base {
		keep := true
		for _, pred := range preds {
			ok, err := pred(ctx, e)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}

	slices.SortFunc(out, comparator(q.Sort))
	return out, nil
}

func (p *Pipeline) predicates(filters map[string]string) []predicate {
	var preds []predicate
	if v := strings.TrimSpace(filters[FilterRating]); v != "" {
		if minRating, err := strconv.Atoi(v); err == nil {
			preds = append(preds, func(_ context.Context, e *content.Entity) (bool, error) {
				return e.Rating != nil && *e.Rating >= minRating, nil
			})
		}
	}
	if v := strings.TrimSpace(filters[FilterArtistName]); v != "" {
		prefix := strings.ToLower(v)
		preds = append(preds, func(ctx context.Context, e *content.Entity) (bool, error) {
			artists, err := p.albumTargets(ctx, e, content.AlbumArtist)
			if err != nil {
				return false, err
			}
			return slices.ContainsFunc(artists, func(a *content.Entity) bool {
				return strings.HasPrefix(strings.ToLower(a.Title), prefix)
			}), nil
		})
	}
	if v := strings.TrimSpace(filters[FilterGenre]); v != "" {
		preds = append(preds, func(ctx context.Context, e *content.Entity) (bool, error) {
			genres, err := p.albumTargets(ctx, e, content.AlbumGenre)
			if err != nil {
				return false, err
			}
			return slices.ContainsFunc(genres, func(g *content.Entity) bool {
				return g.Slug == v
			}), nil
		})
	}
	return preds
}

// albumTargets collects the kind targets of every album the review links
// to, without duplicates.
func (p *Pipeline) albumTargets(ctx context.Context, review *content.Entity, kind content.LinkKind) ([]*content.Entity, error) {
	albums, err := p.relations.Targets(ctx, review.ID, content.ReviewAlbum)
	if err != nil {
		return nil, err
	}
	var out []*content.Entity
	seen := make(map[string]bool)
	for _, album := range albums {
		targets, err := p.relations.Targets(ctx, album.ID, kind)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func byDateDesc(a, b *content.Entity) int {
	if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func comparator(sortBy string) func(a, b *content.Entity) int {
	switch sortBy {
	case SortRatingDesc:
		return func(a, b *content.Entity) int {
			if c := cmp.Compare(b.RatingValue(), a.RatingValue()); c != 0 {
				return c
			}
			return byDateDesc(a, b)
		}
	case SortRatingAsc:
		return func(a, b *content.Entity) int {
			if c := cmp.Compare(a.RatingValue(), b.RatingValue()); c != 0 {
				return c
			}
			return byDateDesc(a, b)
		}
	default:
		return byDateDesc
	}
}

// byTitle orders snippets the way the admin lists them.
func byTitle(a, b *content.Entity) int {
	if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
