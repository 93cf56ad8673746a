package fixtures

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demo string

// Fixture is one entity of a seed file. Links name their target by the
// key of an earlier fixture. Albums may list tracks and tours dates.
type Fixture struct {
	Key            string `yaml:"key"`
	content.Entity `yaml:",inline"`
	Links          []content.LinkDraft `yaml:"links"`
	Tracks         []content.Track     `yaml:"tracks"`
	Dates          []content.TourDate  `yaml:"dates"`
}

// Creator stores a new entity with its initial links.
type Creator interface {
	Create(ctx context.Context, e *content.Entity, drafts []content.LinkDraft) error
}

// ItemAdder appends track lists and tour dates.
type ItemAdder interface {
	AddTrack(ctx context.Context, albumID string, t content.Track, position *int) (int64, error)
	AddDate(ctx context.Context, tourID string, d content.TourDate, position *int) (int64, error)
}

// Counter reports how many entities of each kind exist.
type Counter interface {
	CountEntities(ctx context.Context) (map[content.Kind]int, error)
}

// Parse decodes a seed file. Keys must be unique and non empty.
func Parse(r io.Reader) ([]Fixture, error) {
	var fixtures []Fixture
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	seen := make(map[string]bool, len(fixtures))
	for i, f := range fixtures {
		if f.Key == "" {
			return nil, content.Invalid("key", "fixture %d has no key", i)
		}
		if seen[f.Key] {
			return nil, content.Invalid("key", "duplicate fixture key %q", f.Key)
		}
		seen[f.Key] = true
	}
	return fixtures, nil
}

// Demo returns the bundled demo catalog.
func Demo() ([]Fixture, error) {
	return Parse(strings.NewReader(demo))
}

// Seed creates fixtures in order through creator, resolving link targets
// by key, then appends their tracks and dates through items. It does
// nothing when the store already holds entities and returns the number of
// entities created.
func Seed(ctx context.Context, counter Counter, creator Creator, items ItemAdder, fixtures []Fixture) (int, error) {
	counts, err := counter.CountEntities(ctx)
	if err != nil {
		return 0, err
	}
	for kind, n := range counts {
		if n > 0 {
			slog.Debug("Skipping fixtures, store is not empty", "kind", kind, "count", n)
			return 0, nil
		}
	}

	ids := make(map[string]string, len(fixtures))
	now := time.Now().UTC()
	for _, f := range fixtures {
		e := f.Entity
		if e.PublishedAt.IsZero() {
			e.PublishedAt = now
		}
		drafts := make([]content.LinkDraft, 0, len(f.Links))
		for _, l := range f.Links {
			id, ok := ids[l.TargetID]
			if !ok {
				return len(ids), content.Invalid(string(l.Kind), "fixture %q links to unknown key %q", f.Key, l.TargetID)
			}
			drafts = append(drafts, content.LinkDraft{Kind: l.Kind, TargetID: id})
		}
		if err := creator.Create(ctx, &e, drafts); err != nil {
			return len(ids), fmt.Errorf("fixture %q: %w", f.Key, err)
		}
		ids[f.Key] = e.ID

		for _, t := range f.Tracks {
			if _, err := items.AddTrack(ctx, e.ID, t, nil); err != nil {
				return len(ids), fmt.Errorf("fixture %q track %q: %w", f.Key, t.Title, err)
			}
		}
		for _, d := range f.Dates {
			if _, err := items.AddDate(ctx, e.ID, d, nil); err != nil {
				return len(ids), fmt.Errorf("fixture %q date at %q: %w", f.Key, d.Venue, err)
			}
		}
	}
	slog.Info("Seeded fixtures", "count", len(ids))
	return len(ids), nil
}
