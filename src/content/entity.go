package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/unidecode"
)

// Kind identifies the type of a content entity.
type Kind string

const (
	KindArtist   Kind = "artist"
	KindAlbum    Kind = "album"
	KindGenre    Kind = "genre"
	KindSubgenre Kind = "subgenre"
	KindAuthor   Kind = "author"
	KindReview   Kind = "review"
	KindNews     Kind = "news"
	KindFeature  Kind = "feature"
	KindTour     Kind = "tour"
)

// Kinds lists every entity kind in display order.
var Kinds = []Kind{
	KindArtist, KindAlbum, KindGenre, KindSubgenre, KindAuthor,
	KindReview, KindNews, KindFeature, KindTour,
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsSnippet reports whether k is a reusable snippet rather than a page.
// Snippets have no publication workflow and are always live.
func (k Kind) IsSnippet() bool {
	switch k {
	case KindArtist, KindAlbum, KindGenre, KindSubgenre, KindAuthor:
		return true
	}
	return false
}

// Entity is any content item managed by editors.
type Entity struct {
	ID                  string            `json:"id" yaml:"id,omitempty"`
	Kind                Kind              `json:"kind" yaml:"kind" validate:"required"`
	Title               string            `json:"title" yaml:"title" validate:"required,max=254"`
	Slug                string            `json:"slug" yaml:"slug,omitempty" validate:"omitempty,max=255"`
	Live                bool              `json:"live" yaml:"live"`
	PublishedAt         time.Time         `json:"published_at" yaml:"published_at,omitempty"`
	ReleaseDate         *time.Time        `json:"release_date,omitempty" yaml:"release_date,omitempty"`
	DateFormed          *time.Time        `json:"date_formed,omitempty" yaml:"date_formed,omitempty"`
	Rating              *int              `json:"rating,omitempty" yaml:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Introduction        string            `json:"introduction,omitempty" yaml:"introduction,omitempty" validate:"max=500"`
	ListingIntroduction string            `json:"listing_introduction,omitempty" yaml:"listing_introduction,omitempty" validate:"max=250"`
	Biography           string            `json:"biography,omitempty" yaml:"biography,omitempty"`
	ExternalURL         string            `json:"external_url,omitempty" yaml:"external_url,omitempty" validate:"omitempty,url"`
	ImageURL            string            `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	CreatedAt           time.Time         `json:"created_at" yaml:"-"`
	ModifiedAt          time.Time         `json:"modified_at" yaml:"-"`
}

var validate = validator.New()

// NewEntity returns an entity of the given kind with a fresh id and a slug
// derived from its title. Snippets start live.
func NewEntity(kind Kind, title string) *Entity {
	now := time.Now().UTC()
	return &Entity{
		ID:          uuid.New().String(),
		Kind:        kind,
		Title:       title,
		Slug:        Slugify(title),
		Live:        kind.IsSnippet(),
		PublishedAt: now,
		Attributes:  make(map[string]string),
		CreatedAt:   now,
		ModifiedAt:  now,
	}
}

// Validate checks the entity fields. Out of range values are rejected,
// never clamped.
func (e *Entity) Validate() error {
	if !e.Kind.Valid() {
		return &ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown entity kind %q", e.Kind)}
	}
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Msg: "title cannot be empty"}
	}
	if err := validate.Struct(e); err != nil {
		return structError(err)
	}
	if e.Rating != nil && e.Kind != KindReview {
		return &ValidationError{Field: "rating", Msg: fmt.Sprintf("%s entities do not carry a rating", e.Kind)}
	}
	if e.Kind.IsSnippet() && !e.Live {
		return &ValidationError{Field: "live", Msg: fmt.Sprintf("%s entities cannot be unpublished", e.Kind)}
	}
	return nil
}

// structError turns the first validator field error into a ValidationError.
func structError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field: strings.ToLower(fe.Field()),
			Msg:   fmt.Sprintf("%s failed on %q (value %v)", fe.Field(), fe.Tag(), fe.Value()),
		}
	}
	return &ValidationError{Msg: err.Error()}
}

// Image returns the entity image and whether one is set.
func (e *Entity) Image() (string, bool) {
	if e == nil || strings.TrimSpace(e.ImageURL) == "" {
		return "", false
	}
	return e.ImageURL, true
}

// Listing returns the text used on index pages, falling back to the
// introduction when no listing text was written.
func (e *Entity) Listing() string {
	if e.ListingIntroduction != "" {
		return e.ListingIntroduction
	}
	return e.Introduction
}

// DecadeFormed returns a label such as "1980's" for artists with a known
// formation date.
func (e *Entity) DecadeFormed() (string, bool) {
	if e.DateFormed == nil || e.DateFormed.IsZero() {
		return "", false
	}
	return fmt.Sprintf("%d's", e.DateFormed.Year()/10*10), true
}

// RatingValue returns the rating or -1 when the entity is unrated.
func (e *Entity) RatingValue() int {
	if e.Rating == nil {
		return -1
	}
	return *e.Rating
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into an ASCII, lowercase, dash separated slug.
func Slugify(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
