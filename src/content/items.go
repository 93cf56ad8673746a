package content

import (
	"fmt"
	"strings"
	"time"
)

// Track is one song on an album's track list.
type Track struct {
	ID       int64  `json:"id" yaml:"-"`
	AlbumID  string `json:"album_id" yaml:"-"`
	Title    string `json:"title" yaml:"title" validate:"required,max=255"`
	Length   string `json:"length,omitempty" yaml:"length,omitempty" validate:"omitempty,datetime=4:05"`
	Position int    `json:"position" yaml:"-"`
}

// Validate checks the track fields.
func (t *Track) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	t.Length = strings.TrimSpace(t.Length)
	if err := validate.Struct(t); err != nil {
		return structError(err)
	}
	return nil
}

// TourDate is one show of a tour.
type TourDate struct {
	ID        int64      `json:"id" yaml:"-"`
	TourID    string     `json:"tour_id" yaml:"-"`
	Date      *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Venue     string     `json:"venue" yaml:"venue" validate:"required,max=255"`
	Price     *int       `json:"price,omitempty" yaml:"price,omitempty" validate:"omitempty,min=0"`
	DoorsOpen string     `json:"doors_open,omitempty" yaml:"doors_open,omitempty" validate:"omitempty,datetime=15:04"`
	City      string     `json:"city,omitempty" yaml:"city,omitempty" validate:"max=255"`
	Country   string     `json:"country,omitempty" yaml:"country,omitempty" validate:"max=255"`
	Position  int        `json:"position" yaml:"-"`
}

// Validate checks the tour date fields.
func (d *TourDate) Validate() error {
	d.Venue = strings.TrimSpace(d.Venue)
	d.City = strings.TrimSpace(d.City)
	d.Country = strings.TrimSpace(d.Country)
	d.DoorsOpen = strings.TrimSpace(d.DoorsOpen)
	if err := validate.Struct(d); err != nil {
		return structError(err)
	}
	return nil
}

// Place joins city and country for display, skipping whichever is empty.
func (d TourDate) Place() string {
	switch {
	case d.City == "":
		return d.Country
	case d.Country == "":
		return d.City
	}
	return fmt.Sprintf("%s, %s", d.City, d.Country)
}

// CheckItemOwner rejects item lists on entities of the wrong kind: tracks
// belong to albums and dates to tours.
func CheckItemOwner(owner *Entity, want Kind, what string) error {
	if owner.Kind != want {
		return Invalid("owner", "%s entities cannot own %s, only %s entities can", owner.Kind, what, want)
	}
	return nil
}
