// Package catalog manages the positioned child lists of catalog entities:
// album track lists and tour dates.
package catalog

import (
	"context"
	"log/slog"

	"github.com/contre95/monkeypress/src/content"
)

// Service manages album track lists and tour dates.
type Service struct {
	items content.ItemStore
}

// NewService creates a new catalog service.
func NewService(items content.ItemStore) *Service {
	return &Service{items: items}
}

// Tracks returns the track list of an album in order.
func (s *Service) Tracks(ctx context.Context, albumID string) ([]content.Track, error) {
	slog.Debug("Tracks service called", "album", albumID)
	tracks, err := s.items.ListTracks(ctx, albumID)
	if err != nil {
		slog.Error("Tracks failed", "error", err, "album", albumID)
		return nil, err
	}
	return tracks, nil
}

// AddTrack adds a track to an album. A nil position appends it.
func (s *Service) AddTrack(ctx context.Context, albumID string, t content.Track, position *int) (int64, error) {
	slog.Debug("AddTrack service called", "album", albumID, "title", t.Title)
	id, err := s.items.AddTrack(ctx, albumID, &t, position)
	if err != nil {
		slog.Error("AddTrack failed", "error", err, "album", albumID)
		return 0, err
	}
	slog.Info("Track added", "album", albumID, "track", id)
	return id, nil
}

// RemoveTrack deletes a track. The other tracks keep their positions.
func (s *Service) RemoveTrack(ctx context.Context, albumID string, trackID int64) error {
	slog.Debug("RemoveTrack service called", "album", albumID, "track", trackID)
	if err := s.items.RemoveTrack(ctx, albumID, trackID); err != nil {
		slog.Error("RemoveTrack failed", "error", err, "album", albumID, "track", trackID)
		return err
	}
	slog.Info("Track removed", "album", albumID, "track", trackID)
	return nil
}

// ReorderTracks renumbers an album's tracks to follow order.
func (s *Service) ReorderTracks(ctx context.Context, albumID string, order []int64) error {
	slog.Debug("ReorderTracks service called", "album", albumID, "order", order)
	if err := s.items.ReorderTracks(ctx, albumID, order); err != nil {
		slog.Error("ReorderTracks failed", "error", err, "album", albumID)
		return err
	}
	slog.Info("Tracks reordered", "album", albumID, "count", len(order))
	return nil
}

// Dates returns the dates of a tour in order.
func (s *Service) Dates(ctx context.Context, tourID string) ([]content.TourDate, error) {
	slog.Debug("Dates service called", "tour", tourID)
	dates, err := s.items.ListTourDates(ctx, tourID)
	if err != nil {
		slog.Error("Dates failed", "error", err, "tour", tourID)
		return nil, err
	}
	return dates, nil
}

// AddDate adds a date to a tour. A nil position appends it.
func (s *Service) AddDate(ctx context.Context, tourID string, d content.TourDate, position *int) (int64, error) {
	slog.Debug("AddDate service called", "tour", tourID, "venue", d.Venue)
	id, err := s.items.AddTourDate(ctx, tourID, &d, position)
	if err != nil {
		slog.Error("AddDate failed", "error", err, "tour", tourID)
		return 0, err
	}
	slog.Info("Tour date added", "tour", tourID, "date", id)
	return id, nil
}

// RemoveDate deletes a tour date. The other dates keep their positions.
func (s *Service) RemoveDate(ctx context.Context, tourID string, dateID int64) error {
	slog.Debug("RemoveDate service called", "tour", tourID, "date", dateID)
	if err := s.items.RemoveTourDate(ctx, tourID, dateID); err != nil {
		slog.Error("RemoveDate failed", "error", err, "tour", tourID, "date", dateID)
		return err
	}
	slog.Info("Tour date removed", "tour", tourID, "date", dateID)
	return nil
}

// ReorderDates renumbers a tour's dates to follow order.
func (s *Service) ReorderDates(ctx context.Context, tourID string, order []int64) error {
	slog.Debug("ReorderDates service called", "tour", tourID, "order", order)
	if err := s.items.ReorderTourDates(ctx, tourID, order); err != nil {
		slog.Error("ReorderDates failed", "error", err, "tour", tourID)
		return err
	}
	slog.Info("Tour dates reordered", "tour", tourID, "count", len(order))
	return nil
}
