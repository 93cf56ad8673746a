package database

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"

	"github.com/contre95/monkeypress/src/content"
)

// itemTable describes a positioned child list of one entity kind.
type itemTable struct {
	name  string
	what  string
	owner content.Kind
}

var (
	trackItems = itemTable{name: "tracks", what: "track", owner: content.KindAlbum}
	dateItems  = itemTable{name: "tour_dates", what: "tour date", owner: content.KindTour}

	itemTables = []itemTable{trackItems, dateItems}
)

func (t itemTable) notFound(id int64) error {
	return &content.NotFoundError{What: t.what, ID: strconv.FormatInt(id, 10)}
}

func (t itemTable) checkOwner(ctx context.Context, q queryer, ownerID string) error {
	owner, err := getEntity(ctx, q, ownerID)
	if err != nil {
		return err
	}
	return content.CheckItemOwner(owner, t.owner, t.what+"s")
}

// position resolves the slot of a new item: max+1 when nil, otherwise an
// unused non-negative position.
func (t itemTable) position(ctx context.Context, q queryer, ownerID string, position *int) (int, error) {
	var pos int
	if position == nil {
		err := q.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0) FROM `+t.name+` WHERE owner_id = ?
		`, ownerID).Scan(&pos)
		return pos, err
	}

	pos = *position
	if pos < 0 {
		return 0, content.Invalid("position", "must not be negative, got %d", pos)
	}
	var taken int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM `+t.name+` WHERE owner_id = ? AND position = ?
	`, ownerID, pos).Scan(&taken)
	if err != nil {
		return 0, err
	}
	if taken > 0 {
		return 0, content.Invalid("position", "position %d is already taken", pos)
	}
	return pos, nil
}

func (t itemTable) ids(ctx context.Context, q queryer, ownerID string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM `+t.name+` WHERE owner_id = ? ORDER BY position, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// removeItem deletes one item of ownerID without renumbering its siblings.
func (d *SqliteStore) removeItem(ctx context.Context, t itemTable, ownerID string, id int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := t.checkOwner(ctx, tx, ownerID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return t.notFound(id)
	}
	return tx.Commit()
}

// reorderItems renumbers the items of ownerID 0..N-1 following order, in two
// phases so the unique (owner, position) index holds at every step.
func (d *SqliteStore) reorderItems(ctx context.Context, t itemTable, ownerID string, order []int64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := t.checkOwner(ctx, tx, ownerID); err != nil {
		return err
	}
	existing, err := t.ids(ctx, tx, ownerID)
	if err != nil {
		return err
	}
	if err := content.CheckPermutation(existing, order); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE `+t.name+` SET position = -position - 1 WHERE owner_id = ?`, ownerID); err != nil {
		return err
	}
	for i, id := range order {
		if _, err := tx.ExecContext(ctx, `UPDATE `+t.name+` SET position = ? WHERE id = ?`, i, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListTracks lists the track list of an album in position order.
func (d *SqliteStore) ListTracks(ctx context.Context, albumID string) ([]content.Track, error) {
	if err := trackItems.checkOwner(ctx, d.db, albumID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, owner_id, title, length, position
		FROM tracks
		WHERE owner_id = ?
		ORDER BY position, id
	`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []content.Track
	for rows.Next() {
		var t content.Track
		var length sql.NullString
		if err := rows.Scan(&t.ID, &t.AlbumID, &t.Title, &length, &t.Position); err != nil {
			return nil, err
		}
		t.Length = length.String
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// AddTrack appends (or inserts at an explicit free position) a track.
func (d *SqliteStore) AddTrack(ctx context.Context, albumID string, t *content.Track, position *int) (int64, error) {
	if err := t.Validate(); err != nil {
		slog.Error("AddTrack: validation failed", "error", err, "albumID", albumID)
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := trackItems.checkOwner(ctx, tx, albumID); err != nil {
		return 0, err
	}
	pos, err := trackItems.position(ctx, tx, albumID, position)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tracks (owner_id, title, length, position)
		VALUES (?, ?, ?, ?)
	`, albumID, t.Title, t.Length, pos)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	t.ID, t.AlbumID, t.Position = id, albumID, pos
	return id, nil
}

// RemoveTrack deletes a track without renumbering the rest of the album.
func (d *SqliteStore) RemoveTrack(ctx context.Context, albumID string, trackID int64) error {
	return d.removeItem(ctx, trackItems, albumID, trackID)
}

// ReorderTracks renumbers an album's tracks following order.
func (d *SqliteStore) ReorderTracks(ctx context.Context, albumID string, order []int64) error {
	return d.reorderItems(ctx, trackItems, albumID, order)
}

// ListTourDates lists the dates of a tour in position order.
func (d *SqliteStore) ListTourDates(ctx context.Context, tourID string) ([]content.TourDate, error) {
	if err := dateItems.checkOwner(ctx, d.db, tourID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, owner_id, date, venue, price, doors_open, city, country, position
		FROM tour_dates
		WHERE owner_id = ?
		ORDER BY position, id
	`, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []content.TourDate
	for rows.Next() {
		var td content.TourDate
		var date, doors, city, country sql.NullString
		var price sql.NullInt64
		if err := rows.Scan(&td.ID, &td.TourID, &date, &td.Venue, &price, &doors, &city, &country, &td.Position); err != nil {
			return nil, err
		}
		td.Date = parseNullTime(date)
		if price.Valid {
			p := int(price.Int64)
			td.Price = &p
		}
		td.DoorsOpen = doors.String
		td.City = city.String
		td.Country = country.String
		dates = append(dates, td)
	}
	return dates, rows.Err()
}

// AddTourDate appends (or inserts at an explicit free position) a tour date.
func (d *SqliteStore) AddTourDate(ctx context.Context, tourID string, td *content.TourDate, position *int) (int64, error) {
	if err := td.Validate(); err != nil {
		slog.Error("AddTourDate: validation failed", "error", err, "tourID", tourID)
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if err := dateItems.checkOwner(ctx, tx, tourID); err != nil {
		return 0, err
	}
	pos, err := dateItems.position(ctx, tx, tourID, position)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tour_dates (owner_id, date, venue, price, doors_open, city, country, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tourID, nullTime(td.Date), td.Venue, nullInt(td.Price), td.DoorsOpen, td.City, td.Country, pos)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	td.ID, td.TourID, td.Position = id, tourID, pos
	return id, nil
}

// RemoveTourDate deletes a tour date without renumbering the rest.
func (d *SqliteStore) RemoveTourDate(ctx context.Context, tourID string, dateID int64) error {
	return d.removeItem(ctx, dateItems, tourID, dateID)
}

// ReorderTourDates renumbers a tour's dates following order.
func (d *SqliteStore) ReorderTourDates(ctx context.Context, tourID string, order []int64) error {
	return d.reorderItems(ctx, dateItems, tourID, order)
}
