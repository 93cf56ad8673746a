package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contre95/monkeypress/src/content"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore is a SQLite implementation of content.Repository.
type SqliteStore struct {
	db    *sql.DB
	links *content.Registry
}

// NewSqliteStore opens (or creates) the database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db, links: content.Links}, nil
}

// Close closes the underlying database.
func (d *SqliteStore) Close() error {
	return d.db.Close()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			live BOOLEAN NOT NULL DEFAULT FALSE,
			published_at TEXT,
			release_date TEXT,
			date_formed TEXT,
			rating INTEGER,
			introduction TEXT,
			listing_introduction TEXT,
			biography TEXT,
			external_url TEXT,
			image_url TEXT,
			added_date TEXT,
			modified_date TEXT,
			UNIQUE(kind, slug)
		);

		CREATE TABLE IF NOT EXISTS entity_attributes (
			id INTEGER PRIMARY KEY,
			entity_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT,
			UNIQUE(entity_id, key) ON CONFLICT REPLACE,
			FOREIGN KEY (entity_id) REFERENCES entities(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			target_id TEXT,
			position INTEGER NOT NULL,
			UNIQUE(owner_id, kind, position),
			FOREIGN KEY (owner_id) REFERENCES entities(id) ON DELETE CASCADE,
			FOREIGN KEY (target_id) REFERENCES entities(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			length TEXT,
			position INTEGER NOT NULL,
			UNIQUE(owner_id, position),
			FOREIGN KEY (owner_id) REFERENCES entities(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS tour_dates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id TEXT NOT NULL,
			date TEXT,
			venue TEXT NOT NULL,
			price INTEGER,
			doors_open TEXT,
			city TEXT,
			country TEXT,
			position INTEGER NOT NULL,
			UNIQUE(owner_id, position),
			FOREIGN KEY (owner_id) REFERENCES entities(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
		CREATE INDEX IF NOT EXISTS idx_entity_attributes_entity ON entity_attributes(entity_id);
		CREATE INDEX IF NOT EXISTS idx_links_owner ON links(owner_id, kind);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id, kind);
	`)
	return err
}

const entityColumns = `id, kind, title, slug, live, published_at, release_date, date_formed, rating,
	introduction, listing_introduction, biography, external_url, image_url, added_date, modified_date`

// queryer is satisfied by both *sql.DB and *sql.Tx so lookups can run inside
// or outside a write transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullInt(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}

func scanEntity(row scanner) (*content.Entity, error) {
	e := &content.Entity{}
	var kind string
	var published, release, formed, added, modified sql.NullString
	var rating sql.NullInt64
	var intro, listing, bio, external, image sql.NullString

	err := row.Scan(&e.ID, &kind, &e.Title, &e.Slug, &e.Live, &published, &release, &formed, &rating,
		&intro, &listing, &bio, &external, &image, &added, &modified)
	if err != nil {
		return nil, err
	}

	e.Kind = content.Kind(kind)
	if t := parseNullTime(published); t != nil {
		e.PublishedAt = *t
	}
	e.ReleaseDate = parseNullTime(release)
	e.DateFormed = parseNullTime(formed)
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}
	e.Introduction = intro.String
	e.ListingIntroduction = listing.String
	e.Biography = bio.String
	e.ExternalURL = external.String
	e.ImageURL = image.String
	if t := parseNullTime(added); t != nil {
		e.CreatedAt = *t
	}
	if t := parseNullTime(modified); t != nil {
		e.ModifiedAt = *t
	}
	return e, nil
}

func loadAttributes(ctx context.Context, q queryer, e *content.Entity) error {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM entity_attributes WHERE entity_id = ?`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	e.Attributes = make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		e.Attributes[key] = value.String
	}
	return rows.Err()
}

func getEntity(ctx context.Context, q queryer, id string) (*content.Entity, error) {
	row := q.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &content.NotFoundError{What: "entity", ID: id}
		}
		return nil, err
	}
	if err := loadAttributes(ctx, q, e); err != nil {
		return nil, err
	}
	return e, nil
}

func queryEntities(ctx context.Context, q queryer, query string, args ...any) ([]*content.Entity, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var entities []*content.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, e := range entities {
		if err := loadAttributes(ctx, q, e); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

func checkSlugFree(ctx context.Context, q queryer, e *content.Entity) error {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE kind = ? AND slug = ? AND id <> ?`,
		string(e.Kind), e.Slug, e.ID).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return content.Invalid("slug", "%q is already used by another %s", e.Slug, e.Kind)
	}
	return nil
}

func insertAttributes(ctx context.Context, tx *sql.Tx, e *content.Entity) error {
	for key, value := range e.Attributes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entity_attributes (entity_id, key, value)
			VALUES (?, ?, ?)
		`, e.ID, key, value)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddEntity adds an entity and its initial links to the database.
func (d *SqliteStore) AddEntity(ctx context.Context, e *content.Entity, drafts []content.LinkDraft) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Slug == "" {
		e.Slug = content.Slugify(e.Title)
	}
	if err := e.Validate(); err != nil {
		slog.Error("AddEntity: validation failed", "error", err, "entityID", e.ID)
		return err
	}
	if err := d.links.CheckDrafts(e.Kind, drafts); err != nil {
		slog.Error("AddEntity: link validation failed", "error", err, "entityID", e.ID)
		return err
	}

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.ModifiedAt = now

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkSlugFree(ctx, tx, e); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entities (`+entityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.Kind), e.Title, e.Slug, e.Live, formatTime(e.PublishedAt),
		nullTime(e.ReleaseDate), nullTime(e.DateFormed), nullInt(e.Rating),
		e.Introduction, e.ListingIntroduction, e.Biography, e.ExternalURL, e.ImageURL,
		formatTime(e.CreatedAt), formatTime(e.ModifiedAt))
	if err != nil {
		return err
	}

	if err := insertAttributes(ctx, tx, e); err != nil {
		return err
	}

	positions := make(map[content.LinkKind]int)
	seen := make(map[string]bool)
	for _, draft := range drafts {
		spec, _ := d.links.Spec(draft.Kind)
		target, err := getEntity(ctx, tx, draft.TargetID)
		if err != nil {
			return err
		}
		if err := spec.CheckTarget(e, target); err != nil {
			return err
		}
		key := string(draft.Kind) + "/" + draft.TargetID
		if seen[key] {
			return content.Invalid(string(draft.Kind), "%s is linked more than once", target.Title)
		}
		seen[key] = true

		_, err = tx.ExecContext(ctx, `
			INSERT INTO links (kind, owner_id, target_id, position)
			VALUES (?, ?, ?, ?)
		`, string(draft.Kind), e.ID, draft.TargetID, positions[draft.Kind])
		if err != nil {
			return err
		}
		positions[draft.Kind]++
	}

	return tx.Commit()
}

// UpdateEntity updates the fields and attributes of an existing entity.
func (d *SqliteStore) UpdateEntity(ctx context.Context, e *content.Entity) error {
	if e.Slug == "" {
		e.Slug = content.Slugify(e.Title)
	}
	if err := e.Validate(); err != nil {
		slog.Error("UpdateEntity: validation failed", "error", err, "entityID", e.ID)
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := getEntity(ctx, tx, e.ID)
	if err != nil {
		return err
	}
	if existing.Kind != e.Kind {
		return content.Invalid("kind", "cannot change a %s into a %s", existing.Kind, e.Kind)
	}
	if err := checkSlugFree(ctx, tx, e); err != nil {
		return err
	}

	e.CreatedAt = existing.CreatedAt
	e.ModifiedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE entities SET title = ?, slug = ?, live = ?, published_at = ?, release_date = ?,
			date_formed = ?, rating = ?, introduction = ?, listing_introduction = ?, biography = ?,
			external_url = ?, image_url = ?, modified_date = ?
		WHERE id = ?
	`, e.Title, e.Slug, e.Live, formatTime(e.PublishedAt), nullTime(e.ReleaseDate),
		nullTime(e.DateFormed), nullInt(e.Rating), e.Introduction, e.ListingIntroduction, e.Biography,
		e.ExternalURL, e.ImageURL, formatTime(e.ModifiedAt), e.ID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_attributes WHERE entity_id = ?`, e.ID); err != nil {
		return err
	}
	if err := insertAttributes(ctx, tx, e); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteEntity deletes an entity, its links and items, and applies the delete policy of
// every link kind that may target it.
func (d *SqliteStore) DeleteEntity(ctx context.Context, id string) ([]content.DanglingReference, error) {
	slog.Debug("DeleteEntity called", "entityID", id)

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	e, err := getEntity(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var dangling []content.DanglingReference
	for _, spec := range d.links.Targeting(e.Kind) {
		switch spec.OnDelete {
		case content.Cascade:
			_, err = tx.ExecContext(ctx, `DELETE FROM links WHERE target_id = ? AND kind = ?`, id, string(spec.Kind))
			if err != nil {
				return nil, err
			}
		case content.SetNull:
			refs, err := danglingRefs(ctx, tx, `SELECT id, owner_id, kind FROM links WHERE target_id = ? AND kind = ? AND owner_id <> ?`,
				id, string(spec.Kind), id)
			if err != nil {
				return nil, err
			}
			_, err = tx.ExecContext(ctx, `UPDATE links SET target_id = NULL WHERE target_id = ? AND kind = ?`, id, string(spec.Kind))
			if err != nil {
				return nil, err
			}
			dangling = append(dangling, refs...)
		}
	}

	// Owned links, items and attributes
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE owner_id = ?`, id); err != nil {
		return nil, err
	}
	for _, table := range itemTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table.name+` WHERE owner_id = ?`, id); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_attributes WHERE entity_id = ?`, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return dangling, nil
}

// GetEntity gets an entity by id.
func (d *SqliteStore) GetEntity(ctx context.Context, id string) (*content.Entity, error) {
	return getEntity(ctx, d.db, id)
}

// GetEntityBySlug gets an entity by its kind and slug.
func (d *SqliteStore) GetEntityBySlug(ctx context.Context, kind content.Kind, slug string) (*content.Entity, error) {
	entities, err := queryEntities(ctx, d.db,
		`SELECT `+entityColumns+` FROM entities WHERE kind = ? AND slug = ?`, string(kind), slug)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, &content.NotFoundError{What: string(kind), ID: slug}
	}
	return entities[0], nil
}

// ListEntities lists the entities of a kind ordered by title.
func (d *SqliteStore) ListEntities(ctx context.Context, kind content.Kind, liveOnly bool) ([]*content.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = ?`
	if liveOnly {
		query += ` AND live = 1`
	}
	query += ` ORDER BY title COLLATE NOCASE, id`
	return queryEntities(ctx, d.db, query, string(kind))
}

// CountEntities returns the number of entities per kind.
func (d *SqliteStore) CountEntities(ctx context.Context) (map[content.Kind]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM entities GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[content.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[content.Kind(kind)] = n
	}
	return counts, rows.Err()
}

func danglingRefs(ctx context.Context, q queryer, query string, args ...any) ([]content.DanglingReference, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []content.DanglingReference
	for rows.Next() {
		var ref content.DanglingReference
		var kind string
		if err := rows.Scan(&ref.LinkID, &ref.OwnerID, &kind); err != nil {
			return nil, err
		}
		ref.Kind = content.LinkKind(kind)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func linkNotFound(id int64) error {
	return &content.NotFoundError{What: "link", ID: strconv.FormatInt(id, 10)}
}

func countLinks(ctx context.Context, q queryer, ownerID string, kind content.LinkKind) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE owner_id = ? AND kind = ?`,
		ownerID, string(kind)).Scan(&n)
	return n, err
}

func linkIDs(ctx context.Context, q queryer, ownerID string, kind content.LinkKind) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id FROM links WHERE owner_id = ? AND kind = ? ORDER BY position, id
	`, ownerID, string(kind))
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

// checkNotLinked rejects a second link of the same kind from owner to
// target. except names a link that is allowed to match.
func checkNotLinked(ctx context.Context, q queryer, ownerID string, kind content.LinkKind, target *content.Entity, except int64) error {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM links WHERE owner_id = ? AND kind = ? AND target_id = ? AND id <> ?
	`, ownerID, string(kind), target.ID, except).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return content.Invalid(string(kind), "%s is already linked", target.Title)
	}
	return nil
}

// ListLinks lists the links of an owner in position order with resolved targets.
func (d *SqliteStore) ListLinks(ctx context.Context, ownerID string, kind content.LinkKind) ([]content.Linked, error) {
	if _, err := d.links.Spec(kind); err != nil {
		return nil, err
	}
	if _, err := getEntity(ctx, d.db, ownerID); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, kind, owner_id, target_id, position
		FROM links
		WHERE owner_id = ? AND kind = ?
		ORDER BY position, id
	`, ownerID, string(kind))
	if err != nil {
		return nil, err
	}

	var linked []content.Linked
	for rows.Next() {
		var l content.Linked
		var k string
		var target sql.NullString
		if err := rows.Scan(&l.ID, &k, &l.OwnerID, &target, &l.Position); err != nil {
			rows.Close()
			return nil, err
		}
		l.Kind = content.LinkKind(k)
		if target.Valid {
			t := target.String
			l.TargetID = &t
		}
		linked = append(linked, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range linked {
		if linked[i].TargetID == nil {
			continue
		}
		target, err := getEntity(ctx, d.db, *linked[i].TargetID)
		if err != nil {
			return nil, err
		}
		linked[i].Target = target
	}
	return linked, nil
}

// AddLink appends (or inserts at an explicit free position) a link.
func (d *SqliteStore) AddLink(ctx context.Context, ownerID string, kind content.LinkKind, targetID string, position *int) (int64, error) {
	spec, err := d.links.Spec(kind)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	owner, err := getEntity(ctx, tx, ownerID)
	if err != nil {
		return 0, err
	}
	target, err := getEntity(ctx, tx, targetID)
	if err != nil {
		return 0, err
	}
	if err := spec.CheckTarget(owner, target); err != nil {
		return 0, err
	}

	count, err := countLinks(ctx, tx, ownerID, kind)
	if err != nil {
		return 0, err
	}
	if err := spec.CheckAdd(count); err != nil {
		return 0, err
	}
	if err := checkNotLinked(ctx, tx, ownerID, kind, target, 0); err != nil {
		return 0, err
	}

	var pos int
	if position == nil {
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(position) + 1, 0) FROM links WHERE owner_id = ? AND kind = ?
		`, ownerID, string(kind)).Scan(&pos)
		if err != nil {
			return 0, err
		}
	} else {
		pos = *position
		if pos < 0 {
			return 0, content.Invalid("position", "must not be negative, got %d", pos)
		}
		var taken int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM links WHERE owner_id = ? AND kind = ? AND position = ?
		`, ownerID, string(kind), pos).Scan(&taken)
		if err != nil {
			return 0, err
		}
		if taken > 0 {
			return 0, content.Invalid("position", "position %d is already taken", pos)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO links (kind, owner_id, target_id, position)
		VALUES (?, ?, ?, ?)
	`, string(kind), ownerID, targetID, pos)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	return id, tx.Commit()
}

// RemoveLink deletes a link without renumbering its siblings.
func (d *SqliteStore) RemoveLink(ctx context.Context, ownerID string, kind content.LinkKind, linkID int64) error {
	spec, err := d.links.Spec(kind)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkLinkOwner(ctx, tx, ownerID, kind, linkID); err != nil {
		return err
	}
	count, err := countLinks(ctx, tx, ownerID, kind)
	if err != nil {
		return err
	}
	if err := spec.CheckRemove(count); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, linkID); err != nil {
		return err
	}
	return tx.Commit()
}

func checkLinkOwner(ctx context.Context, q queryer, ownerID string, kind content.LinkKind, linkID int64) error {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM links WHERE id = ? AND owner_id = ? AND kind = ?
	`, linkID, ownerID, string(kind)).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return linkNotFound(linkID)
	}
	return nil
}

// ReorderLinks renumbers the links of an owner 0..N-1 following order.
// Positions are first moved to negative values so the unique
// (owner, kind, position) index holds at every step.
func (d *SqliteStore) ReorderLinks(ctx context.Context, ownerID string, kind content.LinkKind, order []int64) error {
	if _, err := d.links.Spec(kind); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getEntity(ctx, tx, ownerID); err != nil {
		return err
	}
	existing, err := linkIDs(ctx, tx, ownerID, kind)
	if err != nil {
		return err
	}
	if err := content.CheckPermutation(existing, order); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE links SET position = -position - 1 WHERE owner_id = ? AND kind = ?
	`, ownerID, string(kind))
	if err != nil {
		return err
	}
	for i, id := range order {
		if _, err := tx.ExecContext(ctx, `UPDATE links SET position = ? WHERE id = ?`, i, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RetargetLink points an existing link at a different target, keeping its
// position.
func (d *SqliteStore) RetargetLink(ctx context.Context, ownerID string, kind content.LinkKind, linkID int64, targetID string) error {
	spec, err := d.links.Spec(kind)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	owner, err := getEntity(ctx, tx, ownerID)
	if err != nil {
		return err
	}
	if err := checkLinkOwner(ctx, tx, ownerID, kind, linkID); err != nil {
		return err
	}
	target, err := getEntity(ctx, tx, targetID)
	if err != nil {
		return err
	}
	if err := spec.CheckTarget(owner, target); err != nil {
		return err
	}
	if err := checkNotLinked(ctx, tx, ownerID, kind, target, linkID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE links SET target_id = ? WHERE id = ?`, targetID, linkID); err != nil {
		return err
	}
	return tx.Commit()
}

// OwnersOf returns the distinct owners of links of kind pointing at targetID.
func (d *SqliteStore) OwnersOf(ctx context.Context, targetID string, kind content.LinkKind, liveOnly bool) ([]*content.Entity, error) {
	if _, err := d.links.Spec(kind); err != nil {
		return nil, err
	}
	if _, err := getEntity(ctx, d.db, targetID); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + entityColumns + ` FROM entities
		WHERE id IN (SELECT owner_id FROM links WHERE target_id = ? AND kind = ?)`)
	if liveOnly {
		b.WriteString(` AND live = 1`)
	}
	b.WriteString(` ORDER BY title COLLATE NOCASE, id`)
	return queryEntities(ctx, d.db, b.String(), targetID, string(kind))
}

// DanglingLinks returns every link whose target was deleted.
func (d *SqliteStore) DanglingLinks(ctx context.Context) ([]content.DanglingReference, error) {
	refs, err := danglingRefs(ctx, d.db, `
		SELECT id, owner_id, kind FROM links WHERE target_id IS NULL
		ORDER BY owner_id, kind, position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing dangling links: %w", err)
	}
	return refs, nil
}
