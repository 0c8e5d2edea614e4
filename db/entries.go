package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlEntryColumns = `id, url, author_url, title, description, content, content_type, categories, visibility, source, origin, web, published, created_at, updated_at`

	sqlUpsertEntry = `INSERT INTO entries(id, url, author_url, title, description, content, content_type, categories, visibility, source, origin, web, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			content_type = excluded.content_type,
			categories = excluded.categories,
			visibility = excluded.visibility,
			source = excluded.source,
			origin = excluded.origin,
			web = excluded.web,
			published = excluded.published,
			updated_at = excluded.updated_at`

	sqlSelectEntryByURL      = `SELECT ` + sqlEntryColumns + ` FROM entries WHERE url = ?`
	sqlSelectEntryById       = `SELECT ` + sqlEntryColumns + ` FROM entries WHERE id = ?`
	sqlSelectEntriesByAuthor = `SELECT ` + sqlEntryColumns + ` FROM entries WHERE author_url = ? AND visibility != 'DELETED' ORDER BY published DESC LIMIT ? OFFSET ?`
	sqlSoftDeleteEntry       = `UPDATE entries SET visibility = 'DELETED', updated_at = ? WHERE url = ?`

	// Feed filter. DELETED never appears in listings; UNLISTED and FRIENDS
	// are listed only when the viewer stands in the right relation to the
	// author. Membership checks are EXISTS subqueries, never row loads.
	sqlVisibleEntryFilter = `e.visibility != 'DELETED' AND (
			e.visibility = 'PUBLIC'
			OR (?1 != '' AND (
				e.author_url = ?1
				OR (e.visibility = 'UNLISTED' AND (
					EXISTS(SELECT 1 FROM follows f WHERE f.follower_url = ?1 AND f.followed_url = e.author_url AND f.status = 'accepted')
					OR EXISTS(SELECT 1 FROM friendships fr WHERE fr.author1_url = MIN(?1, e.author_url) AND fr.author2_url = MAX(?1, e.author_url))))
				OR (e.visibility = 'FRIENDS' AND
					EXISTS(SELECT 1 FROM friendships fr WHERE fr.author1_url = MIN(?1, e.author_url) AND fr.author2_url = MAX(?1, e.author_url)))
			))
		)`

	sqlSelectVisibleEntries = `SELECT ` + sqlEntryColumns + ` FROM entries e
		WHERE ` + sqlVisibleEntryFilter + `
		ORDER BY e.published DESC LIMIT ?2 OFFSET ?3`

	sqlCountVisibleEntries = `SELECT COUNT(*) FROM entries e WHERE ` + sqlVisibleEntryFilter
)

// UpsertEntry inserts the entry or overwrites the mutable fields of an
// existing row with the same canonical url, last write wins.
func (db *DB) UpsertEntry(e *domain.Entry) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		categories, err := json.Marshal(e.Categories)
		if err != nil {
			return err
		}
		now := time.Now()
		_, err = tx.Exec(sqlUpsertEntry,
			e.Id.String(), e.URL, e.AuthorURL, e.Title, e.Description, e.Content,
			e.ContentType, string(categories), e.Visibility, e.Source, e.Origin,
			e.Web, e.Published, now, now)
		return err
	})
}

func (db *DB) ReadEntryByURL(url string) (error, *domain.Entry) {
	return db.scanEntry(db.db.QueryRow(sqlSelectEntryByURL, url))
}

func (db *DB) ReadEntryById(id uuid.UUID) (error, *domain.Entry) {
	return db.scanEntry(db.db.QueryRow(sqlSelectEntryById, id.String()))
}

func (db *DB) ReadEntriesByAuthor(authorURL string, limit, offset int) (error, *[]domain.Entry) {
	rows, err := db.db.Query(sqlSelectEntriesByAuthor, authorURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectEntries(rows)
}

// ReadVisibleEntries returns the feed for the given viewer url. An empty
// viewer is anonymous and sees public entries only.
func (db *DB) ReadVisibleEntries(viewerURL string, limit, offset int) (error, *[]domain.Entry) {
	rows, err := db.db.Query(sqlSelectVisibleEntries, viewerURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectEntries(rows)
}

// CountVisibleEntries reports the total feed size for the viewer url.
func (db *DB) CountVisibleEntries(viewerURL string) (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountVisibleEntries, viewerURL).Scan(&count)
	return count, err
}

// SoftDeleteEntry marks the entry DELETED; the row stays for referential
// integrity with comments and likes.
func (db *DB) SoftDeleteEntry(url string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlSoftDeleteEntry, time.Now(), url)
		return err
	})
}

func (db *DB) scanEntry(row rowScanner) (error, *domain.Entry) {
	var e domain.Entry
	var idStr, categories string
	err := row.Scan(&idStr, &e.URL, &e.AuthorURL, &e.Title, &e.Description,
		&e.Content, &e.ContentType, &categories, &e.Visibility, &e.Source,
		&e.Origin, &e.Web, &e.Published, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	e.Id, _ = uuid.Parse(idStr)
	json.Unmarshal([]byte(categories), &e.Categories)
	return nil, &e
}

func (db *DB) collectEntries(rows *sql.Rows) (error, *[]domain.Entry) {
	var entries []domain.Entry
	for rows.Next() {
		err, e := db.scanEntry(rows)
		if err != nil {
			return err, &entries
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return err, &entries
	}
	return nil, &entries
}
