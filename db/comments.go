package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlCommentColumns = `id, url, author_url, entry_url, content, content_type, created_at, updated_at`

	sqlUpsertComment = `INSERT INTO comments(id, url, author_url, entry_url, content, content_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content = excluded.content,
			content_type = excluded.content_type,
			updated_at = excluded.updated_at`

	sqlSelectCommentByURL    = `SELECT ` + sqlCommentColumns + ` FROM comments WHERE url = ?`
	sqlSelectCommentById     = `SELECT ` + sqlCommentColumns + ` FROM comments WHERE id = ?`
	sqlSelectCommentsByEntry = `SELECT ` + sqlCommentColumns + ` FROM comments WHERE entry_url = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	sqlCountCommentsByEntry  = `SELECT COUNT(*) FROM comments WHERE entry_url = ?`
)

func (db *DB) UpsertComment(c *domain.Comment) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		now := time.Now()
		_, err := tx.Exec(sqlUpsertComment,
			c.Id.String(), c.URL, c.AuthorURL, c.EntryURL, c.Content, c.ContentType, now, now)
		return err
	})
}

func (db *DB) ReadCommentByURL(url string) (error, *domain.Comment) {
	return db.scanComment(db.db.QueryRow(sqlSelectCommentByURL, url))
}

func (db *DB) ReadCommentById(id uuid.UUID) (error, *domain.Comment) {
	return db.scanComment(db.db.QueryRow(sqlSelectCommentById, id.String()))
}

func (db *DB) ReadCommentsByEntry(entryURL string, limit, offset int) (error, *[]domain.Comment) {
	rows, err := db.db.Query(sqlSelectCommentsByEntry, entryURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		err, c := db.scanComment(rows)
		if err != nil {
			return err, &comments
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return err, &comments
	}
	return nil, &comments
}

func (db *DB) CountCommentsByEntry(entryURL string) (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountCommentsByEntry, entryURL).Scan(&count)
	return count, err
}

func (db *DB) scanComment(row rowScanner) (error, *domain.Comment) {
	var c domain.Comment
	var idStr string
	err := row.Scan(&idStr, &c.URL, &c.AuthorURL, &c.EntryURL, &c.Content, &c.ContentType, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	c.Id, _ = uuid.Parse(idStr)
	return nil, &c
}
