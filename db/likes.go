package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlLikeColumns = `id, url, author_url, entry_url, comment_url, created_at`

	sqlInsertLike = `INSERT INTO likes(id, url, author_url, entry_url, comment_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`

	sqlSelectLikeByURL          = `SELECT ` + sqlLikeColumns + ` FROM likes WHERE url = ?`
	sqlSelectLikeByAuthorTarget = `SELECT ` + sqlLikeColumns + ` FROM likes
		WHERE author_url = ? AND (entry_url = ? OR comment_url = ?)`

	sqlDeleteLikeByURL          = `DELETE FROM likes WHERE url = ?`
	sqlDeleteLikeByAuthorTarget = `DELETE FROM likes WHERE author_url = ? AND (entry_url = ? OR comment_url = ?)`

	sqlSelectLikesByEntry = `SELECT ` + sqlLikeColumns + ` FROM likes WHERE entry_url = ? ORDER BY created_at ASC LIMIT ? OFFSET ?`
	sqlCountLikesByEntry  = `SELECT COUNT(*) FROM likes WHERE entry_url = ?`

	sqlSelectLikesByComment = `SELECT ` + sqlLikeColumns + ` FROM likes WHERE comment_url = ? ORDER BY created_at ASC LIMIT ? OFFSET ?`
	sqlCountLikesByComment  = `SELECT COUNT(*) FROM likes WHERE comment_url = ?`
)

// CreateLike inserts the like unless one already exists for the same url or
// the same (author, target) pair. Created reports whether a row was written.
func (db *DB) CreateLike(l *domain.Like) (error, bool) {
	if err := l.Validate(); err != nil {
		return err, false
	}
	var created bool
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertLike,
			l.Id.String(), l.URL, l.AuthorURL,
			nullable(l.EntryURL), nullable(l.CommentURL), time.Now())
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		created = n > 0
		return nil
	})
	return err, created
}

func (db *DB) ReadLikeByURL(url string) (error, *domain.Like) {
	return db.scanLike(db.db.QueryRow(sqlSelectLikeByURL, url))
}

func (db *DB) ReadLikeByAuthorAndTarget(authorURL, targetURL string) (error, *domain.Like) {
	return db.scanLike(db.db.QueryRow(sqlSelectLikeByAuthorTarget, authorURL, targetURL, targetURL))
}

func (db *DB) DeleteLikeByURL(url string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteLikeByURL, url)
		return err
	})
}

func (db *DB) DeleteLikeByAuthorAndTarget(authorURL, targetURL string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteLikeByAuthorTarget, authorURL, targetURL, targetURL)
		return err
	})
}

func (db *DB) ReadLikesByEntry(entryURL string, limit, offset int) (error, *[]domain.Like) {
	rows, err := db.db.Query(sqlSelectLikesByEntry, entryURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectLikes(rows)
}

func (db *DB) CountLikesByEntry(entryURL string) (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountLikesByEntry, entryURL).Scan(&count)
	return count, err
}

func (db *DB) ReadLikesByComment(commentURL string, limit, offset int) (error, *[]domain.Like) {
	rows, err := db.db.Query(sqlSelectLikesByComment, commentURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectLikes(rows)
}

func (db *DB) CountLikesByComment(commentURL string) (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountLikesByComment, commentURL).Scan(&count)
	return count, err
}

func (db *DB) scanLike(row rowScanner) (error, *domain.Like) {
	var l domain.Like
	var idStr string
	var entryURL, commentURL sql.NullString
	err := row.Scan(&idStr, &l.URL, &l.AuthorURL, &entryURL, &commentURL, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	l.Id, _ = uuid.Parse(idStr)
	l.EntryURL = entryURL.String
	l.CommentURL = commentURL.String
	return nil, &l
}

func (db *DB) collectLikes(rows *sql.Rows) (error, *[]domain.Like) {
	var likes []domain.Like
	for rows.Next() {
		err, l := db.scanLike(rows)
		if err != nil {
			return err, &likes
		}
		likes = append(likes, *l)
	}
	if err := rows.Err(); err != nil {
		return err, &likes
	}
	return nil, &likes
}

// nullable maps the empty string to NULL so the like target CHECK holds.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
