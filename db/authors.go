package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlAuthorColumns = `id, url, username, display_name, profile_image, host, web, node_id, is_operator, created_at, updated_at`

	sqlUpsertAuthor = `INSERT INTO authors(id, url, username, display_name, profile_image, host, web, node_id, is_operator, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			profile_image = excluded.profile_image,
			host = excluded.host,
			web = excluded.web,
			node_id = excluded.node_id,
			updated_at = excluded.updated_at`

	sqlSelectAuthorByURL    = `SELECT ` + sqlAuthorColumns + ` FROM authors WHERE url = ?`
	sqlSelectAuthorById     = `SELECT ` + sqlAuthorColumns + ` FROM authors WHERE id = ?`
	sqlSelectAuthors        = `SELECT ` + sqlAuthorColumns + ` FROM authors ORDER BY created_at ASC LIMIT ? OFFSET ?`
	sqlSelectRemoteAuthors  = `SELECT ` + sqlAuthorColumns + ` FROM authors WHERE node_id IS NOT NULL`
	sqlCountAuthors         = `SELECT COUNT(*) FROM authors`
	sqlUpdateAuthorOperator = `UPDATE authors SET is_operator = ?, updated_at = ? WHERE url = ?`
)

// UpsertAuthor inserts the author or, when the canonical url is already
// known, overwrites its mutable fields in place. The stored id and operator
// flag survive updates.
func (db *DB) UpsertAuthor(a *domain.Author) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		var nodeId any
		if a.NodeId != nil {
			nodeId = a.NodeId.String()
		}
		now := time.Now()
		_, err := tx.Exec(sqlUpsertAuthor,
			a.Id.String(), a.URL, a.Username, a.DisplayName, a.ProfileImage,
			a.Host, a.Web, nodeId, a.IsOperator, now, now)
		return err
	})
}

func (db *DB) ReadAuthorByURL(url string) (error, *domain.Author) {
	return db.scanAuthor(db.db.QueryRow(sqlSelectAuthorByURL, url))
}

func (db *DB) ReadAuthorById(id uuid.UUID) (error, *domain.Author) {
	return db.scanAuthor(db.db.QueryRow(sqlSelectAuthorById, id.String()))
}

func (db *DB) ReadAuthors(limit, offset int) (error, *[]domain.Author) {
	rows, err := db.db.Query(sqlSelectAuthors, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectAuthors(rows)
}

// ReadRemoteAuthors returns every author cached from a federated peer, the
// fan-out recipient set.
func (db *DB) ReadRemoteAuthors() (error, *[]domain.Author) {
	rows, err := db.db.Query(sqlSelectRemoteAuthors)
	if err != nil {
		return err, nil
	}
	defer rows.Close()
	return db.collectAuthors(rows)
}

func (db *DB) CountAuthors() (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountAuthors).Scan(&count)
	return count, err
}

func (db *DB) SetAuthorOperator(url string, isOperator bool) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateAuthorOperator, isOperator, time.Now(), url)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanAuthor(row rowScanner) (error, *domain.Author) {
	var a domain.Author
	var idStr string
	var nodeId sql.NullString
	err := row.Scan(&idStr, &a.URL, &a.Username, &a.DisplayName, &a.ProfileImage,
		&a.Host, &a.Web, &nodeId, &a.IsOperator, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	a.Id, _ = uuid.Parse(idStr)
	if nodeId.Valid {
		parsed, perr := uuid.Parse(nodeId.String)
		if perr == nil {
			a.NodeId = &parsed
		}
	}
	return nil, &a
}

func (db *DB) collectAuthors(rows *sql.Rows) (error, *[]domain.Author) {
	var authors []domain.Author
	for rows.Next() {
		err, a := db.scanAuthor(rows)
		if err != nil {
			return err, &authors
		}
		authors = append(authors, *a)
	}
	if err := rows.Err(); err != nil {
		return err, &authors
	}
	return nil, &authors
}
