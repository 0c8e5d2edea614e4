package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlInsertFriendship = `INSERT INTO friendships(id, author1_url, author2_url, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(author1_url, author2_url) DO NOTHING`

	sqlDeleteFriendship = `DELETE FROM friendships WHERE author1_url = ? AND author2_url = ?`
	sqlSelectFriendship = `SELECT 1 FROM friendships WHERE author1_url = ? AND author2_url = ?`

	sqlSelectFriendsOf = `SELECT author1_url, author2_url FROM friendships WHERE author1_url = ? OR author2_url = ?`
)

// EnsureFriendship creates the canonical pair row if absent. Idempotent.
func (db *DB) EnsureFriendship(aURL, bURL string) error {
	a1, a2 := domain.OrderPair(aURL, bURL)
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFriendship, uuid.New().String(), a1, a2, time.Now())
		return err
	})
}

// DeleteFriendship removes the pair row. A missing row is a no-op.
func (db *DB) DeleteFriendship(aURL, bURL string) error {
	a1, a2 := domain.OrderPair(aURL, bURL)
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFriendship, a1, a2)
		return err
	})
}

func (db *DB) FriendshipExists(aURL, bURL string) (bool, error) {
	a1, a2 := domain.OrderPair(aURL, bURL)
	return db.exists(sqlSelectFriendship, a1, a2)
}

// ReadFriendsOf returns the urls of every author in a friendship with the
// given one.
func (db *DB) ReadFriendsOf(url string) (error, *[]string) {
	rows, err := db.db.Query(sqlSelectFriendsOf, url, url)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var a1, a2 string
		if err := rows.Scan(&a1, &a2); err != nil {
			return err, &friends
		}
		if a1 == url {
			friends = append(friends, a2)
		} else {
			friends = append(friends, a1)
		}
	}
	if err := rows.Err(); err != nil {
		return err, &friends
	}
	return nil, &friends
}
