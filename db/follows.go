package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlFollowColumns = `id, follower_url, followed_url, status, created_at, updated_at`

	sqlInsertFollow = `INSERT INTO follows(id, follower_url, followed_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(follower_url, followed_url) DO NOTHING`

	sqlSelectFollow       = `SELECT ` + sqlFollowColumns + ` FROM follows WHERE follower_url = ? AND followed_url = ?`
	sqlUpdateFollowStatus = `UPDATE follows SET status = ?, updated_at = ? WHERE follower_url = ? AND followed_url = ?`
	sqlDeleteFollow       = `DELETE FROM follows WHERE follower_url = ? AND followed_url = ?`

	sqlAcceptedFollow = `SELECT 1 FROM follows WHERE follower_url = ? AND followed_url = ? AND status = 'accepted'`

	sqlSelectFollowersOf = `SELECT ` + sqlFollowColumns + ` FROM follows WHERE followed_url = ? AND status = 'accepted' ORDER BY created_at ASC`
)

// GetOrCreateFollow inserts a follow edge in requesting state or returns the
// existing one for the pair. The created flag reports which happened.
func (db *DB) GetOrCreateFollow(followerURL, followedURL string) (error, *domain.Follow, bool) {
	var created bool
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		now := time.Now()
		res, err := tx.Exec(sqlInsertFollow,
			uuid.New().String(), followerURL, followedURL, domain.FollowRequesting, now, now)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		created = n > 0
		return nil
	})
	if err != nil {
		return err, nil, false
	}
	err, follow := db.ReadFollow(followerURL, followedURL)
	return err, follow, created
}

func (db *DB) ReadFollow(followerURL, followedURL string) (error, *domain.Follow) {
	row := db.db.QueryRow(sqlSelectFollow, followerURL, followedURL)
	var f domain.Follow
	var idStr string
	err := row.Scan(&idStr, &f.FollowerURL, &f.FollowedURL, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	f.Id, _ = uuid.Parse(idStr)
	return nil, &f
}

func (db *DB) UpdateFollowStatus(followerURL, followedURL, status string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateFollowStatus, status, time.Now(), followerURL, followedURL)
		return err
	})
}

func (db *DB) DeleteFollow(followerURL, followedURL string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFollow, followerURL, followedURL)
		return err
	})
}

// AcceptedFollowExists is the set-membership check behind the friendship
// invariant and the visibility rules.
func (db *DB) AcceptedFollowExists(followerURL, followedURL string) (bool, error) {
	return db.exists(sqlAcceptedFollow, followerURL, followedURL)
}

func (db *DB) ReadFollowersOf(followedURL string) (error, *[]domain.Follow) {
	rows, err := db.db.Query(sqlSelectFollowersOf, followedURL)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var follows []domain.Follow
	for rows.Next() {
		var f domain.Follow
		var idStr string
		if err := rows.Scan(&idStr, &f.FollowerURL, &f.FollowedURL, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return err, &follows
		}
		f.Id, _ = uuid.Parse(idStr)
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return err, &follows
	}
	return nil, &follows
}
