package db

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlNodeColumns = `id, name, host, username, password, is_active, created_at`

	sqlInsertNode           = `INSERT INTO nodes(id, name, host, username, password, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqlSelectNodeByHost     = `SELECT ` + sqlNodeColumns + ` FROM nodes WHERE host = ?`
	sqlSelectNodeById       = `SELECT ` + sqlNodeColumns + ` FROM nodes WHERE id = ?`
	sqlSelectNodeByUsername = `SELECT ` + sqlNodeColumns + ` FROM nodes WHERE username = ?`
	sqlSelectAllNodes       = `SELECT ` + sqlNodeColumns + ` FROM nodes ORDER BY created_at ASC`
	sqlUpdateNode           = `UPDATE nodes SET name = ?, host = ?, username = ?, password = ?, is_active = ? WHERE id = ?`
	sqlUpdateNodeActive     = `UPDATE nodes SET is_active = ? WHERE id = ?`
)

func (db *DB) CreateNode(n *domain.Node) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertNode,
			n.Id.String(), n.Name, n.Host, n.Username, n.Password, n.IsActive, n.CreatedAt)
		return err
	})
}

func (db *DB) ReadNodeByHost(host string) (error, *domain.Node) {
	return db.scanNode(db.db.QueryRow(sqlSelectNodeByHost, host))
}

func (db *DB) ReadNodeById(id uuid.UUID) (error, *domain.Node) {
	return db.scanNode(db.db.QueryRow(sqlSelectNodeById, id.String()))
}

// ReadNodeByUsername is the inbound basic-auth lookup.
func (db *DB) ReadNodeByUsername(username string) (error, *domain.Node) {
	return db.scanNode(db.db.QueryRow(sqlSelectNodeByUsername, username))
}

func (db *DB) ReadAllNodes() (error, *[]domain.Node) {
	rows, err := db.db.Query(sqlSelectAllNodes)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		err, n := db.scanNode(rows)
		if err != nil {
			return err, &nodes
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return err, &nodes
	}
	return nil, &nodes
}

func (db *DB) UpdateNode(n *domain.Node) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateNode, n.Name, n.Host, n.Username, n.Password, n.IsActive, n.Id.String())
		return err
	})
}

// SetNodeActive flips the active flag only; cached data stays.
func (db *DB) SetNodeActive(id uuid.UUID, active bool) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateNodeActive, active, id.String())
		return err
	})
}

func (db *DB) scanNode(row rowScanner) (error, *domain.Node) {
	var n domain.Node
	var idStr string
	err := row.Scan(&idStr, &n.Name, &n.Host, &n.Username, &n.Password, &n.IsActive, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	n.Id, _ = uuid.Parse(idStr)
	return nil, &n
}
