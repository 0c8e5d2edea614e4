package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

const (
	sqlInboxItemColumns = `id, recipient_url, activity_type, object_data, object_hash, raw_data, is_read, delivered_at`

	sqlInsertInboxItem = `INSERT INTO inbox_items(id, recipient_url, activity_type, object_data, object_hash, raw_data, is_read, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(recipient_url, activity_type, object_hash) DO NOTHING`

	sqlSelectInboxItem = `SELECT ` + sqlInboxItemColumns + ` FROM inbox_items
		WHERE recipient_url = ? AND activity_type = ? AND object_hash = ?`

	sqlSelectInboxItems = `SELECT ` + sqlInboxItemColumns + ` FROM inbox_items
		WHERE recipient_url = ? ORDER BY delivered_at DESC LIMIT ? OFFSET ?`

	sqlCountInboxItems = `SELECT COUNT(*) FROM inbox_items WHERE recipient_url = ?`
	sqlMarkInboxRead   = `UPDATE inbox_items SET is_read = 1 WHERE recipient_url = ?`

	sqlInsertInboxDelivery = `INSERT INTO inbox_deliveries(id, entry_url, recipient_url, success, delivered_at) VALUES (?, ?, ?, ?, ?)`

	sqlSelectDeliveriesByEntry = `SELECT id, entry_url, recipient_url, success, delivered_at FROM inbox_deliveries WHERE entry_url = ? ORDER BY delivered_at ASC`
)

// GetOrCreateInboxItem records the received activity envelope once per
// (recipient, type, hash). Created reports whether this delivery was new;
// a duplicate returns the stored item.
func (db *DB) GetOrCreateInboxItem(item *domain.InboxItem) (error, *domain.InboxItem, bool) {
	var created bool
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlInsertInboxItem,
			item.Id.String(), item.RecipientURL, item.ActivityType,
			string(item.ObjectData), item.ObjectHash, string(item.RawData), time.Now())
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
	err, stored := db.scanInboxItem(db.db.QueryRow(sqlSelectInboxItem,
		item.RecipientURL, item.ActivityType, item.ObjectHash))
	return err, stored, created
}

func (db *DB) ReadInboxItems(recipientURL string, limit, offset int) (error, *[]domain.InboxItem) {
	rows, err := db.db.Query(sqlSelectInboxItems, recipientURL, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var items []domain.InboxItem
	for rows.Next() {
		err, item := db.scanInboxItem(rows)
		if err != nil {
			return err, &items
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return err, &items
	}
	return nil, &items
}

func (db *DB) CountInboxItems(recipientURL string) (int, error) {
	var count int
	err := db.db.QueryRow(sqlCountInboxItems, recipientURL).Scan(&count)
	return count, err
}

func (db *DB) MarkInboxRead(recipientURL string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlMarkInboxRead, recipientURL)
		return err
	})
}

// CreateInboxDelivery records one fan-out attempt outcome.
func (db *DB) CreateInboxDelivery(d *domain.InboxDelivery) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertInboxDelivery,
			d.Id.String(), d.EntryURL, d.RecipientURL, d.Success, time.Now())
		return err
	})
}

func (db *DB) ReadDeliveriesByEntry(entryURL string) (error, *[]domain.InboxDelivery) {
	rows, err := db.db.Query(sqlSelectDeliveriesByEntry, entryURL)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var deliveries []domain.InboxDelivery
	for rows.Next() {
		var d domain.InboxDelivery
		var idStr string
		if err := rows.Scan(&idStr, &d.EntryURL, &d.RecipientURL, &d.Success, &d.DeliveredAt); err != nil {
			return err, &deliveries
		}
		d.Id, _ = uuid.Parse(idStr)
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return err, &deliveries
	}
	return nil, &deliveries
}

func (db *DB) scanInboxItem(row rowScanner) (error, *domain.InboxItem) {
	var item domain.InboxItem
	var idStr, objectData, rawData string
	err := row.Scan(&idStr, &item.RecipientURL, &item.ActivityType, &objectData,
		&item.ObjectHash, &rawData, &item.IsRead, &item.DeliveredAt)
	if err == sql.ErrNoRows {
		return err, nil
	}
	if err != nil {
		return err, nil
	}
	item.Id, _ = uuid.Parse(idStr)
	item.ObjectData = []byte(objectData)
	item.RawData = []byte(rawData)
	return nil, &item
}
