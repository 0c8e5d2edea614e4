package db

import (
	"database/sql"
	"log"
)

const (
	sqlCreateAuthorsTable = `CREATE TABLE IF NOT EXISTS authors (
		id TEXT NOT NULL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL,
		display_name TEXT DEFAULT '',
		profile_image TEXT DEFAULT '',
		host TEXT DEFAULT '',
		web TEXT DEFAULT '',
		node_id TEXT,
		is_operator INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateAuthorsIndices = `
		CREATE INDEX IF NOT EXISTS idx_authors_host ON authors(host);
		CREATE INDEX IF NOT EXISTS idx_authors_node_id ON authors(node_id);
	`

	sqlCreateNodesTable = `CREATE TABLE IF NOT EXISTS nodes (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT DEFAULT '',
		host TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		is_active INTEGER DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateEntriesTable = `CREATE TABLE IF NOT EXISTS entries (
		id TEXT NOT NULL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		author_url TEXT NOT NULL,
		title TEXT DEFAULT '',
		description TEXT DEFAULT '',
		content TEXT DEFAULT '',
		content_type TEXT DEFAULT 'text/plain',
		categories TEXT DEFAULT '[]',
		visibility TEXT NOT NULL DEFAULT 'PUBLIC',
		source TEXT DEFAULT '',
		origin TEXT DEFAULT '',
		web TEXT DEFAULT '',
		published TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateEntriesIndices = `
		CREATE INDEX IF NOT EXISTS idx_entries_author_url ON entries(author_url);
		CREATE INDEX IF NOT EXISTS idx_entries_visibility ON entries(visibility);
		CREATE INDEX IF NOT EXISTS idx_entries_published ON entries(published DESC);
	`

	sqlCreateCommentsTable = `CREATE TABLE IF NOT EXISTS comments (
		id TEXT NOT NULL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		author_url TEXT NOT NULL,
		entry_url TEXT NOT NULL,
		content TEXT DEFAULT '',
		content_type TEXT DEFAULT 'text/markdown',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateCommentsIndices = `
		CREATE INDEX IF NOT EXISTS idx_comments_entry_url ON comments(entry_url);
	`

	// Exactly one like target, enforced by the storage layer so a racing
	// duplicate can never slip past application checks.
	sqlCreateLikesTable = `CREATE TABLE IF NOT EXISTS likes (
		id TEXT NOT NULL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		author_url TEXT NOT NULL,
		entry_url TEXT,
		comment_url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK ((entry_url IS NULL) != (comment_url IS NULL))
	)`

	sqlCreateLikesIndices = `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_author_entry ON likes(author_url, entry_url) WHERE entry_url IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_author_comment ON likes(author_url, comment_url) WHERE comment_url IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_likes_entry_url ON likes(entry_url);
		CREATE INDEX IF NOT EXISTS idx_likes_comment_url ON likes(comment_url);
	`

	sqlCreateFollowsTable = `CREATE TABLE IF NOT EXISTS follows (
		id TEXT NOT NULL PRIMARY KEY,
		follower_url TEXT NOT NULL,
		followed_url TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'requesting',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(follower_url, followed_url)
	)`

	sqlCreateFollowsIndices = `
		CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows(follower_url);
		CREATE INDEX IF NOT EXISTS idx_follows_followed ON follows(followed_url);
	`

	// One row per unordered pair, kept in lexicographic order.
	sqlCreateFriendshipsTable = `CREATE TABLE IF NOT EXISTS friendships (
		id TEXT NOT NULL PRIMARY KEY,
		author1_url TEXT NOT NULL,
		author2_url TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(author1_url, author2_url),
		CHECK (author1_url < author2_url)
	)`

	sqlCreateFriendshipsIndices = `
		CREATE INDEX IF NOT EXISTS idx_friendships_author2 ON friendships(author2_url);
	`

	sqlCreateInboxItemsTable = `CREATE TABLE IF NOT EXISTS inbox_items (
		id TEXT NOT NULL PRIMARY KEY,
		recipient_url TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		object_data TEXT NOT NULL,
		object_hash TEXT NOT NULL,
		raw_data TEXT NOT NULL,
		is_read INTEGER DEFAULT 0,
		delivered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(recipient_url, activity_type, object_hash)
	)`

	sqlCreateInboxItemsIndices = `
		CREATE INDEX IF NOT EXISTS idx_inbox_items_recipient ON inbox_items(recipient_url, delivered_at DESC);
	`

	sqlCreateInboxDeliveriesTable = `CREATE TABLE IF NOT EXISTS inbox_deliveries (
		id TEXT NOT NULL PRIMARY KEY,
		entry_url TEXT NOT NULL,
		recipient_url TEXT NOT NULL,
		success INTEGER DEFAULT 0,
		delivered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateInboxDeliveriesIndices = `
		CREATE INDEX IF NOT EXISTS idx_inbox_deliveries_entry ON inbox_deliveries(entry_url);
	`
)

// Migrate creates all tables and indices.
func (db *DB) Migrate() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		tables := []struct {
			name      string
			createSQL string
			indexSQL  string
		}{
			{"authors", sqlCreateAuthorsTable, sqlCreateAuthorsIndices},
			{"nodes", sqlCreateNodesTable, ""},
			{"entries", sqlCreateEntriesTable, sqlCreateEntriesIndices},
			{"comments", sqlCreateCommentsTable, sqlCreateCommentsIndices},
			{"likes", sqlCreateLikesTable, sqlCreateLikesIndices},
			{"follows", sqlCreateFollowsTable, sqlCreateFollowsIndices},
			{"friendships", sqlCreateFriendshipsTable, sqlCreateFriendshipsIndices},
			{"inbox_items", sqlCreateInboxItemsTable, sqlCreateInboxItemsIndices},
			{"inbox_deliveries", sqlCreateInboxDeliveriesTable, sqlCreateInboxDeliveriesIndices},
		}
		for _, t := range tables {
			if _, err := tx.Exec(t.createSQL); err != nil {
				log.Printf("Error creating table %s: %v", t.name, err)
				return err
			}
			if t.indexSQL == "" {
				continue
			}
			if _, err := tx.Exec(t.indexSQL); err != nil {
				log.Printf("Warning: Failed to create %s indices: %v", t.name, err)
			}
		}
		return nil
	})
}
