package attri

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // Register the "sqlite" database/sql driver
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS attributes (
		item  TEXT NOT NULL,
		name  TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (item, name)
	)`,
}

// SaveSQLite writes the table into a SQLite database at path, replacing any
// previous snapshot. Values are stored as JSON text so that their types
// survive a round trip; items without attributes are kept in their own table.
func (m *Manager) SaveSQLite(path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"attributes", "items"} {
		if _, err = tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, key := range m.Keys() {
		if _, err = tx.Exec(`INSERT INTO items (item) VALUES (?)`, key); err != nil {
			return fmt.Errorf("insert item %q: %w", key, err)
		}
		for name, value := range m.table[key] {
			raw, merr := json.Marshal(value)
			if merr != nil {
				return fmt.Errorf("encode %s.%s: %w", key, name, merr)
			}
			if _, err = tx.Exec(`INSERT INTO attributes (item, name, value) VALUES (?, ?, ?)`,
				key, name, string(raw)); err != nil {
				return fmt.Errorf("insert %s.%s: %w", key, name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSQLite reads a table written by SaveSQLite.
func LoadSQLite(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	table := make(map[string]Struct)

	items, err := db.Query(`SELECT item FROM items`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	for items.Next() {
		var key string
		if err := items.Scan(&key); err != nil {
			items.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		table[key] = Struct{}
	}
	items.Close()
	if err := items.Err(); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	rows, err := db.Query(`SELECT item, name, value FROM attributes`)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, name, raw string
		if err := rows.Scan(&key, &name, &raw); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", key, name, err)
		}
		rec, ok := table[key]
		if !ok {
			rec = Struct{}
			table[key] = rec
		}
		rec[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}

	return New(table), nil
}
