package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/taxonhq/taxon/internal/schema"
)

// Model is a snapshot read back into memory.
type Model struct {
	BuildID    string
	Version    string
	CreatedAt  string
	Categories map[string]*schema.Category
	Dictionary map[string]*schema.Attribute
	Classes    map[string]*schema.ClassDescriptor
	Objects    map[string]*schema.ObjectDescriptor
}

// Read loads the snapshot's build. Returns an error when the file holds
// no build.
func (s *Snapshot) Read() (*Model, error) {
	m := &Model{
		Categories: make(map[string]*schema.Category),
		Dictionary: make(map[string]*schema.Attribute),
		Classes:    make(map[string]*schema.ClassDescriptor),
		Objects:    make(map[string]*schema.ObjectDescriptor),
	}

	row := s.db.QueryRow("SELECT id, schema_version, created_at FROM builds LIMIT 1")
	if err := row.Scan(&m.BuildID, &m.Version, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot holds no build")
		}
		return nil, fmt.Errorf("read build: %w", err)
	}

	if err := readPayloads(s.db, "categories", func(name string, payload []byte) error {
		cat := &schema.Category{}
		if err := json.Unmarshal(payload, cat); err != nil {
			return err
		}
		m.Categories[name] = cat
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readPayloads(s.db, "dictionary", func(name string, payload []byte) error {
		attr := &schema.Attribute{}
		if err := json.Unmarshal(payload, attr); err != nil {
			return err
		}
		m.Dictionary[name] = attr
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readPayloads(s.db, "classes", func(name string, payload []byte) error {
		cls := &schema.ClassDescriptor{}
		if err := json.Unmarshal(payload, cls); err != nil {
			return err
		}
		m.Classes[name] = cls
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readPayloads(s.db, "objects", func(name string, payload []byte) error {
		obj := &schema.ObjectDescriptor{}
		if err := json.Unmarshal(payload, obj); err != nil {
			return err
		}
		m.Objects[name] = obj
		return nil
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// readPayloads scans one entity table in deterministic name order.
func readPayloads(db *sql.DB, table string, each func(name string, payload []byte) error) error {
	rows, err := db.Query("SELECT name, payload FROM " + table + " ORDER BY name ASC")
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if err := each(name, []byte(payload)); err != nil {
			return fmt.Errorf("decode %s row %s: %w", table, name, err)
		}
	}
	return rows.Err()
}
