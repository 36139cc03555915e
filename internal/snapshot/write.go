package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taxonhq/taxon/internal/cache"
	"github.com/taxonhq/taxon/internal/schema"
)

// Write stores the compiled model as the snapshot's single build,
// replacing any previous content. Returns the new build id.
func (s *Snapshot) Write(c *cache.Cache) (string, error) {
	buildID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin snapshot write: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"builds", "categories", "dictionary", "classes", "objects"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO builds (id, schema_version, created_at) VALUES (?, ?, ?)",
		buildID, c.Version(), createdAt,
	); err != nil {
		return "", fmt.Errorf("insert build: %w", err)
	}

	for name, cat := range c.Categories() {
		payload, err := schema.MarshalCanonical(cat)
		if err != nil {
			return "", fmt.Errorf("marshal category %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO categories (name, payload) VALUES (?, ?)",
			name, string(payload),
		); err != nil {
			return "", fmt.Errorf("insert category %s: %w", name, err)
		}
	}

	for name, attr := range c.Dictionary() {
		payload, err := schema.MarshalCanonical(attr)
		if err != nil {
			return "", fmt.Errorf("marshal dictionary entry %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO dictionary (name, payload) VALUES (?, ?)",
			name, string(payload),
		); err != nil {
			return "", fmt.Errorf("insert dictionary entry %s: %w", name, err)
		}
	}

	for name, cls := range c.Classes() {
		payload, err := schema.MarshalCanonical(cls)
		if err != nil {
			return "", fmt.Errorf("marshal class %s: %w", name, err)
		}
		uid := 0
		if cls.UID != nil {
			uid = *cls.UID
		}
		if _, err := tx.Exec(
			"INSERT INTO classes (name, uid, category, payload) VALUES (?, ?, ?, ?)",
			name, uid, cls.Category, string(payload),
		); err != nil {
			return "", fmt.Errorf("insert class %s: %w", name, err)
		}
	}

	for name, obj := range c.Objects() {
		payload, err := schema.MarshalCanonical(obj)
		if err != nil {
			return "", fmt.Errorf("marshal object %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO objects (name, payload) VALUES (?, ?)",
			name, string(payload),
		); err != nil {
			return "", fmt.Errorf("insert object %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot write: %w", err)
	}
	return buildID, nil
}
