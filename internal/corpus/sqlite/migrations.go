package sqlite

import (
	"context"
	"fmt"
)

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

func migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_chunks_and_fts",
			SQL: `
				CREATE TABLE IF NOT EXISTS chunks (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					document_id TEXT NOT NULL,
					chunk_index INTEGER NOT NULL,
					page_number INTEGER NOT NULL,
					content TEXT NOT NULL,
					token_count INTEGER NOT NULL,
					position TEXT NOT NULL,
					has_overlap INTEGER NOT NULL DEFAULT 0,
					overlap_sentences INTEGER NOT NULL DEFAULT 0,
					content_hash TEXT NOT NULL,
					UNIQUE (document_id, chunk_index)
				);

				-- identical chunks may repeat inside a document
				CREATE INDEX IF NOT EXISTS idx_chunks_content_hash ON chunks(content_hash);

				CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
					content,
					content=chunks,
					content_rowid=id,
					tokenize='porter unicode61'
				);

				CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
					INSERT INTO chunks_fts(rowid, content) VALUES (new.id, new.content);
				END;

				CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
					INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.id, old.content);
				END;

				CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
					INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES ('delete', old.id, old.content);
					INSERT INTO chunks_fts(rowid, content) VALUES (new.id, new.content);
				END;
			`,
		},
	}
}

func (c *Corpus) runMigrations(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := c.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations() {
		if m.Version <= current {
			continue
		}
		if err := c.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (c *Corpus) runMigration(ctx context.Context, m Migration) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
