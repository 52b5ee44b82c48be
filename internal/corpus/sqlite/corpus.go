// Package sqlite is a persistent corpus on SQLite. The full-text
// strategy runs against an FTS5 index kept in sync by triggers.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	msqlite "modernc.org/sqlite"

	"docseek/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var registerFold sync.Once

// fold(text) lowercases with Unicode rules; SQLite's lower() only folds ASCII.
func registerFunctions() {
	registerFold.Do(func() {
		_ = msqlite.RegisterDeterministicScalarFunction("fold", 1,
			func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				switch v := args[0].(type) {
				case string:
					return strings.ToLower(v), nil
				case []byte:
					return strings.ToLower(string(v)), nil
				case nil:
					return nil, nil
				default:
					return fmt.Sprint(v), nil
				}
			})
	})
}

// Corpus stores chunks in a SQLite database.
type Corpus struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Corpus, error) {
	if path == "" {
		path = MemoryPath
	}
	registerFunctions()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus database: %w", err)
	}
	c := &Corpus{db: db, path: path}

	if err := c.configure(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure corpus database: %w", err)
	}
	if err := c.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate corpus database: %w", err)
	}
	return c, nil
}

func (c *Corpus) configure(ctx context.Context) error {
	if c.path == MemoryPath {
		// every connection would get its own empty database
		c.db.SetMaxOpenConns(1)
	} else {
		c.db.SetMaxOpenConns(4)
		c.db.SetMaxIdleConns(2)
	}
	c.db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := c.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return nil
}

func (c *Corpus) Path() string { return c.path }

func (c *Corpus) Close() error { return c.db.Close() }

func (c *Corpus) ReplaceDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, chunk_index, page_number, content, token_count,
			position, has_overlap, overlap_sentences, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chunks {
		if _, err := stmt.ExecContext(ctx,
			documentID, ch.ChunkIndex, ch.PageNumber, ch.Content, ch.TokenCount,
			ch.Position.String(), ch.HasOverlap, ch.OverlapSentences, ch.Fingerprint,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", ch.ChunkIndex, err)
		}
	}
	return tx.Commit()
}

const selectColumns = `c.document_id, c.chunk_index, c.page_number, c.content, c.token_count,
	c.position, c.has_overlap, c.overlap_sentences, c.content_hash`

// PhraseSearch matches the quoted phrase or, for typo tolerance, every
// term's leading runes as an FTS5 prefix query.
func (c *Corpus) PhraseSearch(ctx context.Context, phrase string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	match := BuildFTSQuery(phrase)
	if match == "" || limit <= 0 {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM chunks_fts f
		JOIN chunks c ON c.id = f.rowid
		WHERE chunks_fts MATCH ? AND (? = '' OR c.document_id = ?)
		ORDER BY f.rank, c.document_id, c.chunk_index
		LIMIT ?`,
		match, scope.DocumentID, scope.DocumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("phrase search: %w", err)
	}
	out, err := scanChunks(rows)
	if err != nil {
		return nil, fmt.Errorf("phrase search: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

func (c *Corpus) SubstringSearch(ctx context.Context, substr string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	return c.contains(ctx, substr, scope, limit)
}

func (c *Corpus) KeywordSearch(ctx context.Context, keyword string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	return c.contains(ctx, keyword, scope, limit)
}

func (c *Corpus) contains(ctx context.Context, needle string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	needle = strings.ToLower(needle)
	if needle == "" || limit <= 0 {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM chunks c
		WHERE instr(fold(c.content), ?) > 0 AND (? = '' OR c.document_id = ?)
		ORDER BY c.document_id, c.chunk_index
		LIMIT ?`,
		needle, scope.DocumentID, scope.DocumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	out, err := scanChunks(rows)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	return out, nil
}

// Count returns the number of chunks stored for documentID, or for the
// whole corpus when documentID is empty.
func (c *Corpus) Count(ctx context.Context, documentID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE ? = '' OR document_id = ?",
		documentID, documentID).Scan(&n)
	return n, err
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	defer rows.Close()
	var out []domain.Chunk
	for rows.Next() {
		var (
			ch       domain.Chunk
			position string
		)
		if err := rows.Scan(&ch.DocumentID, &ch.ChunkIndex, &ch.PageNumber, &ch.Content,
			&ch.TokenCount, &position, &ch.HasOverlap, &ch.OverlapSentences, &ch.Fingerprint); err != nil {
			return nil, err
		}
		p, err := domain.ParsePosition(position)
		if err != nil {
			return nil, err
		}
		ch.Position = p
		out = append(out, ch)
	}
	return out, rows.Err()
}

// BuildFTSQuery turns free text into an FTS5 MATCH expression: the exact
// phrase OR all term prefixes. Each term keeps its first max(3, n-2) runes.
func BuildFTSQuery(text string) string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if cleaned := cleanFTSTerm(w); strings.IndexFunc(cleaned, isTermRune) >= 0 {
			terms = append(terms, cleaned)
		}
	}
	if len(terms) == 0 {
		return ""
	}

	prefixes := make([]string, len(terms))
	for i, t := range terms {
		prefixes[i] = `"` + prefixOf(t) + `"*`
	}
	return `"` + strings.Join(terms, " ") + `" OR (` + strings.Join(prefixes, " AND ") + `)`
}

func prefixOf(term string) string {
	n := utf8.RuneCountInString(term)
	keep := n - 2
	if keep < 3 {
		keep = 3
	}
	if keep >= n {
		return term
	}
	return string([]rune(term)[:keep])
}

func isTermRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// cleanFTSTerm drops characters that carry meaning in FTS5 query syntax.
func cleanFTSTerm(term string) string {
	var b strings.Builder
	for _, r := range term {
		switch r {
		case '"', '*', '(', ')', ':', '^', '{', '}', '+', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
