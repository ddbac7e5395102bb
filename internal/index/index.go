// Package index provides the file-backed similarity index: a single SQLite
// database holding every passage of the most recently ingested document
// together with its embedding. Each build writes a complete database to a
// temporary file next to the live one and renames it into place, so the
// persisted index is always either the old one or the new one.
package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/54b3r/aimicro-go/internal/rag"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// FileName is the name of the live index database inside the index directory.
const FileName = "passages.db"

// metaFingerprint and metaBuiltAt are the keys stored in the meta table.
const (
	metaFingerprint = "fingerprint"
	metaBuiltAt     = "built_at"
)

// SQLiteBuilder implements rag.Builder with one SQLite file per index.
type SQLiteBuilder struct {
	// dir is the directory holding the live database and build temp files.
	dir string
}

// NewSQLiteBuilder returns a builder that keeps its index under dir,
// creating the directory if needed.
func NewSQLiteBuilder(dir string) (*SQLiteBuilder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index: could not create %s: %w", dir, err)
	}
	return &SQLiteBuilder{dir: dir}, nil
}

// Path returns the location of the live index database.
func (b *SQLiteBuilder) Path() string {
	return filepath.Join(b.dir, FileName)
}

// Build writes passages and vectors to a fresh database and renames it over
// the live one. The returned index is an in-memory snapshot of what was
// written.
func (b *SQLiteBuilder) Build(ctx context.Context, fingerprint string, passages []rag.Passage, vectors [][]float32) (rag.Index, error) {
	if len(passages) != len(vectors) {
		return nil, fmt.Errorf("index: %d passages but %d vectors", len(passages), len(vectors))
	}
	snap, err := newSnapshot(fingerprint, passages, vectors)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(b.dir, "passages-*.db.tmp")
	if err != nil {
		return nil, fmt.Errorf("index: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(ctx, tmpPath, fingerprint, passages, vectors); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, b.Path()); err != nil {
		return nil, fmt.Errorf("index: replace %s: %w", b.Path(), err)
	}
	committed = true

	if err := syncDir(b.dir); err != nil {
		return nil, err
	}

	return snap, nil
}

// Load reads the live database into memory. It returns rag.ErrNoIndex when
// no index has been built.
func (b *SQLiteBuilder) Load(ctx context.Context) (rag.Index, error) {
	if _, err := os.Stat(b.Path()); errors.Is(err, os.ErrNotExist) {
		return nil, rag.ErrNoIndex
	}
	return read(ctx, b.Path())
}

// syncDir flushes dir so a completed rename survives a crash. The database
// contents are already durable once SQLite commits.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("index: open %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("index: sync %s: %w", dir, err)
	}
	return nil
}

// open opens the database at path with the driver settings used everywhere
// in this package.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	// A single connection keeps the build transaction on one handle.
	db.SetMaxOpenConns(1)
	return db, nil
}

// migrate creates the schema.
func migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS passages (
    seq        INTEGER PRIMARY KEY,
    id         TEXT    NOT NULL UNIQUE,
    source     TEXT    NOT NULL,
    page       INTEGER NOT NULL,
    content    TEXT    NOT NULL,
    metadata   TEXT    NOT NULL,  -- JSON object
    embedding  BLOB    NOT NULL   -- little-endian float32
);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("index: migrate: %w", err)
	}
	return nil
}

// write populates a new database at path in a single transaction.
func write(ctx context.Context, path, fingerprint string, passages []rag.Passage, vectors [][]float32) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const metaQ = `INSERT INTO meta (key, value) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, metaQ, metaFingerprint, fingerprint); err != nil {
		return fmt.Errorf("index: write meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, metaQ, metaBuiltAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("index: write meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO passages (seq, id, source, page, content, metadata, embedding) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range passages {
		meta, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("index: encode metadata for %s: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, i, p.ID, p.Source, p.Page, p.Content, string(meta), encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("index: insert %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}

// read loads every passage and vector from the database at path.
func read(ctx context.Context, path string) (rag.Index, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var fingerprint string
	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaFingerprint).Scan(&fingerprint)
	if err != nil {
		return nil, fmt.Errorf("index: read fingerprint: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, source, page, content, metadata, embedding FROM passages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("index: read passages: %w", err)
	}
	defer rows.Close()

	var (
		passages []rag.Passage
		vectors  [][]float32
	)
	for rows.Next() {
		var (
			p    rag.Passage
			meta string
			blob []byte
		)
		if err := rows.Scan(&p.ID, &p.Source, &p.Page, &p.Content, &meta, &blob); err != nil {
			return nil, fmt.Errorf("index: scan passage: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &p.Metadata); err != nil {
			return nil, fmt.Errorf("index: decode metadata for %s: %w", p.ID, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("index: decode embedding for %s: %w", p.ID, err)
		}
		passages = append(passages, p)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: read rows: %w", err)
	}

	return newSnapshot(fingerprint, passages, vectors)
}

// encodeVector converts a float32 slice to a little-endian byte slice.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector converts a little-endian byte slice back to a float32 slice.
func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
