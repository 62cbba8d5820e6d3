package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/scheme-research/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

var _ driven.IndexStore = (*IndexStore)(nil)

// DefaultFileName is the database file name inside the data directory.
const DefaultFileName = "index.db"

// IndexStore is a SQLite-backed driven.IndexStore.
// The whole snapshot lives in two tables and is replaced in one transaction.
type IndexStore struct {
	db   *sql.DB
	path string
}

// NewIndexStore opens (or creates) the database at path and migrates it.
// If path is empty, defaults to ~/.scheme-research/index.db.
func NewIndexStore(path string) (*IndexStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".scheme-research", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &IndexStore{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *IndexStore) Path() string {
	return s.path
}

// SchemaVersion returns the highest applied migration version.
func (s *IndexStore) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// Save replaces the stored snapshot. Either every row is written or none.
func (s *IndexStore) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, version, metric, dimensions)
		VALUES (1, ?, ?, ?)
	`, snapshot.Version, string(snapshot.Metric), snapshot.Dimensions)
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_documents (position, id, source, title, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range snapshot.Documents {
		doc := &snapshot.Documents[i]
		_, err := stmt.ExecContext(ctx, i, doc.ID, doc.Source, doc.Title, doc.Content,
			encodeVector(doc.Embedding), doc.CreatedAt)
		if err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads the stored snapshot.
func (s *IndexStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	var snapshot domain.IndexSnapshot
	var metric string
	err := s.db.QueryRowContext(ctx,
		"SELECT version, metric, dimensions FROM index_meta WHERE id = 1",
	).Scan(&snapshot.Version, &metric, &snapshot.Dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	snapshot.Metric = domain.DistanceMetric(metric)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, content, embedding, created_at
		FROM index_documents
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	defer rows.Close()

	snapshot.Documents = []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Content, &blob, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
		}
		if len(blob)%4 != 0 {
			return nil, fmt.Errorf("%w: document %q embedding is %d bytes", domain.ErrStoreCorrupt, doc.ID, len(blob))
		}
		doc.Embedding = decodeVector(blob)
		snapshot.Documents = append(snapshot.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// encodeVector packs v as little-endian float32s.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return v
}
