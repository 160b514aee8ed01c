package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "corpus.db"

// Store is a SQLite-backed corpus store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.CorpusStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpus/data/corpus.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w: %w", domain.ErrStorage, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	applied, err := migrations.Up(context.Background(), db, migrations.Embedded())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w: %w", domain.ErrStorage, err)
	}
	if len(applied) > 0 {
		logger.Debug("sqlite: applied schema versions %v", applied)
	}

	logger.Debug("sqlite: opened %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// storageErr wraps an infrastructure failure with domain.ErrStorage.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// ==================== Documents ====================

// AddDocument inserts a document. It returns false if the ID is taken.
func (s *Store) AddDocument(ctx context.Context, docID, title, path string) (bool, error) {
	if docID == "" {
		return false, fmt.Errorf("adding document: %w: empty document id", domain.ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, title, path, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO NOTHING
	`, docID, title, path, time.Now().UTC())
	if err != nil {
		return false, storageErr("adding document", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("adding document", err)
	}
	if n == 0 {
		logger.Debug("sqlite: document %s already exists", docID)
		return false, nil
	}
	return true, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, title, path, created_at
		FROM documents WHERE doc_id = ?
	`, docID)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Path, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("scanning document", err)
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by title.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, title, path, created_at
		FROM documents
		ORDER BY title, doc_id
	`)
	if err != nil {
		return nil, storageErr("querying documents", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Path, &doc.CreatedAt); err != nil {
			return nil, storageErr("scanning document", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating documents", err)
	}

	return docs, nil
}

// DeleteDocument removes a document, its chunks and their index entries
// in one transaction. It returns false if the document did not exist.
func (s *Store) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storageErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE doc_id = ?", docID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("checking document", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks_fts
		WHERE rowid IN (SELECT chunk_id FROM chunks WHERE doc_id = ?)
	`, docID); err != nil {
		return false, storageErr("deleting index entries", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE doc_id = ?", docID)
	if err != nil {
		return false, storageErr("deleting chunks", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE doc_id = ?", docID); err != nil {
		return false, storageErr("deleting document", err)
	}

	if err := tx.Commit(); err != nil {
		return false, storageErr("committing transaction", err)
	}

	logger.Debug("sqlite: deleted document %s with %d chunks", docID, removed)
	return true, nil
}

// ==================== Chunks ====================

// AddChunk stores a chunk and its index entry atomically.
func (s *Store) AddChunk(ctx context.Context, docID, text string, start, end, pageNumber int) (int64, error) {
	ids, err := s.insertChunks(ctx, docID, []chunkRow{{
		text:  text,
		start: start,
		end:   end,
		page:  pageNumber,
	}})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddChunks stores chunks in one transaction. Any failure leaves the
// store unchanged.
func (s *Store) AddChunks(ctx context.Context, docID string, chunks []domain.Chunk) ([]int64, error) {
	if len(chunks) == 0 {
		return []int64{}, nil
	}

	rows := make([]chunkRow, len(chunks))
	for i, c := range chunks {
		rows[i] = chunkRow{
			text:     c.Text,
			start:    c.StartOffset,
			end:      c.EndOffset,
			page:     c.PrimaryPage(),
			metadata: c.Metadata,
		}
	}
	return s.insertChunks(ctx, docID, rows)
}

type chunkRow struct {
	text       string
	start, end int
	page       int
	metadata   map[string]any
}

func (s *Store) insertChunks(ctx context.Context, docID string, rows []chunkRow) ([]int64, error) {
	for i, r := range rows {
		if r.start < 0 || r.end <= r.start {
			return nil, fmt.Errorf("adding chunk %d: %w: offsets [%d, %d)",
				i, domain.ErrInvalidInput, r.start, r.end)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE doc_id = ?", docID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adding chunk: document %s: %w", docID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("checking document", err)
	}

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (doc_id, text, start_offset, end_offset, page_number, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, storageErr("preparing statement", err)
	}
	defer chunkStmt.Close()

	indexStmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks_fts (rowid, text) VALUES (?, ?)")
	if err != nil {
		return nil, storageErr("preparing statement", err)
	}
	defer indexStmt.Close()

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		metadata, err := marshalMetadata(r.metadata)
		if err != nil {
			return nil, fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		res, err := chunkStmt.ExecContext(ctx, docID, r.text, r.start, r.end, nullPage(r.page), metadata)
		if err != nil {
			return nil, storageErr("inserting chunk", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, storageErr("reading chunk id", err)
		}

		if _, err := indexStmt.ExecContext(ctx, id, r.text); err != nil {
			return nil, storageErr("indexing chunk", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("committing transaction", err)
	}

	logger.Debug("sqlite: stored %d chunks for %s", len(ids), docID)
	return ids, nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, chunkID int64) (*domain.StoredChunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chunk_id, doc_id, text, start_offset, end_offset, page_number, metadata
		FROM chunks WHERE chunk_id = ?
	`, chunkID)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetDocumentChunks returns the document's chunks intersecting r, ordered
// by start offset. An unknown document yields no chunks.
func (s *Store) GetDocumentChunks(ctx context.Context, docID string, r domain.OffsetRange) ([]domain.StoredChunk, error) {
	query := `
		SELECT chunk_id, doc_id, text, start_offset, end_offset, page_number, metadata
		FROM chunks WHERE doc_id = ?`
	args := []any{docID}

	// Half-open overlap: chunk.end > start AND chunk.start < end.
	if r.Start != nil {
		query += " AND end_offset > ?"
		args = append(args, *r.Start)
	}
	if r.End != nil {
		query += " AND start_offset < ?"
		args = append(args, *r.End)
	}
	query += " ORDER BY start_offset, chunk_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("querying chunks", err)
	}
	defer rows.Close()

	chunks := []domain.StoredChunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating chunks", err)
	}

	return chunks, nil
}

// ==================== Search ====================

// Search returns chunks matching any query term, best first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, c.doc_id, c.text, -bm25(chunks_fts) AS score,
		       c.start_offset, c.end_offset, c.page_number, d.title, d.path
		FROM chunks_fts
		JOIN chunks c ON c.chunk_id = chunks_fts.rowid
		JOIN documents d ON d.doc_id = c.doc_id
		WHERE chunks_fts MATCH ?
		ORDER BY score DESC, c.chunk_id ASC
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, storageErr("searching chunks", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var r domain.SearchResult
		var page sql.NullInt64
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Text, &r.Score,
			&r.StartOffset, &r.EndOffset, &page, &r.DocumentTitle, &r.DocumentPath); err != nil {
			return nil, storageErr("scanning search result", err)
		}
		r.PageNumber = int(page.Int64)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating search results", err)
	}

	logger.Debug("sqlite: %q matched %d chunks", match, len(results))
	return results, nil
}

// ftsQuery turns free text into an FTS5 expression that ORs quoted terms,
// so user punctuation never reaches the FTS5 query parser.
func ftsQuery(query string) string {
	terms := domain.SearchTerms(query)
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

// ==================== Aggregates ====================

// GetStats returns document and chunk counts.
func (s *Store) GetStats(ctx context.Context) (domain.CorpusStats, error) {
	var stats domain.CorpusStats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM documents), (SELECT COUNT(*) FROM chunks)
	`).Scan(&stats.Documents, &stats.Chunks)
	if err != nil {
		return domain.CorpusStats{}, storageErr("counting corpus", err)
	}
	return stats, nil
}

// CheckIntegrity compares chunk rows with index entries.
func (s *Store) CheckIntegrity(ctx context.Context) (domain.IntegrityReport, error) {
	var report domain.IntegrityReport

	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM chunks), (SELECT COUNT(*) FROM chunks_fts)
	`).Scan(&report.Chunks, &report.IndexEntries)
	if err != nil {
		return domain.IntegrityReport{}, storageErr("counting index entries", err)
	}

	checks := []struct {
		dest  *[]int64
		query string
	}{
		{&report.Missing, `
			SELECT chunk_id FROM chunks
			WHERE chunk_id NOT IN (SELECT rowid FROM chunks_fts)
			ORDER BY chunk_id`},
		{&report.Orphaned, `
			SELECT rowid FROM chunks_fts
			WHERE rowid NOT IN (SELECT chunk_id FROM chunks)
			ORDER BY rowid`},
		{&report.Mismatched, `
			SELECT c.chunk_id FROM chunks c
			JOIN chunks_fts f ON f.rowid = c.chunk_id
			WHERE f.text != c.text
			ORDER BY c.chunk_id`},
	}
	for _, check := range checks {
		ids, err := s.queryIDs(ctx, check.query)
		if err != nil {
			return domain.IntegrityReport{}, err
		}
		*check.dest = ids
	}

	return report, nil
}

func (s *Store) queryIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("checking integrity", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scanning id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating ids", err)
	}
	return ids, nil
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.StoredChunk, error) {
	var chunk domain.StoredChunk
	var page sql.NullInt64
	var metadataJSON sql.NullString

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text,
		&chunk.StartOffset, &chunk.EndOffset, &page, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storageErr("scanning chunk", err)
	}

	chunk.PageNumber = int(page.Int64)

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullPage(page int) sql.NullInt64 {
	if page <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(page), Valid: true}
}
