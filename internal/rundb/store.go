// Package rundb keeps a local, queryable ledger of completed import
// runs in DuckDB. One row per successful import; the ledger is
// append-only.
package rundb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Run is one completed import.
type Run struct {
	RunID        string
	ImportedAt   time.Time
	VCFPath      string
	VCFVersion   float64
	NumVariants  int
	NumGenotypes int
	NumContigs   int
	MD5          string
	ObjectRef    string
}

// Store manages the DuckDB connection backing the ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the ledger table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS import_runs (
		run_id VARCHAR PRIMARY KEY,
		imported_at TIMESTAMP,
		vcf_path VARCHAR,
		vcf_version DOUBLE,
		num_variants BIGINT,
		num_genotypes BIGINT,
		num_contigs BIGINT,
		md5 VARCHAR,
		object_ref VARCHAR
	)`)
	return err
}

// RecordRun appends a completed run to the ledger.
func (s *Store) RecordRun(run Run) error {
	_, err := s.db.Exec(`INSERT INTO import_runs
		(run_id, imported_at, vcf_path, vcf_version, num_variants, num_genotypes, num_contigs, md5, object_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ImportedAt, run.VCFPath, run.VCFVersion,
		run.NumVariants, run.NumGenotypes, run.NumContigs, run.MD5, run.ObjectRef)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0
// means no limit.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT run_id, imported_at, vcf_path, vcf_version,
		num_variants, num_genotypes, num_contigs, md5, object_ref
		FROM import_runs ORDER BY imported_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.ImportedAt, &r.VCFPath, &r.VCFVersion,
			&r.NumVariants, &r.NumGenotypes, &r.NumContigs, &r.MD5, &r.ObjectRef); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
