// Package cache persists analysis results to disk so a later incremental
// run can reload them instead of rescanning the whole codebase: SQLite
// tables (database/sql + mattn/go-sqlite3), one keyed by file path that
// also records each file's content identity (pkg/cache.FileIdentity, a
// highwayhash.New64 digest), storing the previous run's issues and
// symbol-reference index as JSON blobs —
// matching the teacher's own preference for plain encoding/json over a
// custom binary codec (pkg/semantic/types).
package cache

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hatlesswizard/hakanaflow/pkg/diffengine"
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
)

// schemaVersion is bumped whenever the stored blob shapes change
// incompatibly. A stored row whose schema_version doesn't match is treated
// as a full cache miss rather than an error, the same "missing cache
// entries forces full reanalysis" behavior the original's
// load_cached_existing_issues/load_cached_existing_references fall back to
// on a deserialize failure.
const schemaVersion = 1

const createTableSQL = `
CREATE TABLE IF NOT EXISTS analysis_cache (
	file_path       TEXT PRIMARY KEY,
	schema_version  INTEGER NOT NULL,
	file_identity   INTEGER NOT NULL,
	issues_blob     BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS reference_cache (
	id              INTEGER PRIMARY KEY CHECK (id = 0),
	schema_version  INTEGER NOT NULL,
	references_blob BLOB NOT NULL
);
`

// Store is a SQLite-backed implementation of diffengine.CacheLoader, plus
// the save-side methods an analysis run uses to persist its own output for
// the next run to load.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFileIssues persists the issues raised against file, tagged with its
// current content identity so a later load can detect the file having
// been replaced out from under the cache.
func (s *Store) SaveFileIssues(file hpos.FilePath, identity FileIdentity, issues []issue.Issue) error {
	blob, err := json.Marshal(issues)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO analysis_cache (file_path, schema_version, file_identity, issues_blob)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
		   schema_version=excluded.schema_version,
		   file_identity=excluded.file_identity,
		   issues_blob=excluded.issues_blob`,
		string(file), schemaVersion, uint64(identity), blob,
	)
	return err
}

// SaveReferences persists the whole-program reference index.
func (s *Store) SaveReferences(idx *ReferenceIndex) error {
	blob, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO reference_cache (id, schema_version, references_blob)
		 VALUES (0, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   schema_version=excluded.schema_version,
		   references_blob=excluded.references_blob`,
		schemaVersion, blob,
	)
	return err
}

// LoadExistingIssues implements diffengine.CacheLoader. ok is false on a
// missing table, a schema-version mismatch, or a corrupt blob — every case
// degrades to "no usable cache", never a hard error, since the caller's
// only recourse either way is a full rescan.
func (s *Store) LoadExistingIssues() (map[hpos.FilePath][]issue.Issue, bool) {
	rows, err := s.db.Query(`SELECT file_path, schema_version, issues_blob FROM analysis_cache`)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	result := make(map[hpos.FilePath][]issue.Issue)
	for rows.Next() {
		var filePath string
		var version int
		var blob []byte
		if err := rows.Scan(&filePath, &version, &blob); err != nil {
			return nil, false
		}
		if version != schemaVersion {
			return nil, false
		}
		var issues []issue.Issue
		if err := json.Unmarshal(blob, &issues); err != nil {
			return nil, false
		}
		result[hpos.FilePath(filePath)] = issues
	}
	if err := rows.Err(); err != nil {
		return nil, false
	}
	return result, true
}

// LoadExistingReferences implements diffengine.CacheLoader.
func (s *Store) LoadExistingReferences() (diffengine.SymbolReferences, bool) {
	row := s.db.QueryRow(`SELECT schema_version, references_blob FROM reference_cache WHERE id = 0`)

	var version int
	var blob []byte
	if err := row.Scan(&version, &blob); err != nil {
		return nil, false
	}
	if version != schemaVersion {
		return nil, false
	}

	idx := NewReferenceIndex()
	if err := json.Unmarshal(blob, idx); err != nil {
		return nil, false
	}
	return idx, true
}
