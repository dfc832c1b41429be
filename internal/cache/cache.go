// Package cache implements the result cache of SPEC_FULL.md's domain
// stack: a small persisted store, keyed by the SHA-256 of input text,
// holding the canonical form and a summary of the resolved document so
// repeated invocations over an unchanged file can skip reparsing.
//
// Two backends follow the teacher's db/sqlite.go split between a local
// file store and a shared remote one, though STON keeps them as
// distinct implementations rather than two dialector configurations of
// one gorm connection: a local cache opens glebarez/sqlite (the
// teacher's cgo-free dialector choice) through gorm for on-disk files,
// and a remote cache opens the plain database/sql "libsql" driver
// registered by tursodatabase/libsql-client-go for a shared
// "libsql://"/"https://" database, the same way the teacher's own DB
// layer opens drivers by name.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is the persisted row for one cached canonicalization result.
type Entry struct {
	Digest         string         `gorm:"primaryKey;type:varchar(64)"`
	CanonicalForm  string         `gorm:"type:text;not null"`
	GlobalCount    int            `gorm:"not null"`
	ConstructCount int            `gorm:"not null"`
	Diagnostics    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

// Summary is the subset of a resolved Document a caller needs to decide
// whether a cache hit is usable without re-walking the document itself.
type Summary struct {
	CanonicalForm  string
	GlobalCount    int
	ConstructCount int
	Diagnostics    []string
}

// Cache is the common surface both backends implement.
type Cache interface {
	Lookup(text string) (Summary, bool, error)
	Store(text string, summary Summary) error
	Close() error
}

// Digest computes the cache key for a piece of input text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Open connects to dsn: a "libsql://"/"http://"/"https://" URL selects
// the remote backend (STON_CACHE_AUTH_TOKEN supplies a bearer token if
// set); anything else is treated as a local sqlite file path.
func Open(dsn string) (Cache, error) {
	if isRemoteURL(dsn) {
		return openRemote(dsn)
	}
	return openLocal(dsn)
}

func isRemoteURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "libsql://")
}

// --- local backend: gorm + glebarez/sqlite ---

type localCache struct {
	db *gorm.DB
}

func openLocal(dsn string) (Cache, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ston: failed to create cache directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("ston: failed to open cache database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("ston: cache migration failed: %w", err)
	}
	return &localCache{db: db}, nil
}

func (c *localCache) Lookup(text string) (Summary, bool, error) {
	var row Entry
	err := c.db.Where("digest = ?", Digest(text)).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return Summary{}, false, nil
		}
		return Summary{}, false, fmt.Errorf("ston: cache lookup failed: %w", err)
	}
	return entryToSummary(row)
}

func (c *localCache) Store(text string, summary Summary) error {
	row, err := summaryToEntry(text, summary)
	if err != nil {
		return err
	}
	return c.db.Save(&row).Error
}

func (c *localCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- remote backend: plain database/sql over the "libsql" driver ---

type remoteCache struct {
	db *sql.DB
}

func openRemote(dsn string) (Cache, error) {
	connDSN := dsn
	if token := os.Getenv("STON_CACHE_AUTH_TOKEN"); token != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		connDSN = dsn + sep + "authToken=" + token
	}
	db, err := sql.Open("libsql", connDSN)
	if err != nil {
		return nil, fmt.Errorf("ston: failed to open remote cache: %w", err)
	}
	const ddl = `CREATE TABLE IF NOT EXISTS entries (
		digest TEXT PRIMARY KEY,
		canonical_form TEXT NOT NULL,
		global_count INTEGER NOT NULL,
		construct_count INTEGER NOT NULL,
		diagnostics TEXT,
		created_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("ston: remote cache migration failed: %w", err)
	}
	return &remoteCache{db: db}, nil
}

func (c *remoteCache) Lookup(text string) (Summary, bool, error) {
	row := c.db.QueryRow(
		`SELECT canonical_form, global_count, construct_count, diagnostics FROM entries WHERE digest = ?`,
		Digest(text),
	)
	var (
		canonicalForm         string
		globalCount, consCount int
		diagJSON              sql.NullString
	)
	if err := row.Scan(&canonicalForm, &globalCount, &consCount, &diagJSON); err != nil {
		if err == sql.ErrNoRows {
			return Summary{}, false, nil
		}
		return Summary{}, false, fmt.Errorf("ston: remote cache lookup failed: %w", err)
	}
	var diagnostics []string
	if diagJSON.Valid && diagJSON.String != "" {
		if err := json.Unmarshal([]byte(diagJSON.String), &diagnostics); err != nil {
			return Summary{}, false, fmt.Errorf("ston: remote cache diagnostics decode failed: %w", err)
		}
	}
	return Summary{
		CanonicalForm:  canonicalForm,
		GlobalCount:    globalCount,
		ConstructCount: consCount,
		Diagnostics:    diagnostics,
	}, true, nil
}

func (c *remoteCache) Store(text string, summary Summary) error {
	diagJSON, err := json.Marshal(summary.Diagnostics)
	if err != nil {
		return fmt.Errorf("ston: remote cache diagnostics encode failed: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO entries (digest, canonical_form, global_count, construct_count, diagnostics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET
		   canonical_form = excluded.canonical_form,
		   global_count = excluded.global_count,
		   construct_count = excluded.construct_count,
		   diagnostics = excluded.diagnostics`,
		Digest(text), summary.CanonicalForm, summary.GlobalCount, summary.ConstructCount, string(diagJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ston: remote cache store failed: %w", err)
	}
	return nil
}

func (c *remoteCache) Close() error {
	return c.db.Close()
}

// --- shared helpers ---

func entryToSummary(row Entry) (Summary, bool, error) {
	var diagnostics []string
	if len(row.Diagnostics) > 0 {
		if err := json.Unmarshal(row.Diagnostics, &diagnostics); err != nil {
			return Summary{}, false, fmt.Errorf("ston: cache diagnostics decode failed: %w", err)
		}
	}
	return Summary{
		CanonicalForm:  row.CanonicalForm,
		GlobalCount:    row.GlobalCount,
		ConstructCount: row.ConstructCount,
		Diagnostics:    diagnostics,
	}, true, nil
}

func summaryToEntry(text string, summary Summary) (Entry, error) {
	diagJSON, err := json.Marshal(summary.Diagnostics)
	if err != nil {
		return Entry{}, fmt.Errorf("ston: cache diagnostics encode failed: %w", err)
	}
	return Entry{
		Digest:         Digest(text),
		CanonicalForm:  summary.CanonicalForm,
		GlobalCount:    summary.GlobalCount,
		ConstructCount: summary.ConstructCount,
		Diagnostics:    datatypes.JSON(diagJSON),
	}, nil
}
