package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"
	"gopkg.in/yaml.v2"
)

// ChunkCache stores serialized density grids in a local SQLite database,
// compressed with zstd. Entries are keyed by generation seed, chunk
// coordinates and grid size, so changing any generation input misses the
// cache instead of returning stale geometry.
type ChunkCache struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Key identifies one cached chunk grid
type Key struct {
	Seed   int64
	X      int
	Y      int
	Z      int
	Size   int
	Digest string // digest of the generation settings
}

// Open opens (or creates) the cache database at path
func Open(path string) (*ChunkCache, error) {
	if path == "" {
		return nil, fmt.Errorf("empty cache path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is happiest with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	return &ChunkCache{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style write pattern of cache warming
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			seed INTEGER NOT NULL,
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			size INTEGER NOT NULL,
			digest TEXT NOT NULL,
			blob BLOB NOT NULL,
			stored_at TEXT NOT NULL,
			PRIMARY KEY (seed, cx, cy, cz, size, digest)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database and codec resources
func (c *ChunkCache) Close() error {
	if c == nil {
		return nil
	}
	c.enc.Close()
	c.dec.Close()
	return c.db.Close()
}

// Get returns the cached blob for key, or (nil, false) on a miss
func (c *ChunkCache) Get(key Key) ([]byte, bool, error) {
	var compressed []byte
	err := c.db.QueryRow(
		`SELECT blob FROM chunks WHERE seed = ? AND cx = ? AND cy = ? AND cz = ? AND size = ? AND digest = ?`,
		key.Seed, key.X, key.Y, key.Z, key.Size, key.Digest,
	).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read: %v", err)
	}

	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("cache blob corrupt: %v", err)
	}
	return data, true, nil
}

// Put stores a blob under key, replacing any previous entry
func (c *ChunkCache) Put(key Key, data []byte) error {
	compressed := c.enc.EncodeAll(data, nil)
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO chunks (seed, cx, cy, cz, size, digest, blob, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Seed, key.X, key.Y, key.Z, key.Size, key.Digest, compressed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache write: %v", err)
	}
	return nil
}

// Purge removes every entry whose digest differs from keep, reclaiming
// space after generation settings change.
func (c *ChunkCache) Purge(keep string) (int64, error) {
	res, err := c.db.Exec(`DELETE FROM chunks WHERE digest != ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %v", err)
	}
	return res.RowsAffected()
}

// Digest returns a stable hex digest of a settings value for cache keying.
// Any field change produces a different digest.
func Digest(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest settings: %v", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Count returns the number of cached chunks
func (c *ChunkCache) Count() (int64, error) {
	var n int64
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
