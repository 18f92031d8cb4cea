// Package storage provides the two-tier key-value store backing the
// Tomato Clock engine. Uses SQLite in WAL mode for crash-safe writes.
//
// Tier "sync" mirrors a size-limited synchronizing store and carries a
// byte quota; tier "local" is the unbounded local store. Writes that
// would exceed a tier's quota fail with domain.ErrStorageCapacity so
// callers can tell capacity exhaustion apart from other failures.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/tomato-clock/tomato/internal/domain"
)

// Tier names a storage tier.
type Tier string

const (
	TierLocal Tier = "local"
	TierSync  Tier = "sync"
)

// Limits sets per-tier byte quotas. Zero means unlimited.
type Limits struct {
	LocalBytes int64
	SyncBytes  int64
}

// DefaultLimits mirrors the browser storage model: a ~100 KiB sync
// quota and no limit on the local tier.
func DefaultLimits() Limits {
	return Limits{SyncBytes: 100 * 1024}
}

// Bucket is a single tier's key-value view. Values are opaque bytes;
// callers store JSON documents.
type Bucket interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// DB wraps a SQLite connection holding both tiers.
type DB struct {
	db     *sql.DB
	limits Limits
}

// Open creates or opens the store at dir/state.db with default limits.
func Open(dir string) (*DB, error) {
	return OpenWithLimits(dir, DefaultLimits())
}

// OpenWithLimits creates or opens the store with explicit tier quotas.
// Enables WAL mode and a 5-second busy timeout.
func OpenWithLimits(dir string, limits Limits) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, limits: limits}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the underlying connection is alive.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Quota returns the byte quota for a tier. Zero means unlimited.
func (d *DB) Quota(tier Tier) int64 {
	return d.quotaFor(tier)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			tier  TEXT NOT NULL,
			key   TEXT NOT NULL,
			value BLOB NOT NULL,
			PRIMARY KEY (tier, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_tier ON kv(tier)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Get retrieves a value from a tier. The second return value reports
// whether the key was present.
func (d *DB) Get(tier Tier, key string) ([]byte, bool, error) {
	var value []byte
	err := d.db.QueryRow(
		`SELECT value FROM kv WHERE tier = ? AND key = ?`, string(tier), key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores a value in a tier, replacing any previous value. Fails
// with domain.ErrStorageCapacity if the write would push the tier past
// its quota; the previous value is left untouched in that case.
func (d *DB) Set(tier Tier, key string, value []byte) error {
	quota := d.quotaFor(tier)
	if quota > 0 {
		used, err := d.tierBytesExcluding(tier, key)
		if err != nil {
			return fmt.Errorf("measure tier %s: %w", tier, err)
		}
		if used+int64(len(value)) > quota {
			return fmt.Errorf("set %s/%s (%d bytes): %w", tier, key, len(value), domain.ErrStorageCapacity)
		}
	}

	_, err := d.db.Exec(
		`INSERT INTO kv (tier, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(tier, key) DO UPDATE SET value=excluded.value`,
		string(tier), key, value,
	)
	return err
}

// Remove deletes a key from a tier. Removing an absent key is a no-op.
func (d *DB) Remove(tier Tier, key string) error {
	_, err := d.db.Exec(`DELETE FROM kv WHERE tier = ? AND key = ?`, string(tier), key)
	return err
}

// UsedBytes returns the total stored bytes in a tier.
func (d *DB) UsedBytes(tier Tier) (int64, error) {
	return d.tierBytesExcluding(tier, "")
}

func (d *DB) quotaFor(tier Tier) int64 {
	switch tier {
	case TierSync:
		return d.limits.SyncBytes
	default:
		return d.limits.LocalBytes
	}
}

// tierBytesExcluding sums value sizes in a tier, skipping one key so
// replacement writes are charged only for their new value.
func (d *DB) tierBytesExcluding(tier Tier, key string) (int64, error) {
	var used sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(LENGTH(value)) FROM kv WHERE tier = ? AND key != ?`,
		string(tier), key,
	).Scan(&used)
	if err != nil {
		return 0, err
	}
	return used.Int64, nil
}

// ─── Bucket Views ───────────────────────────────────────────────────────────

type tierBucket struct {
	db   *DB
	tier Tier
}

func (b tierBucket) Get(key string) ([]byte, bool, error) { return b.db.Get(b.tier, key) }
func (b tierBucket) Set(key string, value []byte) error   { return b.db.Set(b.tier, key, value) }
func (b tierBucket) Remove(key string) error              { return b.db.Remove(b.tier, key) }

// Local returns the unbounded local tier.
func (d *DB) Local() Bucket { return tierBucket{db: d, tier: TierLocal} }

// Sync returns the quota-limited synchronizing tier.
func (d *DB) Sync() Bucket { return tierBucket{db: d, tier: TierSync} }
