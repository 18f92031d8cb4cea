// Package timeline implements the append-only log of completed timer
// sessions. Entries live as a JSON array in the local storage tier;
// older installs kept them in the size-limited sync tier, and the
// store migrates that data local on startup.
//
// Entries are held raw until read so that legacy-shape entries survive
// rewrites byte-for-byte; decoding to the canonical form happens only
// at the read boundary.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/infra/metrics"
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

const timelineKey = "timeline"

// Store is the timeline event store over both storage tiers.
type Store struct {
	local storage.Bucket
	sync  storage.Bucket
}

// NewStore creates a timeline store. Reads prefer the local tier and
// fall back to sync for installs that have not migrated yet.
func NewStore(local, sync storage.Bucket) *Store {
	return &Store{local: local, sync: sync}
}

// ─── Raw Tier Access ────────────────────────────────────────────────────────

func readTier(b storage.Bucket) ([]json.RawMessage, bool, error) {
	raw, ok, err := b.Get(timelineKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("decode timeline array: %w", err)
	}
	return entries, true, nil
}

func writeTier(b storage.Bucket, entries []json.RawMessage) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode timeline array: %w", err)
	}
	return b.Set(timelineKey, raw)
}

// readRaw returns the stored entries, preferring local and checking
// sync for backwards compatibility.
func (s *Store) readRaw() ([]json.RawMessage, error) {
	entries, ok, err := readTier(s.local)
	if err != nil {
		return nil, err
	}
	if ok {
		return entries, nil
	}

	entries, ok, err = readTier(s.sync)
	if err != nil {
		return nil, err
	}
	if ok {
		return entries, nil
	}
	return []json.RawMessage{}, nil
}

// ─── Sync → Local Migration ─────────────────────────────────────────────────

// MigrateSyncToLocal moves timeline data out of the size-limited sync
// tier. Safe to re-run on every startup: with sync already empty it is
// a no-op, and a re-run after a partial failure neither duplicates nor
// loses entries. If post-copy verification fails the sync tier is left
// untouched and domain.ErrMigrationInconsistency is returned.
func (s *Store) MigrateSyncToLocal() error {
	syncEntries, syncOK, err := readTier(s.sync)
	if err != nil {
		return fmt.Errorf("read sync timeline: %w", err)
	}
	if !syncOK {
		return nil // Nothing to migrate
	}

	localEntries, localOK, err := readTier(s.local)
	if err != nil {
		return fmt.Errorf("read local timeline: %w", err)
	}

	target := syncEntries
	if localOK {
		target = mergeDeduped(syncEntries, localEntries)
	}

	if err := writeTier(s.local, target); err != nil {
		metrics.StorageMigrations.WithLabelValues("failed").Inc()
		return fmt.Errorf("copy timeline to local: %w", err)
	}

	if err := s.verifyLocalEquals(target); err != nil {
		metrics.StorageMigrations.WithLabelValues("inconsistent").Inc()
		return err
	}

	if err := s.sync.Remove(timelineKey); err != nil {
		return fmt.Errorf("clear sync timeline: %w", err)
	}

	metrics.StorageMigrations.WithLabelValues("ok").Inc()
	log.Printf("[timeline] migrated %d entries from sync to local storage", len(target))
	return nil
}

// verifyLocalEquals re-reads the local tier and checks it matches what
// was migrated, structurally. On mismatch the source tier must not be
// cleared.
func (s *Store) verifyLocalEquals(expected []json.RawMessage) error {
	localEntries, ok, err := readTier(s.local)
	if err != nil {
		return fmt.Errorf("verify local timeline: %w", err)
	}
	if !ok || len(localEntries) != len(expected) {
		return domain.ErrMigrationInconsistency
	}
	for i := range expected {
		if !structurallyEqual(localEntries[i], expected[i]) {
			return domain.ErrMigrationInconsistency
		}
	}
	return nil
}

// mergeDeduped appends both tiers' entries, dropping structural
// duplicates. Sync entries come first: they predate the local tier.
func mergeDeduped(a, b []json.RawMessage) []json.RawMessage {
	merged := make([]json.RawMessage, 0, len(a)+len(b))
	for _, entry := range a {
		if !containsEntry(merged, entry) {
			merged = append(merged, entry)
		}
	}
	for _, entry := range b {
		if !containsEntry(merged, entry) {
			merged = append(merged, entry)
		}
	}
	return merged
}

func containsEntry(entries []json.RawMessage, candidate json.RawMessage) bool {
	for _, e := range entries {
		if structurallyEqual(e, candidate) {
			return true
		}
	}
	return false
}

// structurallyEqual compares two raw entries by decoded value, so key
// order and whitespace differences do not defeat de-duplication.
func structurallyEqual(a, b json.RawMessage) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// ─── Operations ─────────────────────────────────────────────────────────────

// Append adds one completed session to the log. A write rejected for
// capacity surfaces as domain.ErrStorageCapacity so the caller can
// notify the user; the entry is not silently dropped.
func (s *Store) Append(entry domain.TimelineEntry) error {
	entries, err := s.readRaw()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode timeline entry: %w", err)
	}
	entries = append(entries, raw)

	if err := writeTier(s.local, entries); err != nil {
		if isCapacity(err) {
			metrics.StorageCapacityErrors.Inc()
		}
		return fmt.Errorf("append timeline entry: %w", err)
	}

	metrics.TimelineEntries.Inc()
	return nil
}

func isCapacity(err error) bool {
	return errors.Is(err, domain.ErrStorageCapacity)
}

// All returns every entry decoded to canonical form, oldest first.
// Entries that fail to decode are logged and skipped rather than
// failing the whole read.
func (s *Store) All() ([]domain.TimelineEntry, error) {
	raws, err := s.readRaw()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimelineEntry, 0, len(raws))
	for i, raw := range raws {
		var entry domain.TimelineEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Printf("[timeline] skipping undecodable entry %d: %v", i, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Filtered returns entries whose effective timestamp falls in
// [start, end] inclusive.
func (s *Store) Filtered(start, end time.Time) ([]domain.TimelineEntry, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.TimelineEntry, 0, len(all))
	for _, entry := range all {
		t := entry.EffectiveTime()
		if !t.Before(start) && !t.After(end) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// AttachNoteToLast sets the note on the newest entry, preserving the
// entry's stored shape. Returns domain.ErrTimelineEmpty when there is
// nothing to annotate.
func (s *Store) AttachNoteToLast(note string) error {
	entries, err := s.readRaw()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return domain.ErrTimelineEmpty
	}

	var fields map[string]any
	if err := json.Unmarshal(entries[len(entries)-1], &fields); err != nil {
		return fmt.Errorf("decode last timeline entry: %w", err)
	}
	fields["note"] = note

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode last timeline entry: %w", err)
	}
	entries[len(entries)-1] = raw

	return writeTier(s.local, entries)
}

// Reset clears the timeline from both tiers.
func (s *Store) Reset() error {
	if err := s.sync.Remove(timelineKey); err != nil {
		return fmt.Errorf("reset sync timeline: %w", err)
	}
	if err := s.local.Remove(timelineKey); err != nil {
		return fmt.Errorf("reset local timeline: %w", err)
	}
	return nil
}
