package timeline_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tomato-clock/tomato/internal/app/timeline"
	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStore(t *testing.T) (*timeline.Store, *storage.DB) {
	t.Helper()
	db := testDB(t)
	return timeline.NewStore(db.Local(), db.Sync()), db
}

func entryAt(end time.Time, minutes int) domain.TimelineEntry {
	d := time.Duration(minutes) * time.Minute
	return domain.TimelineEntry{
		Type:      domain.SessionTomato,
		StartTime: end.Add(-d),
		EndTime:   end,
		Duration:  d,
	}
}

// seedSync writes raw JSON entries to the sync tier, bypassing the store.
func seedSync(t *testing.T, db *storage.DB, entries ...any) {
	t.Helper()
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Sync().Set("timeline", raw); err != nil {
		t.Fatalf("seed sync: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Append / Read Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestTimeline_AppendAndRead(t *testing.T) {
	store, _ := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.Append(entryAt(end.Add(time.Duration(i)*time.Hour), 25)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].EndTime.Equal(end) {
		t.Errorf("expected first end time %v, got %v", end, entries[0].EndTime)
	}
	if entries[0].Duration != 25*time.Minute {
		t.Errorf("expected 25m duration, got %v", entries[0].Duration)
	}
}

func TestTimeline_Filtered(t *testing.T) {
	store, _ := testStore(t)
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	for day := 1; day <= 5; day++ {
		store.Append(entryAt(base.AddDate(0, 0, day), 25))
	}

	// Bounds are inclusive on both ends.
	got, err := store.Filtered(base.AddDate(0, 0, 2), base.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("filtered: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries in range, got %d", len(got))
	}
}

func TestTimeline_CapacityError(t *testing.T) {
	db, err := storage.OpenWithLimits(t.TempDir(), storage.Limits{LocalBytes: 64})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := timeline.NewStore(db.Local(), db.Sync())

	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	err = store.Append(entryAt(end, 25))
	if !errors.Is(err, domain.ErrStorageCapacity) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	entries, _ := store.All()
	if len(entries) != 0 {
		t.Errorf("failed append must not store entries, got %d", len(entries))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Legacy Format Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestTimeline_DecodesLegacyEntries(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	seedSync(t, db,
		map[string]any{"type": "tomato", "date": end.UnixMilli(), "timeout": 25},
		map[string]any{"type": "shortBreak", "date": end.Add(time.Hour).Format(time.RFC3339), "timeout": 5},
	)
	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	entries, err := store.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].EndTime.Equal(end) {
		t.Errorf("expected end %v, got %v", end, entries[0].EndTime)
	}
	if entries[0].Duration != 25*time.Minute {
		t.Errorf("expected 25m, got %v", entries[0].Duration)
	}
	if !entries[0].StartTime.Equal(end.Add(-25 * time.Minute)) {
		t.Errorf("expected derived start, got %v", entries[0].StartTime)
	}
	if entries[1].Type != domain.SessionShortBreak {
		t.Errorf("expected shortBreak, got %s", entries[1].Type)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Migration Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMigrate_MovesSyncToLocal(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	seedSync(t, db, map[string]any{"type": "tomato", "date": end.UnixMilli(), "timeout": 25})

	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, ok, _ := db.Sync().Get("timeline"); ok {
		t.Error("sync copy should be removed after migration")
	}
	if _, ok, _ := db.Local().Get("timeline"); !ok {
		t.Error("local copy missing after migration")
	}
	entries, _ := store.All()
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after migration, got %d", len(entries))
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	seedSync(t, db,
		map[string]any{"type": "tomato", "date": end.UnixMilli(), "timeout": 25},
		map[string]any{"type": "tomato", "date": end.Add(time.Hour).UnixMilli(), "timeout": 25},
	)

	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	first, _, _ := db.Local().Get("timeline")

	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	second, _, _ := db.Local().Get("timeline")

	var a, b []json.RawMessage
	json.Unmarshal(first, &a)
	json.Unmarshal(second, &b)
	if len(a) != len(b) || len(b) != 2 {
		t.Errorf("second run changed the timeline: %d vs %d entries", len(a), len(b))
	}
}

func TestMigrate_NoSyncDataIsNoOp(t *testing.T) {
	store, db := testStore(t)
	store.Append(entryAt(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), 25))

	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("migrate with empty sync: %v", err)
	}
	if _, ok, _ := db.Sync().Get("timeline"); ok {
		t.Error("sync tier should stay empty")
	}

	entries, _ := store.All()
	if len(entries) != 1 {
		t.Errorf("migration must not touch local when sync is empty, got %d", len(entries))
	}
}

func TestMigrate_MergesWithLocalAndDedupes(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	shared := entryAt(end, 25)
	localOnly := entryAt(end.Add(time.Hour), 25)
	if err := store.Append(shared); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(localOnly); err != nil {
		t.Fatalf("append: %v", err)
	}

	sharedRaw, _ := json.Marshal(shared)
	syncOnlyRaw, _ := json.Marshal(entryAt(end.Add(2*time.Hour), 25))
	var sharedAny, syncOnlyAny any
	json.Unmarshal(sharedRaw, &sharedAny)
	json.Unmarshal(syncOnlyRaw, &syncOnlyAny)
	seedSync(t, db, sharedAny, syncOnlyAny)

	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	entries, _ := store.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 merged entries, got %d", len(entries))
	}
}

// lossyBucket accepts writes but serves back the array with its last
// entry missing, simulating a tier that silently loses data.
type lossyBucket struct {
	data map[string][]byte
}

func (b *lossyBucket) Set(key string, value []byte) error {
	b.data[key] = value
	return nil
}

func (b *lossyBucket) Get(key string) ([]byte, bool, error) {
	raw, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return raw, true, nil
	}
	if len(entries) > 0 {
		entries = entries[:len(entries)-1]
	}
	out, _ := json.Marshal(entries)
	return out, true, nil
}

func (b *lossyBucket) Remove(key string) error {
	delete(b.data, key)
	return nil
}

func TestMigrate_VerificationFailureLeavesSyncUntouched(t *testing.T) {
	db := testDB(t)
	seedSync(t, db,
		entryAt(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), 25),
		entryAt(time.Date(2025, 7, 1, 11, 0, 0, 0, time.UTC), 25),
	)

	store := timeline.NewStore(&lossyBucket{data: map[string][]byte{}}, db.Sync())

	err := store.MigrateSyncToLocal()
	if !errors.Is(err, domain.ErrMigrationInconsistency) {
		t.Fatalf("expected ErrMigrationInconsistency, got %v", err)
	}

	// The source tier keeps its entries so nothing is lost.
	raw, ok, err := db.Sync().Get("timeline")
	if err != nil || !ok {
		t.Fatalf("sync tier should still hold the timeline (ok=%v err=%v)", ok, err)
	}
	var remaining []json.RawMessage
	if err := json.Unmarshal(raw, &remaining); err != nil {
		t.Fatalf("decode sync timeline: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("expected 2 entries still in sync, got %d", len(remaining))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Note Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestNote_AttachToLast(t *testing.T) {
	store, _ := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	store.Append(entryAt(end, 25))
	store.Append(entryAt(end.Add(time.Hour), 25))

	if err := store.AttachNoteToLast("good focus"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	entries, _ := store.All()
	if entries[0].Note != "" {
		t.Errorf("note attached to wrong entry: %q", entries[0].Note)
	}
	if entries[1].Note != "good focus" {
		t.Errorf("expected note on last entry, got %q", entries[1].Note)
	}
}

func TestNote_EmptyTimeline(t *testing.T) {
	store, _ := testStore(t)
	if err := store.AttachNoteToLast("nope"); !errors.Is(err, domain.ErrTimelineEmpty) {
		t.Errorf("expected ErrTimelineEmpty, got %v", err)
	}
}

func TestNote_PreservesLegacyShape(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	seedSync(t, db, map[string]any{"type": "tomato", "date": end.UnixMilli(), "timeout": 25})
	if err := store.MigrateSyncToLocal(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := store.AttachNoteToLast("kept"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	// The stored entry keeps its legacy fields, the note rides alongside.
	raw, _, _ := db.Local().Get("timeline")
	var stored []map[string]any
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := stored[0]["date"]; !ok {
		t.Error("legacy date field rewritten")
	}
	if stored[0]["note"] != "kept" {
		t.Errorf("expected note in stored entry, got %v", stored[0]["note"])
	}

	entries, _ := store.All()
	if entries[0].Note != "kept" {
		t.Errorf("expected decoded note, got %q", entries[0].Note)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reset Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestTimeline_Reset(t *testing.T) {
	store, db := testStore(t)
	end := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	store.Append(entryAt(end, 25))
	seedSync(t, db, map[string]any{"type": "tomato", "date": end.UnixMilli(), "timeout": 25})

	if err := store.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	entries, _ := store.All()
	if len(entries) != 0 {
		t.Errorf("expected empty timeline after reset, got %d", len(entries))
	}
	if _, ok, _ := db.Sync().Get("timeline"); ok {
		t.Error("sync tier not cleared by reset")
	}
}
