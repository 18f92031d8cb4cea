package gamification_test

import (
	"strings"
	"testing"
	"time"

	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

// testService creates a gamification service over a temporary database.
func testService(t *testing.T) *gamification.Service {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return gamification.NewService(db.Local())
}

// noon avoids the morning and night counter windows.
func noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCalculateLevel_Thresholds(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1}, {99, 1}, {100, 2}, {249, 2}, {250, 3},
		{500, 4}, {1000, 5}, {2000, 6}, {4000, 7},
		{8000, 8}, {15000, 9}, {25000, 10}, {999999, 10},
	}
	for _, c := range cases {
		if got := gamification.CalculateLevel(c.xp); got != c.level {
			t.Errorf("xp %d: expected level %d, got %d", c.xp, c.level, got)
		}
	}
}

func TestCalculateLevel_MonotonicInXP(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 26000; xp += 50 {
		level := gamification.CalculateLevel(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at xp %d", prev, level, xp)
		}
		prev = level
	}
}

func TestProgressToNextLevel(t *testing.T) {
	// Level 2 spans 100..250, so 175 XP is exactly halfway.
	p := gamification.ProgressToNextLevel(175, 2)
	if p.Percentage != 50 {
		t.Errorf("expected 50%%, got %d%%", p.Percentage)
	}
	if p.XPNeeded != 75 {
		t.Errorf("expected 75 XP needed, got %d", p.XPNeeded)
	}
	if p.XPTotal != 250 {
		t.Errorf("expected next threshold 250, got %d", p.XPTotal)
	}
}

func TestProgressToNextLevel_MaxLevel(t *testing.T) {
	p := gamification.ProgressToNextLevel(30000, 10)
	if p.Percentage != 100 {
		t.Errorf("expected 100%% at max level, got %d%%", p.Percentage)
	}
	if p.XPNeeded != 0 {
		t.Errorf("expected 0 XP needed at max level, got %d", p.XPNeeded)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Completion Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCompletion_FirstTomato(t *testing.T) {
	svc := testService(t)

	at := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	result := svc.RecordSessionCompletionAt(domain.SessionTomato, 25, at)

	// 10 base + 5 streak bonus, then +25 for the bronze first_tomato badge.
	if result.XPResult.XP != 40 {
		t.Errorf("expected 40 XP, got %d", result.XPResult.XP)
	}
	if result.XPResult.Level != 1 {
		t.Errorf("expected level 1, got %d", result.XPResult.Level)
	}
	if result.CurrentStreak != 1 {
		t.Errorf("expected streak 1, got %d", result.CurrentStreak)
	}
	if len(result.NewBadges) != 1 || result.NewBadges[0].ID != "first_tomato" {
		t.Fatalf("expected first_tomato badge, got %v", result.NewBadges)
	}

	rec, err := svc.Data()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Stats.TomatoesCompleted != 1 {
		t.Errorf("expected 1 tomato, got %d", rec.Stats.TomatoesCompleted)
	}
	if rec.Stats.TotalMinutes != 25 {
		t.Errorf("expected 25 minutes, got %v", rec.Stats.TotalMinutes)
	}
	if rec.Level != gamification.CalculateLevel(rec.XP) {
		t.Errorf("level %d does not match xp %d", rec.Level, rec.XP)
	}
}

func TestCompletion_BreakXP(t *testing.T) {
	svc := testService(t)
	at := noon(2025, 7, 1)

	short := svc.RecordSessionCompletionAt(domain.SessionShortBreak, 5, at)
	if short.XPResult.Amount != 2 {
		t.Errorf("expected 2 XP for short break, got %d", short.XPResult.Amount)
	}

	long := svc.RecordSessionCompletionAt(domain.SessionLongBreak, 15, at)
	if long.XPResult.Amount != 5 {
		t.Errorf("expected 5 XP for long break, got %d", long.XPResult.Amount)
	}

	rec, _ := svc.Data()
	if rec.Stats.TomatoesCompleted != 0 {
		t.Errorf("breaks must not count as tomatoes, got %d", rec.Stats.TomatoesCompleted)
	}
	if rec.Stats.CurrentStreak != 0 {
		t.Errorf("breaks must not start a streak, got %d", rec.Stats.CurrentStreak)
	}
}

func TestCompletion_UnknownTypeYieldsZeroResult(t *testing.T) {
	svc := testService(t)

	result := svc.RecordSessionCompletionAt(domain.SessionType("nap"), 25, noon(2025, 7, 1))
	if result.XPResult.XP != 0 || len(result.NewBadges) != 0 {
		t.Errorf("expected zero result for unknown type, got %+v", result)
	}

	rec, _ := svc.Data()
	if rec.XP != 0 {
		t.Errorf("unknown type must not mutate record, xp=%d", rec.XP)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStreak_SameDayIdempotent(t *testing.T) {
	svc := testService(t)
	day := noon(2025, 7, 1)

	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, day)
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, day.Add(2*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, day.Add(5*time.Hour))

	rec, _ := svc.Data()
	if rec.Stats.CurrentStreak != 1 {
		t.Errorf("expected streak 1 after same-day completions, got %d", rec.Stats.CurrentStreak)
	}
	if rec.Stats.TomatoesCompleted != 3 {
		t.Errorf("expected 3 tomatoes, got %d", rec.Stats.TomatoesCompleted)
	}
}

func TestStreak_ConsecutiveDaysExtend(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	for i := 0; i < 5; i++ {
		svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, i))
	}

	rec, _ := svc.Data()
	if rec.Stats.CurrentStreak != 5 {
		t.Errorf("expected streak 5, got %d", rec.Stats.CurrentStreak)
	}
	if rec.Stats.LongestStreak != 5 {
		t.Errorf("expected longest 5, got %d", rec.Stats.LongestStreak)
	}
}

func TestStreak_GapResetsToOne(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base)
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, 1))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, 4))

	rec, _ := svc.Data()
	if rec.Stats.CurrentStreak != 1 {
		t.Errorf("expected streak reset to 1, got %d", rec.Stats.CurrentStreak)
	}
	if rec.Stats.LongestStreak != 2 {
		t.Errorf("expected longest preserved at 2, got %d", rec.Stats.LongestStreak)
	}
}

func TestStreak_BonusCapped(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	// 25 consecutive days: the streak bonus caps at 100 XP per session.
	var last domain.CompletionResult
	for i := 0; i < 25; i++ {
		last = svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, i))
	}

	var bonus int
	for _, award := range last.XPBreakdown {
		if strings.Contains(award.Reason, "streak bonus") {
			bonus = award.Amount
		}
	}
	if bonus != 100 {
		t.Errorf("expected capped streak bonus 100, got %d", bonus)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestBadges_NotAwardedTwice(t *testing.T) {
	svc := testService(t)
	at := noon(2025, 7, 1)

	first := svc.RecordSessionCompletionAt(domain.SessionTomato, 25, at)
	if len(first.NewBadges) != 1 {
		t.Fatalf("expected first_tomato on first completion, got %v", first.NewBadges)
	}

	second := svc.RecordSessionCompletionAt(domain.SessionTomato, 25, at)
	for _, b := range second.NewBadges {
		if b.ID == "first_tomato" {
			t.Error("first_tomato awarded twice")
		}
	}

	rec, _ := svc.Data()
	count := 0
	for _, id := range rec.EarnedBadges {
		if id == "first_tomato" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one first_tomato entry, got %d", count)
	}
}

func TestBadges_TierBonusXPApplied(t *testing.T) {
	svc := testService(t)

	result := svc.RecordSessionCompletionAt(domain.SessionTomato, 25, noon(2025, 7, 1))

	// Session XP is 15; the record must additionally hold the bronze bonus.
	rec, _ := svc.Data()
	if rec.XP != result.XPResult.XP {
		t.Errorf("result XP %d does not match record %d", result.XPResult.XP, rec.XP)
	}
	if rec.XP != 15+25 {
		t.Errorf("expected 40 XP including bronze bonus, got %d", rec.XP)
	}
}

func TestBadges_MorningWindow(t *testing.T) {
	svc := testService(t)
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// 06:00 and 08:59 are inside the window, 09:00 and 05:59 are not.
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(6*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(8*time.Hour+59*time.Minute))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(9*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(5*time.Hour+59*time.Minute))

	rec, _ := svc.Data()
	if rec.Stats.MorningSessionsCount != 2 {
		t.Errorf("expected 2 morning sessions, got %d", rec.Stats.MorningSessionsCount)
	}
}

func TestBadges_NightWindow(t *testing.T) {
	svc := testService(t)
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(22*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.Add(23*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, 1).Add(1*time.Hour))
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, 1).Add(2*time.Hour))

	rec, _ := svc.Data()
	if rec.Stats.NightSessionsCount != 3 {
		t.Errorf("expected 3 night sessions, got %d", rec.Stats.NightSessionsCount)
	}
}

func TestBadges_PerfectWeek(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	// Six qualifying days are not enough.
	for day := 0; day < 6; day++ {
		for s := 0; s < 5; s++ {
			svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, day).Add(time.Duration(s)*time.Minute))
		}
	}
	rec, _ := svc.Data()
	if rec.HasBadge("perfect_week") {
		t.Fatal("perfect_week awarded after only 6 days")
	}

	// The seventh consecutive day completes the run.
	for s := 0; s < 5; s++ {
		svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, 6).Add(time.Duration(s)*time.Minute))
	}
	rec, _ = svc.Data()
	if !rec.HasBadge("perfect_week") {
		t.Error("perfect_week not awarded after 7 consecutive qualifying days")
	}
}

func TestBadges_PerfectWeek_CountsFullRuns(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	// 14 consecutive qualifying days are two full weeks, not one long one.
	for day := 0; day < 14; day++ {
		for s := 0; s < 5; s++ {
			svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, day).Add(time.Duration(s)*time.Minute))
		}
	}

	statuses, err := svc.AllBadgesWithStatusAt(base.AddDate(0, 0, 13))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, st := range statuses {
		if st.Badge.ID != "perfect_week" {
			continue
		}
		if !st.Earned {
			t.Error("perfect_week should be earned")
		}
		if st.Progress.Current != 2 {
			t.Errorf("expected 2 perfect weeks, got %v", st.Progress.Current)
		}
		return
	}
	t.Fatal("perfect_week missing from badge statuses")
}

func TestBadges_StatusAndProgress(t *testing.T) {
	svc := testService(t)
	at := noon(2025, 7, 1)

	for i := 0; i < 5; i++ {
		svc.RecordSessionCompletionAt(domain.SessionTomato, 25, at.Add(time.Duration(i)*time.Minute))
	}

	statuses, err := svc.AllBadgesWithStatusAt(at)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != len(gamification.AllBadges()) {
		t.Fatalf("expected %d statuses, got %d", len(gamification.AllBadges()), len(statuses))
	}

	byID := make(map[string]domain.BadgeStatus)
	for _, st := range statuses {
		byID[st.Badge.ID] = st
	}
	if !byID["first_tomato"].Earned {
		t.Error("first_tomato should be earned")
	}
	if p := byID["tomato_10"].Progress; p.Current != 5 || p.Percentage != 50 {
		t.Errorf("tomato_10 progress: expected 5/50%%, got %v/%d%%", p.Current, p.Percentage)
	}
}

func TestBadges_RecentList(t *testing.T) {
	svc := testService(t)
	base := noon(2025, 7, 1)

	for i := 0; i < 3; i++ {
		svc.RecordSessionCompletionAt(domain.SessionTomato, 25, base.AddDate(0, 0, i))
	}

	recent, err := svc.RecentBadges(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) < 2 {
		t.Fatalf("expected at least 2 recent badges, got %d", len(recent))
	}
	// Newest first: streak_3 lands on day three, after first_tomato.
	if recent[0].ID != "streak_3" {
		t.Errorf("expected streak_3 first, got %s", recent[0].ID)
	}

	if err := svc.ClearRecentBadges(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	recent, _ = svc.RecentBadges(10)
	if len(recent) != 0 {
		t.Errorf("expected empty recent list after clear, got %d", len(recent))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// XP Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAddXP_LevelUp(t *testing.T) {
	svc := testService(t)

	result, err := svc.AddXP(150, "bonus")
	if err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if !result.LeveledUp {
		t.Error("expected level up at 150 XP")
	}
	if result.OldLevel != 1 || result.Level != 2 {
		t.Errorf("expected 1 -> 2, got %d -> %d", result.OldLevel, result.Level)
	}
}

func TestAddXP_RejectsNegative(t *testing.T) {
	svc := testService(t)
	if _, err := svc.AddXP(-10, "oops"); err == nil {
		t.Error("expected error for negative XP")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Export / Import Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestExportImport_RoundTrip(t *testing.T) {
	svc := testService(t)
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, noon(2025, 7, 1))

	exported, err := svc.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	before, _ := svc.Data()

	if err := svc.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if rec, _ := svc.Data(); rec.XP != 0 {
		t.Fatalf("reset left xp %d", rec.XP)
	}

	result := svc.Import(exported)
	if !result.Success {
		t.Fatalf("import failed: %s", result.Error)
	}

	after, _ := svc.Data()
	if after.XP != before.XP || after.Level != before.Level {
		t.Errorf("round trip mismatch: xp %d/%d level %d/%d",
			before.XP, after.XP, before.Level, after.Level)
	}
	if after.Stats.CurrentStreak != before.Stats.CurrentStreak {
		t.Errorf("streak mismatch: %d vs %d", before.Stats.CurrentStreak, after.Stats.CurrentStreak)
	}
}

func TestImport_RejectsInvalidJSON(t *testing.T) {
	svc := testService(t)
	svc.RecordSessionCompletionAt(domain.SessionTomato, 25, noon(2025, 7, 1))

	result := svc.Import("not json at all")
	if result.Success {
		t.Fatal("expected failure for malformed JSON")
	}
	if result.Error == "" {
		t.Error("expected an error message")
	}

	// The existing record must be untouched.
	rec, _ := svc.Data()
	if rec.XP == 0 {
		t.Error("failed import must not mutate the stored record")
	}
}

func TestImport_RejectsWrongShape(t *testing.T) {
	svc := testService(t)

	result := svc.Import(`{"xp": 500}`)
	if result.Success {
		t.Error("expected failure for record without earnedBadges")
	}
}
