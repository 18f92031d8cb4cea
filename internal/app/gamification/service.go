// Package gamification implements the Tomato Clock progression engine:
// XP and levels, daily streaks, per-day aggregates, and the badge
// requirement evaluator. All state lives in a single persisted record,
// loaded and saved whole. There is no in-process cache, so every
// operation sees what the store holds.
package gamification

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/infra/metrics"
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

const recordKey = "gamification"

// Service owns the persisted gamification record.
type Service struct {
	store storage.Bucket
}

// NewService creates a gamification service over the local tier.
func NewService(store storage.Bucket) *Service {
	return &Service{store: store}
}

// ─── Record Lifecycle ───────────────────────────────────────────────────────

// Load reads the record from storage, creating zeroed defaults if none
// exists yet. A corrupt record is logged and replaced with defaults
// rather than failing the read path.
func (s *Service) Load() (domain.GamificationRecord, error) {
	raw, ok, err := s.store.Get(recordKey)
	if err != nil {
		return domain.GamificationRecord{}, fmt.Errorf("load gamification record: %w", err)
	}
	if !ok {
		return domain.NewGamificationRecord(), nil
	}

	var rec domain.GamificationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Printf("[gamification] corrupt record, starting fresh: %v", err)
		return domain.NewGamificationRecord(), nil
	}
	normalize(&rec)
	return rec, nil
}

func (s *Service) save(rec *domain.GamificationRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode gamification record: %w", err)
	}
	if err := s.store.Set(recordKey, raw); err != nil {
		return fmt.Errorf("save gamification record: %w", err)
	}
	return nil
}

// normalize repairs nil collections after decoding older records.
func normalize(rec *domain.GamificationRecord) {
	if rec.EarnedBadges == nil {
		rec.EarnedBadges = []string{}
	}
	if rec.RecentlyEarnedBadges == nil {
		rec.RecentlyEarnedBadges = []domain.EarnedBadge{}
	}
	if rec.Stats.DailyStats == nil {
		rec.Stats.DailyStats = map[string]domain.DayStat{}
	}
	if rec.Level < 1 {
		rec.Level = 1
	}
}

// ─── Session Completion Orchestrator ────────────────────────────────────────

// RecordSessionCompletion folds one finished timer session into the
// record: stats, streak, XP, then badge evaluation, each persisted in
// turn. It never returns an error: on internal failure the remaining
// steps are skipped and a zeroed result is returned so the caller's
// notification path is not blocked.
func (s *Service) RecordSessionCompletion(sessionType domain.SessionType, durationMinutes float64) domain.CompletionResult {
	return s.RecordSessionCompletionAt(sessionType, durationMinutes, time.Now())
}

// RecordSessionCompletionAt is RecordSessionCompletion with an
// explicit completion time.
func (s *Service) RecordSessionCompletionAt(sessionType domain.SessionType, durationMinutes float64, at time.Time) domain.CompletionResult {
	rec, err := s.Load()
	if err != nil {
		log.Printf("[gamification] completion aborted: %v", err)
		return domain.CompletionResult{}
	}

	xpBefore := rec.XP
	xpEarned := 0
	breakdown := []domain.XPAward{}

	switch sessionType {
	case domain.SessionTomato:
		rec.Stats.TomatoesCompleted++
		rec.Stats.TotalMinutes += durationMinutes
		xpEarned += xpTomatoCompleted
		breakdown = append(breakdown, domain.XPAward{Reason: "Tomato completed", Amount: xpTomatoCompleted})

		hour := at.Hour()
		if hour >= 6 && hour < 9 {
			rec.Stats.MorningSessionsCount++
		} else if hour >= 22 || hour < 2 {
			rec.Stats.NightSessionsCount++
		}

		recordDailyCompletion(&rec.Stats, dateKey(at), durationMinutes)

		if rec.Stats.CurrentStreak > 0 {
			bonus := rec.Stats.CurrentStreak * xpStreakBonusPerDay
			if bonus > xpStreakBonusCap {
				bonus = xpStreakBonusCap
			}
			xpEarned += bonus
			breakdown = append(breakdown, domain.XPAward{
				Reason: fmt.Sprintf("%d day streak bonus", rec.Stats.CurrentStreak),
				Amount: bonus,
			})
		}

	case domain.SessionShortBreak:
		rec.Stats.ShortBreaksCompleted++
		xpEarned += xpShortBreakCompleted
		breakdown = append(breakdown, domain.XPAward{Reason: "Short break completed", Amount: xpShortBreakCompleted})

	case domain.SessionLongBreak:
		rec.Stats.LongBreaksCompleted++
		xpEarned += xpLongBreakCompleted
		breakdown = append(breakdown, domain.XPAward{Reason: "Long break completed", Amount: xpLongBreakCompleted})

	default:
		log.Printf("[gamification] unknown session type %q ignored", sessionType)
		return domain.CompletionResult{}
	}

	// Persist stats before XP and badges. A failure here or in any
	// later step skips the rest; prior steps are not rolled back.
	if err := s.save(&rec); err != nil {
		log.Printf("[gamification] completion aborted: %v", err)
		return domain.CompletionResult{}
	}

	xpResult := applyXP(&rec, xpEarned, "Session completed")
	if err := s.save(&rec); err != nil {
		log.Printf("[gamification] xp award not persisted: %v", err)
		return domain.CompletionResult{}
	}

	newBadges := s.evaluateBadgesAt(&rec, at)
	if len(newBadges) > 0 {
		if err := s.save(&rec); err != nil {
			log.Printf("[gamification] badge award not persisted: %v", err)
			return domain.CompletionResult{}
		}
		// Report the record as it stands after badge bonuses.
		xpResult.XP = rec.XP
		xpResult.Level = rec.Level
	}

	metrics.SessionsCompleted.WithLabelValues(string(sessionType)).Inc()
	if sessionType == domain.SessionTomato {
		metrics.FocusMinutes.Add(durationMinutes)
	}
	metrics.XPEarned.Add(float64(rec.XP - xpBefore))
	metrics.CurrentLevel.Set(float64(rec.Level))
	metrics.CurrentStreak.Set(float64(rec.Stats.CurrentStreak))

	return domain.CompletionResult{
		XPResult:      xpResult,
		NewBadges:     newBadges,
		XPBreakdown:   breakdown,
		CurrentStreak: rec.Stats.CurrentStreak,
	}
}

// ─── XP ─────────────────────────────────────────────────────────────────────

// applyXP mutates the record with an XP award and keeps the level a
// pure function of XP.
func applyXP(rec *domain.GamificationRecord, amount int, reason string) domain.XPResult {
	oldLevel := rec.Level
	rec.XP += amount
	rec.Level = CalculateLevel(rec.XP)

	return domain.XPResult{
		XP:        rec.XP,
		Level:     rec.Level,
		LeveledUp: rec.Level > oldLevel,
		OldLevel:  oldLevel,
		Amount:    amount,
		Reason:    reason,
	}
}

// AddXP awards XP outside the completion flow and persists the result.
// Amount may be zero but not negative.
func (s *Service) AddXP(amount int, reason string) (domain.XPResult, error) {
	if amount < 0 {
		return domain.XPResult{}, fmt.Errorf("xp amount must not be negative, got %d", amount)
	}

	rec, err := s.Load()
	if err != nil {
		return domain.XPResult{}, err
	}

	result := applyXP(&rec, amount, reason)
	if err := s.save(&rec); err != nil {
		return domain.XPResult{}, err
	}
	return result, nil
}

// ─── Badge Evaluation ───────────────────────────────────────────────────────

// evaluateBadgesAt walks the catalog in declaration order and unlocks
// every badge whose requirement the record now satisfies. Evaluation
// is sequential, not snapshot: each award's bonus XP lands on the
// record before later badges are checked.
func (s *Service) evaluateBadgesAt(rec *domain.GamificationRecord, at time.Time) []domain.Badge {
	var newBadges []domain.Badge

	for _, badge := range badges {
		if rec.HasBadge(badge.ID) {
			continue
		}
		if !requirementMet(badge.Requirement, &rec.Stats, at) {
			continue
		}

		rec.EarnedBadges = append(rec.EarnedBadges, badge.ID)
		rec.RecentlyEarnedBadges = append(rec.RecentlyEarnedBadges, domain.EarnedBadge{
			Badge:    badge,
			EarnedAt: at,
		})
		newBadges = append(newBadges, badge)

		bonus, ok := tierBonusXP[badge.Tier]
		if !ok {
			bonus = 10
		}
		applyXP(rec, bonus, fmt.Sprintf("Earned badge: %s", badge.Name))
		metrics.BadgesUnlocked.WithLabelValues(string(badge.Tier)).Inc()
	}

	return newBadges
}

// CheckAndAwardBadges evaluates the catalog against the stored record
// and persists any unlocks. Returns the newly earned badges; calling
// again with unchanged stats returns none.
func (s *Service) CheckAndAwardBadges() ([]domain.Badge, error) {
	return s.CheckAndAwardBadgesAt(time.Now())
}

// CheckAndAwardBadgesAt is CheckAndAwardBadges at an explicit
// evaluation time (days_worked_in_month is evaluation-time-relative).
func (s *Service) CheckAndAwardBadgesAt(at time.Time) ([]domain.Badge, error) {
	rec, err := s.Load()
	if err != nil {
		return nil, err
	}

	newBadges := s.evaluateBadgesAt(&rec, at)
	if len(newBadges) > 0 {
		if err := s.save(&rec); err != nil {
			return nil, err
		}
	}
	return newBadges, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Data returns the current record, lazily initialized.
func (s *Service) Data() (domain.GamificationRecord, error) {
	return s.Load()
}

// AllBadgesWithStatus annotates the catalog with earned state and
// progress for display.
func (s *Service) AllBadgesWithStatus() ([]domain.BadgeStatus, error) {
	return s.AllBadgesWithStatusAt(time.Now())
}

// AllBadgesWithStatusAt is AllBadgesWithStatus at an explicit
// evaluation time.
func (s *Service) AllBadgesWithStatusAt(at time.Time) ([]domain.BadgeStatus, error) {
	rec, err := s.Load()
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.BadgeStatus, 0, len(badges))
	for _, badge := range badges {
		statuses = append(statuses, domain.BadgeStatus{
			Badge:    badge,
			Earned:   rec.HasBadge(badge.ID),
			Progress: badgeProgress(badge, &rec.Stats, at),
		})
	}
	return statuses, nil
}

// RecentBadges returns up to limit most-recently earned badges, newest
// first.
func (s *Service) RecentBadges(limit int) ([]domain.EarnedBadge, error) {
	rec, err := s.Load()
	if err != nil {
		return nil, err
	}

	recent := rec.RecentlyEarnedBadges
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	out := make([]domain.EarnedBadge, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i])
	}
	return out, nil
}

// ClearRecentBadges empties the recently-earned log after the UI has
// shown its notifications.
func (s *Service) ClearRecentBadges() error {
	rec, err := s.Load()
	if err != nil {
		return err
	}
	rec.RecentlyEarnedBadges = []domain.EarnedBadge{}
	return s.save(&rec)
}

// ─── Export / Import / Reset ────────────────────────────────────────────────

// Export serializes the record as indented JSON.
func (s *Service) Export() (string, error) {
	rec, err := s.Load()
	if err != nil {
		return "", err
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(raw), nil
}

// Import replaces the entire record with the given JSON snapshot.
// Validation happens before any mutation; a malformed snapshot leaves
// the stored record untouched and is reported as a structured failure,
// never an error value.
func (s *Service) Import(jsonData string) domain.ImportResult {
	var rec domain.GamificationRecord
	if err := json.Unmarshal([]byte(jsonData), &rec); err != nil {
		return domain.ImportResult{Success: false, Error: err.Error()}
	}
	if rec.EarnedBadges == nil {
		return domain.ImportResult{Success: false, Error: "missing earnedBadges array"}
	}
	normalize(&rec)

	if err := s.save(&rec); err != nil {
		return domain.ImportResult{Success: false, Error: err.Error()}
	}
	return domain.ImportResult{Success: true}
}

// Reset replaces the record with zeroed defaults.
func (s *Service) Reset() error {
	rec := domain.NewGamificationRecord()
	return s.save(&rec)
}
