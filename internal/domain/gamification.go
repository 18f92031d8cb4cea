// Package domain holds the core types of the Tomato Clock engine.
// The gamification record is a single JSON document persisted in the
// local storage tier and mutated whole-record, read-modify-write.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ─── Gamification Record ────────────────────────────────────────────────────

// GamificationRecord is the singleton persisted gamification state.
// Invariant: Level == CalculateLevel(XP) after every mutation.
type GamificationRecord struct {
	XP           int      `json:"xp"`
	Level        int      `json:"level"`
	EarnedBadges []string `json:"earnedBadges"`
	Stats        UserStats `json:"stats"`

	// RecentlyEarnedBadges is an append log used for "new badge"
	// notifications. Callers read the tail.
	RecentlyEarnedBadges []EarnedBadge `json:"recentlyEarnedBadges"`
}

// UserStats accumulates per-session counters and per-day aggregates.
// Invariant: LongestStreak >= CurrentStreak.
type UserStats struct {
	TomatoesCompleted    int     `json:"tomatoesCompleted"`
	ShortBreaksCompleted int     `json:"shortBreaksCompleted"`
	LongBreaksCompleted  int     `json:"longBreaksCompleted"`
	TotalMinutes         float64 `json:"totalMinutes"`
	CurrentStreak        int     `json:"currentStreak"`
	LongestStreak        int     `json:"longestStreak"`

	// LastCompletionDate is a YYYY-MM-DD date key, or "" before the
	// first tomato completion.
	LastCompletionDate string `json:"lastCompletionDate"`

	// DailyStats maps YYYY-MM-DD date keys to that day's aggregates.
	// Days without completions are absent. Never pruned.
	DailyStats map[string]DayStat `json:"dailyStats"`

	MorningSessionsCount int `json:"morningSessionsCount"`
	NightSessionsCount   int `json:"nightSessionsCount"`
}

// DayStat is a single day's tomato aggregate.
type DayStat struct {
	Tomatoes int     `json:"tomatoes"`
	Minutes  float64 `json:"minutes"`
}

// NewGamificationRecord returns the zeroed default record created
// lazily on first read.
func NewGamificationRecord() GamificationRecord {
	return GamificationRecord{
		XP:                   0,
		Level:                1,
		EarnedBadges:         []string{},
		RecentlyEarnedBadges: []EarnedBadge{},
		Stats: UserStats{
			DailyStats: map[string]DayStat{},
		},
	}
}

// HasBadge reports whether the badge is already earned.
func (r *GamificationRecord) HasBadge(id string) bool {
	for _, b := range r.EarnedBadges {
		if b == id {
			return true
		}
	}
	return false
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeTier orders badges by prestige and determines the bonus XP
// awarded when a badge unlocks.
type BadgeTier string

const (
	TierBronze   BadgeTier = "bronze"
	TierSilver   BadgeTier = "silver"
	TierGold     BadgeTier = "gold"
	TierPlatinum BadgeTier = "platinum"
	TierDiamond  BadgeTier = "diamond"
)

// Badge is a static catalog entry. The catalog is fixed at build time;
// evaluation never mutates it.
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Tier        BadgeTier   `json:"tier"`
	Requirement Requirement `json:"requirement"`
}

// EarnedBadge records a badge unlock with its timestamp, kept in the
// recently-earned append log.
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earnedAt"`
}

// BadgeProgress reports how close a badge is to unlocking.
// Percentage is capped at 100.
type BadgeProgress struct {
	Current    float64 `json:"current"`
	Total      float64 `json:"total"`
	Percentage int     `json:"percentage"`
}

// BadgeStatus is a catalog badge annotated with earned state and
// progress, for display.
type BadgeStatus struct {
	Badge
	Earned   bool          `json:"earned"`
	Progress BadgeProgress `json:"progress"`
}

// ─── Requirements ───────────────────────────────────────────────────────────

// RequirementKind is the closed set of badge requirement predicates.
// Adding a kind requires extending the evaluator's switch; the
// evaluator rejects unknown kinds instead of silently failing them.
type RequirementKind uint8

const (
	ReqTomatoesCompleted RequirementKind = iota
	ReqStreak
	ReqTotalMinutes
	ReqMorningSessions
	ReqNightSessions
	ReqTomatoesInDay
	ReqPerfectWeek
	ReqDaysWorkedInMonth
)

var requirementKindNames = map[RequirementKind]string{
	ReqTomatoesCompleted: "tomatoes_completed",
	ReqStreak:            "streak",
	ReqTotalMinutes:      "total_minutes",
	ReqMorningSessions:   "morning_sessions",
	ReqNightSessions:     "night_sessions",
	ReqTomatoesInDay:     "tomatoes_in_day",
	ReqPerfectWeek:       "perfect_week",
	ReqDaysWorkedInMonth: "days_worked_in_month",
}

// String returns the wire name of the kind.
func (k RequirementKind) String() string {
	if name, ok := requirementKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseRequirementKind maps a wire name back to a kind.
func ParseRequirementKind(name string) (RequirementKind, error) {
	for k, n := range requirementKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown requirement kind %q", name)
}

// MarshalJSON encodes the kind as its wire name.
func (k RequirementKind) MarshalJSON() ([]byte, error) {
	name, ok := requirementKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown requirement kind %d", uint8(k))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire name into a kind.
func (k *RequirementKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRequirementKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Requirement is a badge's unlock threshold.
type Requirement struct {
	Kind  RequirementKind `json:"type"`
	Count int             `json:"count"`
}

// ─── Levels ─────────────────────────────────────────────────────────────────

// Level is a static catalog entry. The catalog is ordered ascending by
// XPRequired; level 1 requires 0 XP.
type Level struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	XPRequired int    `json:"xpRequired"`
	Icon       string `json:"icon"`
}

// LevelProgress reports progress from the current level threshold to
// the next, for display. At max level Percentage is 100 and XPNeeded 0.
type LevelProgress struct {
	Percentage int `json:"percentage"`
	XPNeeded   int `json:"xpNeeded"`
	XPCurrent  int `json:"xpCurrent"`
	XPTotal    int `json:"xpTotal"`
}

// ─── Completion Results ─────────────────────────────────────────────────────

// XPResult reports the outcome of a single XP award.
type XPResult struct {
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	LeveledUp bool   `json:"leveledUp"`
	OldLevel  int    `json:"oldLevel"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
}

// XPAward is one line of a completion's XP breakdown.
type XPAward struct {
	Reason string `json:"reason"`
	Amount int    `json:"amount"`
}

// CompletionResult is the composed result of one session completion,
// consumed by notification and UI layers.
type CompletionResult struct {
	XPResult      XPResult `json:"xpResult"`
	NewBadges     []Badge  `json:"newBadges"`
	XPBreakdown   []XPAward `json:"xpBreakdown"`
	CurrentStreak int      `json:"currentStreak"`
}

// ImportResult is the structured outcome of an import operation.
// Parse failures become {Success:false} and never an error value.
type ImportResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
