package gamification

import "github.com/tomato-clock/tomato/internal/domain"

// XP values per completion and bonus.
const (
	xpTomatoCompleted     = 10
	xpShortBreakCompleted = 2
	xpLongBreakCompleted  = 5
	xpStreakBonusPerDay   = 5
	xpStreakBonusCap      = 100
)

// tierBonusXP is the one-time XP bonus awarded when a badge of the
// given tier unlocks.
var tierBonusXP = map[domain.BadgeTier]int{
	domain.TierBronze:   25,
	domain.TierSilver:   50,
	domain.TierGold:     100,
	domain.TierPlatinum: 200,
	domain.TierDiamond:  500,
}

// badges is the static badge catalog. Evaluation iterates it in this
// declaration order, so the order is part of the observable behavior
// (earlier badges' bonus XP is applied before later ones are checked).
var badges = []domain.Badge{
	// ── Completion badges ──────────────────────────────────────────
	{
		ID: "first_tomato", Name: "First Steps",
		Description: "Complete your first tomato session",
		Icon:        "🍅", Tier: domain.TierBronze,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 1},
	},
	{
		ID: "tomato_10", Name: "Getting Started",
		Description: "Complete 10 tomato sessions",
		Icon:        "🎯", Tier: domain.TierBronze,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 10},
	},
	{
		ID: "tomato_50", Name: "Dedicated Worker",
		Description: "Complete 50 tomato sessions",
		Icon:        "💪", Tier: domain.TierSilver,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 50},
	},
	{
		ID: "tomato_100", Name: "Century Club",
		Description: "Complete 100 tomato sessions",
		Icon:        "💯", Tier: domain.TierGold,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 100},
	},
	{
		ID: "tomato_250", Name: "Productivity Master",
		Description: "Complete 250 tomato sessions",
		Icon:        "👑", Tier: domain.TierPlatinum,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 250},
	},
	{
		ID: "tomato_500", Name: "Legendary Focus",
		Description: "Complete 500 tomato sessions",
		Icon:        "🏆", Tier: domain.TierDiamond,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesCompleted, Count: 500},
	},

	// ── Streak badges ──────────────────────────────────────────────
	{
		ID: "streak_3", Name: "Building Momentum",
		Description: "Maintain a 3-day streak",
		Icon:        "🔥", Tier: domain.TierBronze,
		Requirement: domain.Requirement{Kind: domain.ReqStreak, Count: 3},
	},
	{
		ID: "streak_7", Name: "Week Warrior",
		Description: "Maintain a 7-day streak",
		Icon:        "⚡", Tier: domain.TierSilver,
		Requirement: domain.Requirement{Kind: domain.ReqStreak, Count: 7},
	},
	{
		ID: "streak_30", Name: "Monthly Mastery",
		Description: "Maintain a 30-day streak",
		Icon:        "🌟", Tier: domain.TierGold,
		Requirement: domain.Requirement{Kind: domain.ReqStreak, Count: 30},
	},
	{
		ID: "streak_100", Name: "Unstoppable Force",
		Description: "Maintain a 100-day streak",
		Icon:        "💫", Tier: domain.TierDiamond,
		Requirement: domain.Requirement{Kind: domain.ReqStreak, Count: 100},
	},

	// ── Time-based badges ──────────────────────────────────────────
	{
		ID: "hours_10", Name: "Time Investment",
		Description: "Log 10 hours of focus time",
		Icon:        "⏰", Tier: domain.TierBronze,
		Requirement: domain.Requirement{Kind: domain.ReqTotalMinutes, Count: 600},
	},
	{
		ID: "hours_50", Name: "Focused Mind",
		Description: "Log 50 hours of focus time",
		Icon:        "🧠", Tier: domain.TierSilver,
		Requirement: domain.Requirement{Kind: domain.ReqTotalMinutes, Count: 3000},
	},
	{
		ID: "hours_100", Name: "Time Master",
		Description: "Log 100 hours of focus time",
		Icon:        "⌛", Tier: domain.TierGold,
		Requirement: domain.Requirement{Kind: domain.ReqTotalMinutes, Count: 6000},
	},
	{
		ID: "hours_500", Name: "Marathon Runner",
		Description: "Log 500 hours of focus time",
		Icon:        "🎖️", Tier: domain.TierPlatinum,
		Requirement: domain.Requirement{Kind: domain.ReqTotalMinutes, Count: 30000},
	},

	// ── Daily achievement badges ───────────────────────────────────
	{
		ID: "early_bird", Name: "Early Bird",
		Description: "Complete 10 morning sessions (6am-9am)",
		Icon:        "🌅", Tier: domain.TierSilver,
		Requirement: domain.Requirement{Kind: domain.ReqMorningSessions, Count: 10},
	},
	{
		ID: "night_owl", Name: "Night Owl",
		Description: "Complete 10 late night sessions (10pm-2am)",
		Icon:        "🦉", Tier: domain.TierSilver,
		Requirement: domain.Requirement{Kind: domain.ReqNightSessions, Count: 10},
	},

	// ── Productivity badges ────────────────────────────────────────
	{
		ID: "productive_day", Name: "Super Productive",
		Description: "Complete 10 tomatoes in a single day",
		Icon:        "🚀", Tier: domain.TierGold,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesInDay, Count: 10},
	},
	{
		ID: "marathon_day", Name: "Marathon Day",
		Description: "Complete 15 tomatoes in a single day",
		Icon:        "🏅", Tier: domain.TierPlatinum,
		Requirement: domain.Requirement{Kind: domain.ReqTomatoesInDay, Count: 15},
	},

	// ── Perfect week badges ────────────────────────────────────────
	{
		ID: "perfect_week", Name: "Perfect Week",
		Description: "Complete at least 5 tomatoes every day for 7 days",
		Icon:        "✨", Tier: domain.TierPlatinum,
		Requirement: domain.Requirement{Kind: domain.ReqPerfectWeek, Count: 1},
	},

	// ── Consistency badges ─────────────────────────────────────────
	{
		ID: "consistent_worker", Name: "Consistent Worker",
		Description: "Work at least 20 days in a month",
		Icon:        "📅", Tier: domain.TierGold,
		Requirement: domain.Requirement{Kind: domain.ReqDaysWorkedInMonth, Count: 20},
	},
}

// AllBadges returns the full badge catalog in evaluation order.
func AllBadges() []domain.Badge {
	return badges
}

// BadgeByID looks up a catalog badge.
func BadgeByID(id string) (domain.Badge, bool) {
	for _, b := range badges {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Badge{}, false
}
