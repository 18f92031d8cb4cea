package gamification

import "github.com/tomato-clock/tomato/internal/domain"

// levels is the static level catalog, ordered ascending by XPRequired.
// Level 1 requires 0 XP and thresholds are strictly increasing.
var levels = []domain.Level{
	{Level: 1, Name: "Beginner", XPRequired: 0, Icon: "🌱"},
	{Level: 2, Name: "Learner", XPRequired: 100, Icon: "🌿"},
	{Level: 3, Name: "Apprentice", XPRequired: 250, Icon: "🍃"},
	{Level: 4, Name: "Practitioner", XPRequired: 500, Icon: "🌳"},
	{Level: 5, Name: "Professional", XPRequired: 1000, Icon: "🎯"},
	{Level: 6, Name: "Expert", XPRequired: 2000, Icon: "⭐"},
	{Level: 7, Name: "Master", XPRequired: 4000, Icon: "💎"},
	{Level: 8, Name: "Grandmaster", XPRequired: 8000, Icon: "👑"},
	{Level: 9, Name: "Legend", XPRequired: 15000, Icon: "🏆"},
	{Level: 10, Name: "Mythic", XPRequired: 25000, Icon: "🌟"},
}

// AllLevels returns the full level catalog (for display).
func AllLevels() []domain.Level {
	return levels
}

// CalculateLevel returns the highest level whose threshold the XP
// meets, scanning from the top of the table downward.
func CalculateLevel(xp int) int {
	for i := len(levels) - 1; i >= 0; i-- {
		if xp >= levels[i].XPRequired {
			return levels[i].Level
		}
	}
	return 1
}

// LevelInfo returns the catalog entry for a level, falling back to
// level 1 for out-of-range values.
func LevelInfo(level int) domain.Level {
	for _, l := range levels {
		if l.Level == level {
			return l
		}
	}
	return levels[0]
}

// NextLevelInfo returns the catalog entry after the given level.
// The second return value is false at max level.
func NextLevelInfo(level int) (domain.Level, bool) {
	for _, l := range levels {
		if l.Level == level+1 {
			return l, true
		}
	}
	return domain.Level{}, false
}

// ProgressToNextLevel interpolates XP between the current and next
// level thresholds, clamped to [0,100]. At max level it reports 100%
// with nothing remaining.
func ProgressToNextLevel(xp, level int) domain.LevelProgress {
	current := LevelInfo(level)
	next, ok := NextLevelInfo(level)
	if !ok {
		return domain.LevelProgress{
			Percentage: 100,
			XPNeeded:   0,
			XPCurrent:  xp,
			XPTotal:    current.XPRequired,
		}
	}

	needed := next.XPRequired - current.XPRequired
	progress := xp - current.XPRequired
	pct := float64(progress) / float64(needed) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	return domain.LevelProgress{
		Percentage: int(pct + 0.5),
		XPNeeded:   needed,
		XPCurrent:  progress,
		XPTotal:    next.XPRequired,
	}
}
