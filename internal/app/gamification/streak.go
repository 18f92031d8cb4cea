package gamification

import (
	"time"

	"github.com/tomato-clock/tomato/internal/domain"
)

const dateKeyLayout = "2006-01-02"

// dateKey formats a completion time as a YYYY-MM-DD daily-stats key.
func dateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// daysBetween returns whole calendar days from one date key to
// another. Keys are parsed as UTC midnights.
func daysBetween(from, to string) int {
	a, errA := time.Parse(dateKeyLayout, from)
	b, errB := time.Parse(dateKeyLayout, to)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// recordDailyCompletion folds one tomato completion into the per-day
// aggregates and recomputes the streak. Must run before badge
// evaluation so streak-dependent badges see up-to-date values within
// the same completion event.
func recordDailyCompletion(stats *domain.UserStats, day string, minutes float64) {
	if stats.DailyStats == nil {
		stats.DailyStats = map[string]domain.DayStat{}
	}
	ds := stats.DailyStats[day]
	ds.Tomatoes++
	ds.Minutes += minutes
	stats.DailyStats[day] = ds

	updateStreak(stats, day)
}

// updateStreak advances the streak state machine for a completion on
// the given day. Multiple completions on the same day are idempotent;
// a one-day gap extends the streak, anything larger resets it to 1.
func updateStreak(stats *domain.UserStats, day string) {
	last := stats.LastCompletionDate

	switch {
	case last == "":
		// First ever completion
		stats.CurrentStreak = 1
		if stats.LongestStreak < 1 {
			stats.LongestStreak = 1
		}

	case last == day:
		// Already counted today
		return

	default:
		gap := daysBetween(last, day)
		if gap == 1 {
			stats.CurrentStreak++
			if stats.CurrentStreak > stats.LongestStreak {
				stats.LongestStreak = stats.CurrentStreak
			}
		} else if gap > 1 {
			stats.CurrentStreak = 1
		}
	}

	stats.LastCompletionDate = day
}
