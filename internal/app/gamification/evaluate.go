package gamification

import (
	"sort"
	"time"

	"github.com/tomato-clock/tomato/internal/domain"
)

// requirementCurrent returns the stat value a requirement is measured
// against. One switch drives both the unlock predicate and the
// progress display, so a new kind cannot satisfy one and not the
// other. The second return value is false for kinds the switch does
// not know, which evaluation treats as never satisfied.
func requirementCurrent(req domain.Requirement, stats *domain.UserStats, now time.Time) (float64, bool) {
	switch req.Kind {
	case domain.ReqTomatoesCompleted:
		return float64(stats.TomatoesCompleted), true
	case domain.ReqStreak:
		return float64(stats.LongestStreak), true
	case domain.ReqTotalMinutes:
		return stats.TotalMinutes, true
	case domain.ReqMorningSessions:
		return float64(stats.MorningSessionsCount), true
	case domain.ReqNightSessions:
		return float64(stats.NightSessionsCount), true
	case domain.ReqTomatoesInDay:
		return float64(maxTomatoesInDay(stats)), true
	case domain.ReqPerfectWeek:
		return float64(perfectWeeks(stats)), true
	case domain.ReqDaysWorkedInMonth:
		return float64(daysWorkedInMonth(stats, now)), true
	default:
		return 0, false
	}
}

// requirementMet reports whether a requirement's threshold is reached.
func requirementMet(req domain.Requirement, stats *domain.UserStats, now time.Time) bool {
	current, ok := requirementCurrent(req, stats, now)
	return ok && current >= float64(req.Count)
}

// badgeProgress computes the capped display progress for one badge.
func badgeProgress(badge domain.Badge, stats *domain.UserStats, now time.Time) domain.BadgeProgress {
	current, _ := requirementCurrent(badge.Requirement, stats, now)
	total := float64(badge.Requirement.Count)

	pct := current / total * 100
	if pct > 100 {
		pct = 100
	}

	return domain.BadgeProgress{
		Current:    current,
		Total:      total,
		Percentage: int(pct + 0.5),
	}
}

// maxTomatoesInDay returns the highest single-day tomato count ever
// recorded.
func maxTomatoesInDay(stats *domain.UserStats) int {
	max := 0
	for _, ds := range stats.DailyStats {
		if ds.Tomatoes > max {
			max = ds.Tomatoes
		}
	}
	return max
}

// perfectWeeks counts non-overlapping runs of at least 7 consecutive
// calendar days with 5 or more tomatoes each. Days with zero tomatoes
// are absent from DailyStats and so break a run; a 14-day qualifying
// run counts as 2 weeks (the counter resets every 7 days).
func perfectWeeks(stats *domain.UserStats) int {
	dates := make([]string, 0, len(stats.DailyStats))
	for d := range stats.DailyStats {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) < 7 {
		return 0
	}

	weeks := 0
	consecutive := 0

	for i, date := range dates {
		if stats.DailyStats[date].Tomatoes < 5 {
			consecutive = 0
			continue
		}

		if i > 0 && daysBetween(dates[i-1], date) == 1 {
			consecutive++
		} else {
			consecutive = 1
		}

		if consecutive >= 7 {
			weeks++
			consecutive = 0
		}
	}

	return weeks
}

// daysWorkedInMonth counts days with at least one tomato in the
// calendar month containing now. Evaluation-time-relative: the count
// drops back to zero on the first of a new month.
func daysWorkedInMonth(stats *domain.UserStats, now time.Time) int {
	worked := 0
	for date, ds := range stats.DailyStats {
		d, err := time.Parse(dateKeyLayout, date)
		if err != nil {
			continue
		}
		if d.Month() == now.Month() && d.Year() == now.Year() && ds.Tomatoes > 0 {
			worked++
		}
	}
	return worked
}
