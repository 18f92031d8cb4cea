// Package timeanalysis buckets completed tomato sessions by time of day
// and reports where focus time actually lands.
package timeanalysis

import (
	"math"
	"time"

	"github.com/tomato-clock/tomato/internal/domain"
)

// TimeOfDay is one of the four daily buckets.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // 06:00–12:00
	Afternoon TimeOfDay = "afternoon" // 12:00–18:00
	Evening   TimeOfDay = "evening"   // 18:00–22:00
	Night     TimeOfDay = "night"     // everything else
)

// order fixes the reporting order of the buckets.
var order = []TimeOfDay{Morning, Afternoon, Evening, Night}

// Bucket aggregates tomato sessions that ended within one time of day.
type Bucket struct {
	Count        int     `json:"count"`
	TotalMinutes float64 `json:"totalMinutes"`
}

// Stats maps each time of day to its aggregate.
type Stats map[TimeOfDay]Bucket

// BucketReport is a display-ready row for one time of day.
type BucketReport struct {
	TimeOfDay            TimeOfDay `json:"timeOfDay"`
	Count                int       `json:"count"`
	TotalMinutes         int       `json:"totalMinutes"`
	AvgMinutesPerSession int       `json:"avgMinutesPerSession"`
}

// Classify returns the time-of-day bucket for a moment.
func Classify(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return Morning
	case h >= 12 && h < 18:
		return Afternoon
	case h >= 18 && h < 22:
		return Evening
	default:
		return Night
	}
}

// Analyze groups completed tomato sessions by when they ended.
// Break entries and entries without an end time are ignored.
func Analyze(entries []domain.TimelineEntry) Stats {
	stats := Stats{}
	for _, tod := range order {
		stats[tod] = Bucket{}
	}

	for _, e := range entries {
		if e.Type != domain.SessionTomato || e.EndTime.IsZero() {
			continue
		}
		tod := Classify(e.EndTime)
		b := stats[tod]
		b.Count++
		b.TotalMinutes += e.Duration.Minutes()
		stats[tod] = b
	}
	return stats
}

// MostProductive returns the bucket with the most sessions, or "" when
// no tomato has been completed yet. Ties go to the earlier bucket.
func MostProductive(stats Stats) TimeOfDay {
	var best TimeOfDay
	max := 0
	for _, tod := range order {
		if stats[tod].Count > max {
			max = stats[tod].Count
			best = tod
		}
	}
	return best
}

// Report turns the stats into display rows, in bucket order.
func Report(stats Stats) []BucketReport {
	rows := make([]BucketReport, 0, len(order))
	for _, tod := range order {
		b := stats[tod]
		avg := 0
		if b.Count > 0 {
			avg = int(math.Round(b.TotalMinutes / float64(b.Count)))
		}
		rows = append(rows, BucketReport{
			TimeOfDay:            tod,
			Count:                b.Count,
			TotalMinutes:         int(math.Round(b.TotalMinutes)),
			AvgMinutesPerSession: avg,
		})
	}
	return rows
}
