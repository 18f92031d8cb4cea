// Package metrics provides Prometheus metrics for the Tomato Clock
// engine: session, XP, badge, streak, and storage counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsCompleted tracks completed timer sessions by type.
var SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "sessions_completed_total",
	Help:      "Total completed timer sessions.",
}, []string{"type"})

// FocusMinutes tracks accumulated focus minutes.
var FocusMinutes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "focus_minutes_total",
	Help:      "Total focus minutes from completed tomato sessions.",
})

// ─── Gamification ───────────────────────────────────────────────────────────

// XPEarned tracks total XP awarded.
var XPEarned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "xp_earned_total",
	Help:      "Total XP awarded, including badge bonuses.",
})

// BadgesUnlocked tracks badge unlocks by tier.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"tier"})

// CurrentLevel tracks the current user level.
var CurrentLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tomato",
	Name:      "level_current",
	Help:      "Current gamification level.",
})

// CurrentStreak tracks the current daily streak.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tomato",
	Name:      "streak_current_days",
	Help:      "Current daily completion streak.",
})

// ─── Storage ────────────────────────────────────────────────────────────────

// TimelineEntries tracks entries appended to the timeline.
var TimelineEntries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "timeline_entries_total",
	Help:      "Total timeline entries appended.",
})

// StorageMigrations tracks sync-to-local migrations by outcome.
var StorageMigrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "storage_migrations_total",
	Help:      "Sync-to-local storage migrations by outcome.",
}, []string{"outcome"})

// StorageCapacityErrors tracks writes rejected for capacity.
var StorageCapacityErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tomato",
	Name:      "storage_capacity_errors_total",
	Help:      "Writes rejected because a storage tier was full.",
})
