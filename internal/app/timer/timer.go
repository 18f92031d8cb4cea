// Package timer runs the background session countdown and drives the
// completion pipeline when a session finishes.
package timer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/app/tasks"
	"github.com/tomato-clock/tomato/internal/app/timeline"
	"github.com/tomato-clock/tomato/internal/domain"
)

// State is a snapshot of the running timer.
type State struct {
	Running       bool               `json:"running"`
	Type          domain.SessionType `json:"type,omitempty"`
	TaskID        string             `json:"taskId,omitempty"`
	StartTime     time.Time          `json:"startTime,omitempty"`
	ScheduledTime time.Time          `json:"scheduledTime,omitempty"`
	TotalTime     time.Duration      `json:"totalTime,omitempty"`
}

// Completion carries everything a listener needs when a session ends.
type Completion struct {
	Entry  domain.TimelineEntry    `json:"entry"`
	Result domain.CompletionResult `json:"result"`
	Quote  string                  `json:"quote"`
}

// Timer counts down one session at a time. Starting a new session
// cancels the previous one.
type Timer struct {
	gamification *gamification.Service
	timeline     *timeline.Store
	tasks        *tasks.Store

	mu         sync.Mutex
	state      State
	cancel     context.CancelFunc
	onComplete func(Completion)
}

// New creates a timer wired to the completion pipeline.
func New(g *gamification.Service, tl *timeline.Store, ts *tasks.Store) *Timer {
	return &Timer{gamification: g, timeline: tl, tasks: ts}
}

// SetOnComplete registers a hook invoked after each completed session.
func (t *Timer) SetOnComplete(fn func(Completion)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onComplete = fn
}

// Start begins a session countdown. Any running session is reset first.
func (t *Timer) Start(sessionType domain.SessionType, taskID string, duration time.Duration) error {
	if !sessionType.IsValid() {
		return domain.ErrInvalidSessionType
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()

	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.state = State{
		Running:       true,
		Type:          sessionType,
		TaskID:        taskID,
		StartTime:     now,
		ScheduledTime: now.Add(duration),
		TotalTime:     duration,
	}

	go t.run(ctx)
	log.Printf("[timer] started %s session (%s)", sessionType, duration)
	return nil
}

// Reset cancels the running session without recording anything.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *Timer) resetLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.state = State{}
}

// State returns a snapshot of the current timer.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ScheduledTime returns when the running session will finish.
// The zero time means no session is running.
func (t *Timer) ScheduledTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.ScheduledTime
}

// run ticks once a second until the scheduled time passes.
func (t *Timer) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.mu.Lock()
			state := t.state
			t.mu.Unlock()
			if !state.Running {
				return
			}
			if now.Before(state.ScheduledTime) {
				continue
			}
			t.complete(state, now)
			return
		}
	}
}

// complete runs the completion pipeline: gamification first, then the
// timeline entry, then task stats. A failure in one step never blocks
// the others.
func (t *Timer) complete(state State, now time.Time) {
	t.mu.Lock()
	t.resetLocked()
	onComplete := t.onComplete
	t.mu.Unlock()

	minutes := state.TotalTime.Minutes()
	result := t.gamification.RecordSessionCompletion(state.Type, minutes)

	entry := domain.TimelineEntry{
		Type:      state.Type,
		StartTime: state.StartTime,
		EndTime:   now,
		Duration:  state.TotalTime,
		TaskID:    state.TaskID,
	}
	if err := t.timeline.Append(entry); err != nil {
		log.Printf("[timer] record timeline entry: %v", err)
	}

	if state.Type == domain.SessionTomato && state.TaskID != "" {
		if _, err := t.tasks.IncrementStats(state.TaskID, minutes); err != nil {
			log.Printf("[timer] update task stats: %v", err)
		}
	}

	log.Printf("[timer] %s session complete: +%d XP, streak %d",
		state.Type, result.XPResult.Amount, result.CurrentStreak)

	if onComplete != nil {
		onComplete(Completion{
			Entry:  entry,
			Result: result,
			Quote:  gamification.RandomQuote(),
		})
	}
}
