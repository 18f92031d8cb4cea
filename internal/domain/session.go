package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ─── Session Types ──────────────────────────────────────────────────────────

// SessionType identifies what kind of timer session completed.
type SessionType string

const (
	SessionTomato     SessionType = "tomato"
	SessionShortBreak SessionType = "shortBreak"
	SessionLongBreak  SessionType = "longBreak"
)

// IsValid reports whether the type is one of the three session kinds.
func (s SessionType) IsValid() bool {
	switch s {
	case SessionTomato, SessionShortBreak, SessionLongBreak:
		return true
	default:
		return false
	}
}

// ParseSessionType validates a wire string as a session type.
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid session type %q", s)
	}
	return t, nil
}

// ─── Timeline Entries ───────────────────────────────────────────────────────

// TimelineEntry is the canonical in-memory form of one completed
// session. Two wire shapes exist: the current
// {type,startTime,endTime,duration,taskId?,note?} shape and the legacy
// {type,date,timeout} shape. Both decode into this struct at the
// storage boundary; nothing past it branches on shape.
type TimelineEntry struct {
	Type      SessionType
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	TaskID    string
	Note      string
}

// EffectiveTime is the timestamp used for range filtering: the end
// time, which for decoded legacy entries carries the recorded date.
func (e TimelineEntry) EffectiveTime() time.Time {
	return e.EndTime
}

// wireEntry is the union of both persisted shapes.
type wireEntry struct {
	Type      string          `json:"type"`
	StartTime string          `json:"startTime,omitempty"`
	EndTime   string          `json:"endTime,omitempty"`
	Duration  int64           `json:"duration,omitempty"` // milliseconds
	TaskID    string          `json:"taskId,omitempty"`
	Note      string          `json:"note,omitempty"`
	Date      json.RawMessage `json:"date,omitempty"`    // legacy
	Timeout   float64         `json:"timeout,omitempty"` // legacy, minutes
}

// MarshalJSON always emits the current shape.
func (e TimelineEntry) MarshalJSON() ([]byte, error) {
	w := wireEntry{
		Type:     string(e.Type),
		Duration: e.Duration.Milliseconds(),
		TaskID:   e.TaskID,
		Note:     e.Note,
	}
	if !e.StartTime.IsZero() {
		w.StartTime = e.StartTime.UTC().Format(time.RFC3339Nano)
	}
	if !e.EndTime.IsZero() {
		w.EndTime = e.EndTime.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts both wire shapes indefinitely.
func (e *TimelineEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	entry := TimelineEntry{
		Type:   SessionType(w.Type),
		TaskID: w.TaskID,
		Note:   w.Note,
	}

	switch {
	case w.EndTime != "":
		end, err := time.Parse(time.RFC3339Nano, w.EndTime)
		if err != nil {
			return fmt.Errorf("parse endTime: %w", err)
		}
		entry.EndTime = end
		if w.StartTime != "" {
			start, err := time.Parse(time.RFC3339Nano, w.StartTime)
			if err != nil {
				return fmt.Errorf("parse startTime: %w", err)
			}
			entry.StartTime = start
		}
		entry.Duration = time.Duration(w.Duration) * time.Millisecond

	case len(w.Date) > 0:
		// Legacy entries recorded a completion date and a timeout in
		// minutes. The date was serialized either as epoch
		// milliseconds or as an ISO string, depending on extension
		// version.
		date, err := parseLegacyDate(w.Date)
		if err != nil {
			return fmt.Errorf("parse legacy date: %w", err)
		}
		entry.Duration = time.Duration(w.Timeout * float64(time.Minute))
		entry.EndTime = date
		entry.StartTime = date.Add(-entry.Duration)

	default:
		return fmt.Errorf("timeline entry has neither endTime nor date")
	}

	*e = entry
	return nil
}

func parseLegacyDate(raw json.RawMessage) (time.Time, error) {
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("date is neither number nor string")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
