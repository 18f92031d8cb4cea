package domain

import "time"

// Task is a user-defined unit of work that tomato sessions can be
// attached to. Stats accumulate when an attached tomato completes.
type Task struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"createdAt"`
	TomatoCount  int       `json:"tomatoCount"`
	TotalMinutes float64   `json:"totalMinutes"`
}
