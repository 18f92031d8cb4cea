// Package tasks implements the task list that tomato sessions can be
// attached to. Tasks are stored as a JSON array in the local tier and
// rewritten whole on every mutation, matching the storage model of the
// rest of the engine.
package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

const tasksKey = "tasks"

// Store owns the persisted task list.
type Store struct {
	store storage.Bucket
}

// NewStore creates a task store over the local tier.
func NewStore(store storage.Bucket) *Store {
	return &Store{store: store}
}

// All returns every task, oldest first.
func (s *Store) All() ([]domain.Task, error) {
	raw, ok, err := s.store.Get(tasksKey)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if !ok {
		return []domain.Task{}, nil
	}

	var list []domain.Task
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return list, nil
}

func (s *Store) save(list []domain.Task) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.store.Set(tasksKey, raw); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Add creates a new task and returns it.
func (s *Store) Add(name, description string) (domain.Task, error) {
	list, err := s.All()
	if err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	list = append(list, task)

	if err := s.save(list); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Get returns a task by ID.
func (s *Store) Get(id string) (domain.Task, error) {
	list, err := s.All()
	if err != nil {
		return domain.Task{}, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// Update applies the given mutation to a task and returns the result.
func (s *Store) Update(id string, mutate func(*domain.Task)) (domain.Task, error) {
	list, err := s.All()
	if err != nil {
		return domain.Task{}, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		mutate(&list[i])
		if err := s.save(list); err != nil {
			return domain.Task{}, err
		}
		return list[i], nil
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// Delete removes a task. Deleting an absent task is not an error.
func (s *Store) Delete(id string) error {
	list, err := s.All()
	if err != nil {
		return err
	}

	filtered := list[:0]
	for _, t := range list {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	return s.save(filtered)
}

// ToggleComplete flips a task's completed flag.
func (s *Store) ToggleComplete(id string) (domain.Task, error) {
	return s.Update(id, func(t *domain.Task) {
		t.Completed = !t.Completed
	})
}

// IncrementStats folds a completed tomato into a task's counters.
func (s *Store) IncrementStats(id string, durationMinutes float64) (domain.Task, error) {
	return s.Update(id, func(t *domain.Task) {
		t.TomatoCount++
		t.TotalMinutes += durationMinutes
	})
}

// Active returns tasks not yet completed.
func (s *Store) Active() ([]domain.Task, error) {
	return s.filtered(false)
}

// Completed returns finished tasks.
func (s *Store) Completed() ([]domain.Task, error) {
	return s.filtered(true)
}

func (s *Store) filtered(completed bool) ([]domain.Task, error) {
	list, err := s.All()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(list))
	for _, t := range list {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out, nil
}
