package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreateTask builds a new incomplete task from validated form input.
func CreateTask(in TaskInput, now time.Time) (Task, error) {
	if err := in.Validate(); err != nil {
		return Task{}, err
	}
	in = in.normalize()

	t := Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Importance:  in.Importance,
		Subject:     in.Subject,
		Completed:   false,
		CreatedAt:   now,
	}
	t.Rank = ComputeRank(t, now)
	return t, nil
}

// UpdateTask replaces the editable fields of existing. ID, CreatedAt and
// Completed are carried over. The caller must have validated in.
func UpdateTask(existing Task, in TaskInput, now time.Time) Task {
	in = in.normalize()

	updated := existing
	updated.Title = in.Title
	updated.Description = in.Description
	updated.DueDate = in.DueDate
	updated.Importance = in.Importance
	updated.Subject = in.Subject
	updated.Rank = ComputeRank(updated, now)
	return updated
}

// ToggleComplete flips the completion flag and nothing else.
func ToggleComplete(t Task) Task {
	t.Completed = !t.Completed
	return t
}

// DeleteTask returns the collection without the task identified by id.
func DeleteTask(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// FindTask returns the index of the task with id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
