package domain

import (
	"math"
	"slices"
	"time"
)

const day = 24 * time.Hour

// Due-date band scores. Bands are exclusive, the first match wins.
const (
	scoreOverdue   = 100
	scoreDueToday  = 80
	scoreDueTomor  = 60
	scoreDueSoon   = 40 // two or three days out
	scoreDueWeek   = 20 // four to seven days out
	scoreRecentNew = 5
)

var importanceScores = map[Importance]int{
	ImportanceCritical: 50,
	ImportanceHigh:     35,
	ImportanceMedium:   20,
	ImportanceLow:      10,
	ImportanceNone:     0,
}

// ComputeRank scores a task against now. It never reads the wall clock.
func ComputeRank(t Task, now time.Time) int {
	return dueDateScore(t.DueDate, now) + importanceScore(t.Importance) + recencyScore(t.CreatedAt, now)
}

// DaysUntilDue is the ceiling of the remaining time in whole days. A due time
// that passed earlier today still yields 0.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now).Milliseconds()) / float64(day.Milliseconds())))
}

func dueDateScore(due *time.Time, now time.Time) int {
	if due == nil {
		return 0
	}
	days := DaysUntilDue(*due, now)
	switch {
	case days < 0:
		return scoreOverdue
	case days == 0:
		return scoreDueToday
	case days == 1:
		return scoreDueTomor
	case days <= 3:
		return scoreDueSoon
	case days <= 7:
		return scoreDueWeek
	default:
		return 0
	}
}

func importanceScore(imp Importance) int {
	return importanceScores[imp]
}

func recencyScore(createdAt, now time.Time) int {
	elapsed := math.Floor(float64(now.Sub(createdAt).Milliseconds()) / float64(day.Milliseconds()))
	if elapsed == 0 {
		return scoreRecentNew
	}
	return 0
}

// OrderTasks returns a re-ranked copy of tasks: incomplete first, then by rank
// descending. Equal keys keep their input order.
func OrderTasks(tasks []Task, now time.Time) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.Rank = ComputeRank(t, now)
		out[i] = t
	}
	slices.SortStableFunc(out, compareTasks)
	return out
}

func compareTasks(a, b Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	return b.Rank - a.Rank
}
