package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fastygo/taskwise/domain"
)

const idPrefixLen = 8

func shortID(id string) string {
	if len(id) <= idPrefixLen {
		return id
	}
	return id[:idPrefixLen]
}

func renderTasks(w io.Writer, tasks []domain.Task, now time.Time) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t \tTITLE\tIMPORTANCE\tDUE\tSUBJECT\tRANK")
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			shortID(t.ID), check, t.Title, t.Importance, dueLabel(t.DueDate, now), dash(t.Subject), t.Rank)
	}
	return tw.Flush()
}

func dueLabel(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	date := due.Format("Jan 2")
	switch days := domain.DaysUntilDue(*due, now); {
	case days < 0:
		return date + " (overdue)"
	case days == 0:
		return date + " (today)"
	case days == 1:
		return date + " (tomorrow)"
	default:
		return fmt.Sprintf("%s (in %d days)", date, days)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
