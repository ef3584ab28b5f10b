package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskwise/api/transport"
	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/internal/app"
	taskUC "github.com/fastygo/taskwise/usecase/task"
)

type taskFlags struct {
	title       string
	description string
	due         string
	importance  string
	subject     string
	clearDue    bool
}

func (f *taskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.title, "title", "", "New title")
	}
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVarP(&f.importance, "importance", "i", "", "none, low, medium, high or critical")
	cmd.Flags().StringVarP(&f.subject, "subject", "s", "", "Subject label")
}

func (r *runtime) addCmd() *cobra.Command {
	var (
		f       taskFlags
		suggest bool
		extra   string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := transport.TaskRequest{
				Title:       strings.Join(args, " "),
				Description: f.description,
				DueDate:     f.due,
				Importance:  f.importance,
				Subject:     f.subject,
			}
			in, err := req.Input()
			if err != nil {
				return err
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if suggest && f.importance == "" {
					imp, err := a.Board.SuggestPriority(ctx, domain.PriorityQuery{
						Title:       in.Title,
						Description: in.Description,
						Subject:     in.Subject,
						DueDate:     in.DueDate,
						UserContext: extra,
					})
					if err != nil {
						fmt.Fprintf(r.errOut, "AI suggestion unavailable: %v\n", err)
					} else {
						in.Importance = imp
						fmt.Fprintf(r.out, "Suggested importance: %s\n", imp)
					}
				}
				created, err := a.Board.Create(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(r.out, "Added %s  %s (rank %d)\n", shortID(created.ID), created.Title, created.Rank)
				return nil
			})
		},
	}
	f.register(cmd, false)
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Ask the AI for an importance when --importance is not given")
	cmd.Flags().StringVar(&extra, "context", "", "Extra context for the AI suggestion")
	return cmd
}

func (r *runtime) listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks in rank order",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch status {
			case "all", "active", "completed":
			default:
				return fmt.Errorf("--status must be all, active or completed")
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tasks := a.Board.List()
				switch status {
				case "active":
					tasks = filter(tasks, false)
				case "completed":
					tasks = filter(tasks, true)
				}
				return renderTasks(r.out, tasks, r.now())
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, active or completed")
	return cmd
}

func (r *runtime) editCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				existing, err := resolveTask(a.Board, args[0])
				if err != nil {
					return err
				}
				in := existing.Input()
				flags := cmd.Flags()
				if flags.Changed("title") {
					in.Title = f.title
				}
				if flags.Changed("desc") {
					in.Description = f.description
				}
				if flags.Changed("subject") {
					in.Subject = f.subject
				}
				if flags.Changed("importance") {
					imp, ok := domain.ParseImportance(f.importance)
					if !ok {
						return domain.ErrInvalidImportance
					}
					in.Importance = imp
				}
				if flags.Changed("due") {
					due, err := transport.ParseDueDate(f.due)
					if err != nil {
						return err
					}
					in.DueDate = due
				}
				if f.clearDue {
					in.DueDate = nil
				}

				updated, err := a.Board.Update(ctx, existing.ID, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(r.out, "Updated %s  %s (rank %d)\n", shortID(updated.ID), updated.Title, updated.Rank)
				return nil
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().BoolVar(&f.clearDue, "clear-due", false, "Remove the due date")
	return cmd
}

func (r *runtime) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t, err := resolveTask(a.Board, args[0])
				if err != nil {
					return err
				}
				toggled, err := a.Board.Toggle(ctx, t.ID)
				if err != nil {
					return err
				}
				state := "active"
				if toggled.Completed {
					state = "completed"
				}
				fmt.Fprintf(r.out, "%s  %s is now %s\n", shortID(toggled.ID), toggled.Title, state)
				return nil
			})
		},
	}
}

func (r *runtime) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t, err := resolveTask(a.Board, args[0])
				if err != nil {
					return err
				}
				if err := a.Board.Delete(ctx, t.ID); err != nil {
					return err
				}
				fmt.Fprintf(r.out, "Deleted %s  %s\n", shortID(t.ID), t.Title)
				return nil
			})
		},
	}
}

func (r *runtime) suggestCmd() *cobra.Command {
	var (
		kind  string
		extra string
	)
	cmd := &cobra.Command{
		Use:   "suggest <id>",
		Short: "Ask the AI to improve a task and apply the answer",
		Long: `Kinds:
  priority              suggest an importance level
  optimize-title        tighten the title
  optimize-description  tighten the description
  generate-description  write a description from the title`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := domain.ParseSuggestionKind(kind)
			if err != nil {
				return err
			}
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t, err := resolveTask(a.Board, args[0])
				if err != nil {
					return err
				}
				session, err := a.Board.OpenEdit(t.ID)
				if err != nil {
					return err
				}
				defer a.Board.CloseEdit(session.ID)

				pending, err := a.Board.RequestSuggestion(session.ID, k, extra)
				if err != nil {
					return err
				}
				select {
				case <-pending.Done():
				case <-ctx.Done():
					pending.Cancel()
					return ctx.Err()
				}

				outcome := pending.Outcome()
				switch outcome.Status {
				case taskUC.OutcomeApplied:
					fmt.Fprintf(r.out, "Applied %s: %s\n", k, outcome.Value)
					return nil
				case taskUC.OutcomeFailed:
					return outcome.Err()
				default:
					return fmt.Errorf("suggestion %s", outcome.Status)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(domain.SuggestPriority), "priority, optimize-title, optimize-description or generate-description")
	cmd.Flags().StringVar(&extra, "context", "", "Extra context for priority suggestions")
	return cmd
}

// resolveTask accepts a full id or a unique prefix of one.
func resolveTask(board *taskUC.UseCase, ref string) (domain.Task, error) {
	if t, err := board.Get(ref); err == nil {
		return t, nil
	}
	var match *domain.Task
	for _, t := range board.List() {
		if strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return domain.Task{}, fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = &t
		}
	}
	if match == nil {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return *match, nil
}

func filter(tasks []domain.Task, completed bool) []domain.Task {
	out := tasks[:0:0]
	for _, t := range tasks {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}
