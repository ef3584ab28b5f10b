// Package cli implements the taskwise command-line client. Every command
// operates directly on the local store configured through the environment.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskwise/internal/app"
	"github.com/fastygo/taskwise/internal/config"
	"github.com/fastygo/taskwise/internal/services/lifecycle"
	"github.com/fastygo/taskwise/pkg/logger"
)

const commandTimeout = 45 * time.Second

type runtime struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
}

// withApp builds the application for a single command and shuts it down afterwards.
func (r *runtime) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := "error"
	if r.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Encoding: "console", Output: r.errOut})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, log)
	a, err := app.Build(ctx, cfg, log, manager)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Board.Flush(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("save tasks: %w", err)
	}
	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// NewRootCommand assembles the command tree. Output goes to out, logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	r := &runtime{out: out, errOut: errOut, now: time.Now}

	root := &cobra.Command{
		Use:   "taskwise",
		Short: "TaskWise - a ranked personal task list",
		Long: `TaskWise keeps a single ranked list of tasks. Rank grows as due dates
approach, with importance and recent creation adding to it. Completed tasks
sink to the bottom.

Optional AI suggestions use the Gemini API; set a key with "taskwise key set".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		r.addCmd(),
		r.listCmd(),
		r.editCmd(),
		r.doneCmd(),
		r.rmCmd(),
		r.suggestCmd(),
		r.keyCmd(),
	)
	return root
}

// Execute runs the CLI against the process streams.
func Execute(version string) error {
	root := NewRootCommand(os.Stdout, os.Stderr)
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
