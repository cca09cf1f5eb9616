package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/spf13/cobra"
)

// Maintainer runs the data repair jobs
type Maintainer interface {
	BackfillReadTopics(ctx context.Context) (int64, error)
	FixInvalidCategories(ctx context.Context) (int, error)
	ReconcileFavoriteCounts(ctx context.Context) (*service.ReconcileReport, error)
}

// Deps connects the commands to the store. OpenMaintainer returns a release
// func that must be called when the command is done.
type Deps struct {
	OpenMaintainer func(ctx context.Context) (Maintainer, func(), error)
	Migrate        func(ctx context.Context) error
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the maintenance CLI.
func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Daily Learning data maintenance",
		Long:  "One-off repair jobs for the Daily Learning store: schema migrations, read history backfill, category cleanup and favorite count reconciliation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(deps))
	cmd.AddCommand(newBackfillCommand(opts, deps))
	cmd.AddCommand(newFixCategoriesCommand(opts, deps))
	cmd.AddCommand(newReconcileCommand(opts, deps))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withMaintainer opens the store for the duration of fn
func withMaintainer(ctx context.Context, deps Deps, fn func(Maintainer) error) error {
	m, release, err := deps.OpenMaintainer(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(m)
}

func writeResult(w io.Writer, format string, result any, text string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
