package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return err
		},
	}
}

func newBackfillCommand(opts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-read-topics",
		Short: "Give users without a read history an empty one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintainer(cmd.Context(), deps, func(m Maintainer) error {
				n, err := m.BackfillReadTopics(cmd.Context())
				if err != nil {
					return fmt.Errorf("backfill failed: %w", err)
				}
				return writeResult(cmd.OutOrStdout(), opts.Format,
					map[string]int64{"usersUpdated": n},
					fmt.Sprintf("Updated %d users", n))
			})
		},
	}
}

func newFixCategoriesCommand(opts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-categories",
		Short: "Move topics with unknown categories into Uncategorized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintainer(cmd.Context(), deps, func(m Maintainer) error {
				n, err := m.FixInvalidCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("category cleanup failed: %w", err)
				}
				return writeResult(cmd.OutOrStdout(), opts.Format,
					map[string]int{"topicsFixed": n},
					fmt.Sprintf("Fixed %d topics", n))
			})
		},
	}
}

func newReconcileCommand(opts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-favorites",
		Short: "Recompute topic favorite counts from user favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintainer(cmd.Context(), deps, func(m Maintainer) error {
				report, err := m.ReconcileFavoriteCounts(cmd.Context())
				if err != nil {
					return fmt.Errorf("reconciliation failed: %w", err)
				}
				return writeResult(cmd.OutOrStdout(), opts.Format, report,
					fmt.Sprintf("Scanned %d topics, corrected %d", report.TopicsScanned, report.TopicsCorrected))
			})
		},
	}
}
