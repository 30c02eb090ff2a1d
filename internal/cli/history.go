package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/symptom-triage-engine/internal/history"
)

func (r *runtime) newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative: %d", limit)
			}

			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.Service.History(ctx, limit)
			if r.jsonOutput {
				return r.printJSON(map[string]any{"count": len(results), "results": results})
			}
			if len(results) == 0 {
				fmt.Fprintln(r.stdout, "No saved analyses.")
				return nil
			}

			tw := tabwriter.NewWriter(r.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSAVED\tURGENCY\tSYMPTOMS\tPRIMARY CONDITION")
			for i, result := range results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					i+1,
					result.CreatedTime().Local().Format("2006-01-02 15:04"),
					result.UrgencyLevel,
					joinKeys(result.SelectedKeys),
					result.PrimaryCondition().Name,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 uses the configured history limit)")

	cmd.AddCommand(
		r.newHistoryExportCommand(),
		r.newHistoryImportCommand(),
		r.newHistoryClearCommand(),
	)
	return cmd
}

func (r *runtime) newHistoryExportCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write history as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = a.Config.Storage.HistoryLimit
			}

			if len(args) == 0 || args[0] == "-" {
				return history.ExportJSON(ctx, a.Store, limit, r.stdout)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := history.ExportJSON(ctx, a.Store, limit, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Fprintf(r.stderr, "Exported history to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 exports everything kept)")
	return cmd
}

func (r *runtime) newHistoryImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load results from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			in := r.stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				in = f
			}

			imported, skipped, err := history.ImportJSON(ctx, a.Store, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stdout, "Imported %d results (%d skipped)\n", imported, skipped)
			return nil
		},
	}
}

func (r *runtime) newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved result and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(r.stdout, "History cleared.")
			return nil
		},
	}
}
