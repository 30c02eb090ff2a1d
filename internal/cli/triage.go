package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/service"
)

func (r *runtime) newResolveCommand() *cobra.Command {
	var (
		locale  string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "resolve <text>",
		Short: "Extract symptom keys from a description",
		Example: `  triage resolve "I have fever and a bad headache"
  triage resolve --locale hi "मुझे बुखार है"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			excluded, err := domain.ParseSymptomKeys(exclude)
			if err != nil {
				return err
			}

			a, err := r.loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args, " ")
			keys := a.Service.ResolveExcluding(text, locale, domain.NewSymptomKeySet(excluded...))

			if r.jsonOutput {
				return r.printJSON(map[string]any{
					"keys":      keys.Strings(),
					"mlEnabled": a.Service.MLEnabled(),
				})
			}
			if keys.IsEmpty() {
				fmt.Fprintln(r.stdout, "No known symptoms found.")
				return nil
			}
			for _, key := range keys.Keys() {
				fmt.Fprintln(r.stdout, key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "en", "language of the description (en, hi, ta, te, pa)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "symptom keys to drop from the result")
	return cmd
}

func (r *runtime) newAnalyzeCommand() *cobra.Command {
	var (
		keys   []string
		text   string
		locale string
		noSave bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score symptoms into conditions and an urgency level",
		Long: `analyze scores the given symptom keys. When --text is set, symptoms found in
the text are added to --keys before scoring. The result is saved to history
unless --no-save is given.`,
		Example: `  triage analyze --keys FEVER,COUGH
  triage analyze --text "stomach pain and vomiting since morning"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := domain.ParseSymptomKeys(keys)
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text)
			if len(selected) == 0 && text == "" {
				return service.ErrNothingToAnalyze
			}

			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			selected = a.Service.MergeTextKeys(selected, text, locale)
			result := a.Service.Analyze(selected, text, locale)
			if !noSave && !a.Service.Save(ctx, result) {
				fmt.Fprintln(r.stderr, "warning: result was not saved")
			}

			if r.jsonOutput {
				return r.printJSON(result)
			}
			writeResult(r.stdout, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&keys, "keys", nil, "selected symptom keys, comma separated")
	cmd.Flags().StringVar(&text, "text", "", "free-text description")
	cmd.Flags().StringVar(&locale, "locale", "en", "language of the description and output")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the result in history")
	return cmd
}

func (r *runtime) newLastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the most recently saved analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := r.loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.Service.LastResult(ctx)
			if result == nil {
				return errNoSavedResult
			}
			if r.jsonOutput {
				return r.printJSON(result)
			}
			writeResult(r.stdout, result)
			return nil
		},
	}
}

func (r *runtime) newModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Show the symptom classifier status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			info := a.Service.ModelInfo()
			if r.jsonOutput {
				return r.printJSON(info)
			}

			fmt.Fprintf(r.stdout, "Source:     %s\n", info.Source)
			fmt.Fprintf(r.stdout, "Available:  %t\n", info.Available)
			fmt.Fprintf(r.stdout, "ML enabled: %t\n", a.Service.MLEnabled())
			if info.Available {
				fmt.Fprintf(r.stdout, "Labels:     %s\n", joinKeys(info.Labels))
				fmt.Fprintf(r.stdout, "Vocabulary: %d\n", info.VocabSize)
			}
			if info.Error != "" {
				fmt.Fprintf(r.stdout, "Error:      %s\n", info.Error)
			}
			return nil
		},
	}
}

var errNoSavedResult = errors.New("no saved analysis")

// writeResult prints a result in the order the results screen shows it.
func writeResult(w io.Writer, result *domain.AnalysisResult) {
	fmt.Fprintf(w, "Urgency: %s (%s)\n", result.UrgencyLevel, result.UrgencyTitle)
	if result.UrgencySub != "" {
		fmt.Fprintf(w, "  %s\n", result.UrgencySub)
	}
	fmt.Fprintf(w, "Symptoms: %s\n", joinKeys(result.SelectedKeys))
	if result.Desc != "" {
		fmt.Fprintf(w, "Description: %s\n", result.Desc)
	}

	fmt.Fprintln(w, "\nPossible conditions:")
	for _, c := range result.Conditions {
		fmt.Fprintf(w, "  %3d%%  %s\n", c.ConfidencePct, c.Name)
		if c.Note != "" {
			fmt.Fprintf(w, "        %s\n", c.Note)
		}
	}

	fmt.Fprintln(w, "\nRecommendations:")
	for _, rec := range result.Recommendations {
		if rec != "" {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	fmt.Fprintf(w, "\nSuggested specialty: %s\n", result.SuggestedSpecialityKey)
}

func joinKeys(keys []domain.SymptomKey) string {
	if len(keys) == 0 {
		return "none"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}
