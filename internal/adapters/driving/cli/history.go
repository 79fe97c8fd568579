package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [estimate-id]",
	Short: "Show past estimates",
	Long: `List recent estimates, newest first, or show one estimate in full.

Estimates are stored in the history backend selected by history.dsn
(the local database by default).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

// Flags for history.
var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of estimates to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.History == nil {
		return errors.New("history service not configured")
	}
	ctx := commandContext(cmd)

	if len(args) == 1 {
		estimate, err := svc.History.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("getting estimate: %w", err)
		}
		if historyJSON {
			return printJSON(cmd, estimate)
		}
		printEstimate(cmd, estimate)
		return nil
	}

	estimates, err := svc.History.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing estimates: %w", err)
	}
	if historyJSON {
		return printJSON(cmd, estimates)
	}
	if len(estimates) == 0 {
		cmd.Println("No estimates yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tLOCATION\tTOTAL SAVINGS")
	for i := range estimates {
		e := &estimates[i]
		total := "-"
		if r, ok := e.Result("total_savings"); ok && !r.Value.IsEmpty() {
			total = r.Value.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s, %s\t%s\n",
			e.ID, e.CreatedAt.Local().Format(time.DateTime),
			e.Inputs.Location.City, e.Inputs.Location.State, total)
	}
	return w.Flush()
}

// printEstimate writes an estimate as aligned label/value lines.
func printEstimate(cmd *cobra.Command, e *domain.Estimate) {
	cmd.Printf("Estimate %s\n", e.ID)
	if !e.CreatedAt.IsZero() {
		cmd.Printf("Created  %s\n", e.CreatedAt.Local().Format(time.DateTime))
	}
	cmd.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "[Inputs]")
	for _, field := range domain.AllInputFields() {
		v, _ := e.Inputs.Value(field)
		fmt.Fprintf(w, "  %s\t%s\n", field.Label(), domain.FormatScalar(v))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[Results]")
	for _, r := range e.Results {
		value := r.Value.String()
		if r.Value.IsEmpty() {
			value = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\n", r.Label, value)
	}
	w.Flush() //nolint:errcheck
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
