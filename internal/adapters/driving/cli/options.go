package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options [state]",
	Short: "List the states and cities in the workbook",
	Long: `Read the lookup table of states and cities from the workbook.

With a state argument, only that state's cities are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if svc.Estimator == nil {
		return errors.New("estimator service not configured")
	}
	useTextPrompter(svc, cmd.ErrOrStderr())

	options, err := svc.Estimator.LoadOptions(commandContext(cmd))
	if err != nil {
		return err
	}

	if len(args) == 1 {
		state := args[0]
		if !options.Has(state) {
			return fmt.Errorf("unknown state %q", state)
		}
		for _, city := range options.OptionsFor(state) {
			cmd.Println(city)
		}
		return nil
	}

	if options.IsEmpty() {
		cmd.Println("The workbook lists no locations.")
		return nil
	}
	for _, state := range options.Categories {
		cities := options.OptionsFor(state)
		cmd.Printf("%s (%d): %s\n", state, len(cities), strings.Join(cities, ", "))
	}
	return nil
}
