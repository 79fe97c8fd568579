package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui"
)

// errNotInteractive is returned when a command needs a terminal.
var errNotInteractive = errors.New("this command needs an interactive terminal; use 'cswcalc estimate' instead")

// isTerminal reports whether stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive estimate wizard",
	Long: `Walk through location, building, usage and rates, then calculate the
savings in the workbook.

Controls:
  ←/→       - Change a selection
  ↑/↓, Tab  - Move between fields
  Enter     - Next step
  Esc       - Previous step
  Ctrl+R    - Start over
  q, Ctrl+C - Quit`,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in TUI: %v\n%s", r, debug.Stack())
		}
	}()

	if !isTerminal() {
		return errNotInteractive
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	prompter := tui.NewPrompter()
	if svc.SetPrompter != nil {
		svc.SetPrompter(prompter)
	}

	return tui.Run(commandContext(cmd), tui.NewPorts(svc.Wizard), prompter)
}
