// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/styles"
)

// State represents what the wizard is doing, for display.
type State string

const (
	StateReady       State = "ready"
	StateLoading     State = "loading"
	StateCalculating State = "calculating"
	StateSigningIn   State = "signing_in"
	StateWarning     State = "warning"
	StateError       State = "error"
	StateResults     State = "results"
)

// Bar displays the step position, the wizard state and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	step    int
	steps   int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages. The bar is passive and updated via
// its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	position := ""
	if s.steps > 0 {
		position = s.styles.Normal.Render(fmt.Sprintf("Step %d/%d", s.step+1, s.steps)) + "  "
	}

	switch s.state {
	case StateLoading:
		return position + s.styles.Muted.Render("Loading workbook...")
	case StateCalculating:
		return position + s.styles.Muted.Render("Calculating...")
	case StateSigningIn:
		return position + s.styles.Warning.Render("Waiting for sign-in...")
	case StateWarning:
		return position + s.styles.Warning.Render(s.messageOr("Check the highlighted fields"))
	case StateError:
		return position + s.styles.Error.Render("Error: "+s.messageOr("unknown"))
	case StateResults:
		return position + s.styles.Success.Render("Estimate complete")
	case StateReady:
	}
	return position + s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) messageOr(fallback string) string {
	if s.message == "" {
		return fallback
	}
	return s.message
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the warning or error text.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetStep sets the zero-based step position and the step count.
func (s *Bar) SetStep(index, total int) {
	s.step = index
	s.steps = total
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the state and message.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
