// Package wizard provides the step-by-step estimate view for the TUI.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

// field is one editable input on the current step. Exactly one of choice
// and text is set.
type field struct {
	id     domain.InputField
	choice *list.ChoiceList
	text   *input.TextInput
}

func (f *field) focus() tea.Cmd {
	if f.choice != nil {
		f.choice.Focus()
		return nil
	}
	return f.text.Focus()
}

func (f *field) blur() {
	if f.choice != nil {
		f.choice.Blur()
		return
	}
	f.text.Blur()
}

func (f *field) value() string {
	if f.choice != nil {
		return f.choice.Selected()
	}
	return f.text.Value()
}

func (f *field) view() string {
	if f.choice != nil {
		return f.choice.View()
	}
	return f.text.View()
}

// View drives a WizardService one step at a time.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	wizard driving.WizardService
	ctx    context.Context

	fields []*field
	focus  int

	options       domain.OptionsIndex
	optionsLoaded bool

	// busy is set while a workbook call is in flight; advance keys are
	// ignored until its message arrives.
	busy        bool
	calculating bool

	warning domain.ValidationResult
	err     error

	width  int
	height int
}

// NewView creates a wizard view over the given service.
func NewView(s *styles.Styles, km *keymap.KeyMap, wizard driving.WizardService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles: s,
		keymap: km,
		wizard: wizard,
		ctx:    context.Background(),
		width:  80,
	}
	v.buildFields()
	return v
}

// WithContext sets the context used for workbook calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Init focuses the first field and loads the lookup table when the
// current step needs it.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.focusCurrent()}
	if v.needsOptions() && !v.optionsLoaded {
		cmds = append(cmds, v.loadOptions())
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.OptionsLoaded:
		v.busy = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.options = msg.Options
		v.optionsLoaded = true
		v.buildFields()
		return v, v.focusCurrent()

	case messages.StepAdvanced:
		v.busy = false
		v.calculating = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		if !msg.Result.OK() {
			v.warning = msg.Result
			return v, nil
		}
		v.warning = domain.ValidationResult{}
		v.buildFields()
		return v, v.Init()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Advance):
		return v, v.advance()

	case keymap.Matches(keyStr, v.keymap.Retreat):
		if v.busy {
			return v, nil
		}
		v.commit()
		v.wizard.Retreat()
		v.reset()
		return v, v.Init()

	case keymap.Matches(keyStr, v.keymap.Restart):
		if v.busy {
			return v, nil
		}
		v.wizard.Restart()
		v.reset()
		return v, v.Init()

	case keymap.Matches(keyStr, v.keymap.Next):
		return v, v.moveFocus(1)

	case keymap.Matches(keyStr, v.keymap.Prev):
		return v, v.moveFocus(-1)

	case keymap.Matches(keyStr, v.keymap.Left), keymap.Matches(keyStr, v.keymap.Right):
		f := v.focused()
		if f == nil || f.choice == nil {
			break
		}
		if keymap.Matches(keyStr, v.keymap.Left) {
			f.choice.Prev()
		} else {
			f.choice.Next()
		}
		if f.id == domain.FieldState {
			v.stateChanged(f.choice.Selected())
		}
		return v, nil
	}

	if f := v.focused(); f != nil && f.text != nil {
		var cmd tea.Cmd
		f.text, cmd = f.text.Update(msg)
		return v, cmd
	}
	return v, nil
}

// advance commits the fields and asks the service to move on. Parse
// failures are shown like validation failures and never reach the service.
func (v *View) advance() tea.Cmd {
	if v.busy || v.wizard.IsTerminal() {
		return nil
	}

	if r := v.commit(); !r.OK() {
		v.warning = r
		return nil
	}

	v.busy = true
	v.calculating = v.wizard.Index() == len(v.wizard.Steps())-2
	v.err = nil
	ctx := v.ctx
	w := v.wizard
	return func() tea.Msg {
		result, err := w.Advance(ctx)
		return messages.StepAdvanced{Result: result, Err: err}
	}
}

func (v *View) loadOptions() tea.Cmd {
	v.busy = true
	ctx := v.ctx
	w := v.wizard
	return func() tea.Msg {
		options, err := w.Options(ctx)
		return messages.OptionsLoaded{Options: options, Err: err}
	}
}

// commit copies every field of the step into the inputs.
func (v *View) commit() domain.ValidationResult {
	var r domain.ValidationResult
	r.Step = v.wizard.Current().ID
	for _, f := range v.fields {
		if err := v.wizard.SetValue(f.id, f.value()); err != nil {
			r.Add(f.id, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
		}
	}
	return r
}

func (v *View) stateChanged(state string) {
	if v.wizard.Inputs().Location.State == state {
		return
	}
	v.wizard.SetValue(domain.FieldState, state) //nolint:errcheck
	v.wizard.SetValue(domain.FieldCity, "")     //nolint:errcheck
	for _, f := range v.fields {
		if f.id == domain.FieldCity {
			f.choice.SetChoices(v.options.OptionsFor(state))
		}
	}
}

// reset rebuilds the fields and clears the step's messages.
func (v *View) reset() {
	v.warning = domain.ValidationResult{}
	v.err = nil
	v.buildFields()
}

// buildFields creates the inputs for the current step, seeded from the
// collected values.
func (v *View) buildFields() {
	if v.wizard == nil {
		return
	}
	step := v.wizard.Current()
	inputs := v.wizard.Inputs()

	v.fields = v.fields[:0]
	v.focus = 0
	for _, id := range step.Fields {
		f := &field{id: id}
		current, _ := inputs.Value(id)

		switch {
		case id == domain.FieldState:
			f.choice = list.NewChoiceList(v.styles, id.Label(), v.options.Categories)
			f.choice.Select(inputs.Location.State)
		case id == domain.FieldCity:
			f.choice = list.NewChoiceList(v.styles, id.Label(), v.options.OptionsFor(inputs.Location.State))
			f.choice.Select(inputs.Location.City)
		case domain.ChoicesFor(id) != nil:
			f.choice = list.NewChoiceList(v.styles, id.Label(), domain.ChoicesFor(id))
			if s, ok := current.(string); ok {
				f.choice.Select(s)
			}
		default:
			f.text = input.NewTextInput(v.styles, id.Label(), "0")
			if text := domain.FormatScalar(current); text != "0" {
				f.text.SetValue(text)
			}
		}
		v.fields = append(v.fields, f)
	}
}

func (v *View) focused() *field {
	if v.focus < 0 || v.focus >= len(v.fields) {
		return nil
	}
	return v.fields[v.focus]
}

func (v *View) focusCurrent() tea.Cmd {
	for i, f := range v.fields {
		if i != v.focus {
			f.blur()
		}
	}
	if f := v.focused(); f != nil {
		return f.focus()
	}
	return nil
}

func (v *View) moveFocus(delta int) tea.Cmd {
	if len(v.fields) == 0 {
		return nil
	}
	v.focus = (v.focus + delta + len(v.fields)) % len(v.fields)
	return v.focusCurrent()
}

func (v *View) needsOptions() bool {
	if v.wizard == nil {
		return false
	}
	for _, id := range v.wizard.Current().Fields {
		if id == domain.FieldState || id == domain.FieldCity {
			return true
		}
	}
	return false
}

// AcceptsText reports whether the focused field takes typed characters.
func (v *View) AcceptsText() bool {
	f := v.focused()
	return f != nil && f.text != nil
}

// Busy reports whether a workbook call is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Calculating reports whether the in-flight call is the final calculation.
func (v *View) Calculating() bool {
	return v.calculating
}

// Warning returns the violations of the last rejected advance.
func (v *View) Warning() domain.ValidationResult {
	return v.warning
}

// Err returns the last workbook or sign-in failure.
func (v *View) Err() error {
	return v.err
}

// View renders the current step.
func (v *View) View() string {
	if v.wizard == nil {
		return v.styles.Error.Render("No wizard service configured")
	}

	var b strings.Builder
	step := v.wizard.Current()
	b.WriteString(v.styles.Title.Render("CSW Savings Estimator"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(step.Title))
	b.WriteString("\n\n")

	if v.wizard.IsTerminal() {
		b.WriteString(v.renderResults())
	} else {
		for _, f := range v.fields {
			b.WriteString(f.view())
			if v.violated(f.id) {
				b.WriteString(" " + v.styles.Warning.Render("!"))
			}
			b.WriteString("\n")
		}
	}

	if !v.warning.OK() {
		b.WriteString("\n")
		for _, violation := range v.warning.Violations {
			b.WriteString(v.styles.Warning.Render("• " + violation.Message))
			b.WriteString("\n")
		}
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(describe(v.err)))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderResults() string {
	estimate := v.wizard.Result()
	if estimate == nil {
		return v.styles.Muted.Render("No results yet.") + "\n"
	}

	var b strings.Builder
	for _, r := range estimate.Results {
		value := r.Value.String()
		if r.Value.IsEmpty() {
			value = "-"
		}
		b.WriteString(v.styles.Label.Render(r.Label))
		b.WriteString(v.styles.Value.Render(value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s, %s", estimate.Inputs.Location.City, estimate.Inputs.Location.State)))
	b.WriteString("\n")
	return b.String()
}

func (v *View) violated(id domain.InputField) bool {
	for _, f := range v.warning.Fields() {
		if f == id {
			return true
		}
	}
	return false
}

// describe turns a failure into the line shown under the step.
func describe(err error) string {
	var cfgErr *domain.ConfigurationError
	var authErr *domain.AuthenticationError
	var cellErr *domain.CellAccessError
	switch {
	case errors.As(err, &cfgErr):
		return "Configuration: " + cfgErr.Error()
	case errors.As(err, &authErr):
		return "Sign-in failed: " + authErr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "Workbook not found: " + err.Error()
	case errors.As(err, &cellErr):
		if cellErr.Transient() {
			return "Workbook busy, try again: " + cellErr.Error()
		}
		return "Workbook error: " + cellErr.Error()
	default:
		return "Error: " + err.Error()
	}
}
