// Package input provides the free-text field used for numeric inputs.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/styles"
)

// TextInput is a labelled single-line text field.
type TextInput struct {
	styles *styles.Styles
	label  string
	model  textinput.Model
}

// NewTextInput creates a text field with a label and placeholder.
func NewTextInput(s *styles.Styles, label, placeholder string) *TextInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Width = 20

	return &TextInput{
		styles: s,
		label:  label,
		model:  ti,
	}
}

// Update forwards a message to the underlying field.
func (t *TextInput) Update(msg tea.Msg) (*TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

// View renders the label and the field.
func (t *TextInput) View() string {
	label := t.styles.Label.Render(t.label)
	if t.model.Focused() {
		label = t.styles.FocusedLabel.Render(t.label)
	}
	return label + t.styles.InputField.Render(t.model.View())
}

// Focus focuses the field.
func (t *TextInput) Focus() tea.Cmd {
	return t.model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.model.Blur()
}

// Focused reports whether the field has focus.
func (t *TextInput) Focused() bool {
	return t.model.Focused()
}

// Value returns the current text.
func (t *TextInput) Value() string {
	return t.model.Value()
}

// SetValue replaces the text.
func (t *TextInput) SetValue(v string) {
	t.model.SetValue(v)
}

// Label returns the field label.
func (t *TextInput) Label() string {
	return t.label
}
