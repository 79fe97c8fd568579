// Package list provides the select field used for fixed and workbook-backed
// choices.
package list

import (
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/styles"
)

// ChoiceList is a labelled select field cycled with left and right.
// An index of -1 means nothing is selected yet.
type ChoiceList struct {
	styles   *styles.Styles
	label    string
	choices  []string
	selected int
	focused  bool
}

// NewChoiceList creates a select field with no selection.
func NewChoiceList(s *styles.Styles, label string, choices []string) *ChoiceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ChoiceList{
		styles:   s,
		label:    label,
		choices:  append([]string(nil), choices...),
		selected: -1,
	}
}

// Next selects the following choice, wrapping at the end.
func (c *ChoiceList) Next() {
	if len(c.choices) == 0 {
		return
	}
	c.selected = (c.selected + 1) % len(c.choices)
}

// Prev selects the preceding choice, wrapping at the start.
func (c *ChoiceList) Prev() {
	if len(c.choices) == 0 {
		return
	}
	if c.selected <= 0 {
		c.selected = len(c.choices) - 1
		return
	}
	c.selected--
}

// Select selects value, reporting false and clearing the selection when it
// is not one of the choices.
func (c *ChoiceList) Select(value string) bool {
	for i, choice := range c.choices {
		if choice == value {
			c.selected = i
			return true
		}
	}
	c.selected = -1
	return false
}

// SetChoices replaces the choices and clears the selection.
func (c *ChoiceList) SetChoices(choices []string) {
	c.choices = append([]string(nil), choices...)
	c.selected = -1
}

// Choices returns the available choices.
func (c *ChoiceList) Choices() []string {
	return c.choices
}

// Selected returns the selected value, or "" when nothing is selected.
func (c *ChoiceList) Selected() string {
	if c.selected < 0 || c.selected >= len(c.choices) {
		return ""
	}
	return c.choices[c.selected]
}

// Focus marks the field as focused.
func (c *ChoiceList) Focus() {
	c.focused = true
}

// Blur removes focus.
func (c *ChoiceList) Blur() {
	c.focused = false
}

// Focused reports whether the field has focus.
func (c *ChoiceList) Focused() bool {
	return c.focused
}

// Label returns the field label.
func (c *ChoiceList) Label() string {
	return c.label
}

// View renders the label and the current choice.
func (c *ChoiceList) View() string {
	label := c.styles.Label.Render(c.label)
	if c.focused {
		label = c.styles.FocusedLabel.Render(c.label)
	}

	value := c.styles.Muted.Render("(select)")
	if len(c.choices) == 0 {
		value = c.styles.Muted.Render("(no options)")
	} else if v := c.Selected(); v != "" {
		value = c.styles.Choice.Render(v)
	}

	if c.focused {
		return label + "‹ " + value + " ›"
	}
	return label + "  " + value
}
