// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application. "q" only quits outside text fields.
	Quit key.Binding

	// Advance validates the step and moves forward.
	Advance key.Binding

	// Retreat moves back one step.
	Retreat key.Binding

	// Restart clears the inputs and returns to the first step.
	Restart key.Binding

	// Next focuses the next field.
	Next key.Binding

	// Prev focuses the previous field.
	Prev key.Binding

	// Left selects the previous choice of a select field.
	Left key.Binding

	// Right selects the next choice of a select field.
	Right key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Advance: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next"),
		),
		Retreat: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Restart: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "start over"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("↓/tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("↑", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous choice"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next choice"),
		),
	}
}

// ShortHelp returns the hints shown while filling a step.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Retreat, k.Restart, k.Quit}
}

// ResultsHelp returns the hints shown on the results step.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.Retreat, k.Restart, k.Quit}
}

// FullHelp returns the full list of keybindings.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Advance, k.Retreat, k.Restart},
		{k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
