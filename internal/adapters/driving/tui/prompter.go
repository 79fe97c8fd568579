package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure Prompter implements the interface.
var _ driven.DeviceCodePrompter = (*Prompter)(nil)

// sender is the part of *tea.Program the prompter needs.
type sender interface {
	Send(msg tea.Msg)
}

// Prompter shows device sign-in prompts inside a running program. The
// token provider calls it from the goroutine of a workbook command.
type Prompter struct {
	mu      sync.Mutex
	program sender
}

// NewPrompter creates a prompter with no program attached.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Attach routes prompts to program.
func (p *Prompter) Attach(program sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// PromptDeviceCode implements driven.DeviceCodePrompter.
func (p *Prompter) PromptDeviceCode(ctx context.Context, prompt domain.DeviceCodePrompt) error {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program == nil {
		return ErrNoProgram
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	program.Send(messages.DeviceCodeShown{Prompt: prompt})
	return nil
}
