package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cswcalc/internal/adapters/driving/tui/views/wizard"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	wizardView *wizard.View
	statusBar  *status.Bar

	// prompt is the pending device sign-in, shown until the blocked
	// workbook call reports back.
	prompt *domain.DeviceCodePrompt

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		wizardView: wizard.NewView(s, km, ports.Wizard),
		statusBar:  status.NewBar(s, km),
	}
	a.syncStatus()
	return a, nil
}

// WithContext sets the context for workbook calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.wizardView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmd := a.wizardView.Init()
	a.syncStatus()
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("cswcalc - CSW Savings Estimator"),
		cmd,
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.wizardView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keyStr == "ctrl+c" {
			return a, tea.Quit
		}
		// "q" is a character in text fields.
		if keymap.Matches(keyStr, a.keymap.Quit) && !a.wizardView.AcceptsText() {
			return a, tea.Quit
		}
		a.wizardView, cmd = a.wizardView.Update(msg)

	case messages.DeviceCodeShown:
		prompt := msg.Prompt
		a.prompt = &prompt

	case messages.OptionsLoaded, messages.StepAdvanced:
		a.prompt = nil
		a.wizardView, cmd = a.wizardView.Update(msg)

	case messages.ErrorOccurred:
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	default:
		a.wizardView, cmd = a.wizardView.Update(msg)
	}

	a.syncStatus()
	return a, cmd
}

// syncStatus derives the status bar from the wizard view.
func (a *App) syncStatus() {
	w := a.ports.Wizard
	a.statusBar.SetStep(w.Index(), len(w.Steps()))
	a.statusBar.SetMessage("")

	v := a.wizardView
	switch {
	case v.Busy() && a.prompt != nil:
		a.statusBar.SetState(status.StateSigningIn)
	case v.Busy() && v.Calculating():
		a.statusBar.SetState(status.StateCalculating)
	case v.Busy():
		a.statusBar.SetState(status.StateLoading)
	case v.Err() != nil:
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(v.Err().Error())
	case !v.Warning().OK():
		a.statusBar.SetState(status.StateWarning)
	case w.IsTerminal():
		a.statusBar.SetState(status.StateResults)
	default:
		a.statusBar.SetState(status.StateReady)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.wizardView.View())
	if a.prompt != nil {
		b.WriteString("\n")
		b.WriteString(a.renderPrompt())
		b.WriteString("\n")
	}

	body := b.String()
	bar := a.statusBar.View()
	if gap := a.height - strings.Count(body, "\n") - 2; gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + bar
}

func (a *App) renderPrompt() string {
	lines := []string{
		a.styles.Subtitle.Render("Sign in to Microsoft"),
		"",
		"Open " + a.styles.Choice.Render(a.prompt.VerificationURI),
		"and enter the code " + a.styles.Value.Render(a.prompt.UserCode),
	}
	if !a.prompt.ExpiresAt.IsZero() {
		remaining := time.Until(a.prompt.ExpiresAt).Round(time.Minute)
		if remaining > 0 {
			lines = append(lines, a.styles.Muted.Render(fmt.Sprintf("The code expires in %s.", remaining)))
		}
	}
	return a.styles.Prompt.Render(strings.Join(lines, "\n"))
}

// Prompt returns the pending device sign-in, nil when none.
func (a *App) Prompt() *domain.DeviceCodePrompt {
	return a.prompt
}

// StatusState returns the state shown in the status bar.
func (a *App) StatusState() status.State {
	return a.statusBar.State()
}

// Run starts a full-screen program for the app and routes device sign-in
// prompts into it.
func Run(ctx context.Context, ports *Ports, prompter *Prompter) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if prompter != nil {
		prompter.Attach(program)
		defer prompter.Attach(nil)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
