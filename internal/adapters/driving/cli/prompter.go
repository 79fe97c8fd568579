package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure textPrompter implements the interface.
var _ driven.DeviceCodePrompter = (*textPrompter)(nil)

// textPrompter prints device sign-in instructions. It writes to stderr so
// that JSON and MCP output on stdout stay clean.
type textPrompter struct {
	w io.Writer
}

func (p *textPrompter) PromptDeviceCode(_ context.Context, prompt domain.DeviceCodePrompt) error {
	fmt.Fprintln(p.w, prompt.Message())
	if !prompt.ExpiresAt.IsZero() {
		fmt.Fprintf(p.w, "The code expires at %s.\n", prompt.ExpiresAt.Local().Format(time.Kitchen))
	}
	fmt.Fprintln(p.w, "Waiting for sign-in...")
	return nil
}

// useTextPrompter routes sign-in prompts to the command's stderr.
func useTextPrompter(s *Services, w io.Writer) {
	if s.SetPrompter != nil {
		s.SetPrompter(&textPrompter{w: w})
	}
}
