package driven

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// DeviceCodePrompter surfaces a device grant prompt to the user. The token
// provider calls it once per interactive grant, before it blocks.
type DeviceCodePrompter interface {
	PromptDeviceCode(ctx context.Context, prompt domain.DeviceCodePrompt) error
}
