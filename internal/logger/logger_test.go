package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("patch %s", "Office!C18")

	assert.Equal(t, "[DEBUG] patch Office!C18\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Calculate")

	assert.Equal(t, "\n=== Calculate ===\n", buf.String())
}

// TestWarn_AlwaysPrinted tests that warnings do not depend on verbose mode
func TestWarn_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Warn("close session: %s", "gone")

	assert.Equal(t, "[WARN] close session: gone\n", buf.String())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****", Redact("short"))
	assert.Equal(t, "eyJ0****", Redact("eyJ0eXAiOiJKV1Qi"))
}
