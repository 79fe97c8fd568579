package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driving"
)

func TestLoginCmd(t *testing.T) {
	rec := &recordingPrompter{}
	auth := &MockAuth{Credential: &domain.Credential{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}}
	withServices(t, &Services{Auth: auth, SetPrompter: rec.set})

	stdout, _, err := executeCommand(t, "login")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in.")
	assert.Contains(t, stdout, "Token valid until")
	assert.IsType(t, &textPrompter{}, rec.installed)
}

func TestLoginCmd_Error(t *testing.T) {
	auth := &MockAuth{Err: &domain.AuthenticationError{Description: "AADSTS70000: expired"}}
	withServices(t, &Services{Auth: auth})

	_, _, err := executeCommand(t, "login")

	assert.EqualError(t, err, "auth error: AADSTS70000: expired")
}

func TestLogoutCmd(t *testing.T) {
	auth := &MockAuth{}
	withServices(t, &Services{Auth: auth})

	stdout, _, err := executeCommand(t, "logout")

	require.NoError(t, err)
	assert.True(t, auth.LoggedOut)
	assert.Equal(t, "Signed out.\n", stdout)
}

func TestLoginStatusCmd_NotSignedIn(t *testing.T) {
	withServices(t, &Services{Auth: &MockAuth{}})

	stdout, _, err := executeCommand(t, "login", "status")

	require.NoError(t, err)
	assert.Equal(t, "Not signed in.\n", stdout)
}

func TestLoginStatusCmd_SignedIn(t *testing.T) {
	auth := &MockAuth{StatusVal: driving.AuthStatus{
		SignedIn: true,
		Account:  &domain.Account{Username: "ana@example.com"},
		Credential: &domain.Credential{
			AccessToken:  "tok",
			RefreshToken: "ref",
			Expiry:       time.Now().Add(-time.Minute),
		},
	}}
	withServices(t, &Services{Auth: auth})

	stdout, _, err := executeCommand(t, "login", "status")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in as ana@example.com")
	assert.Contains(t, stdout, "Token expired")
	assert.Contains(t, stdout, "Refresh: enabled")
}

func TestLoginCmd_NoService(t *testing.T) {
	withServices(t, &Services{})

	_, _, err := executeCommand(t, "login")

	assert.EqualError(t, err, "auth service not configured")
}
