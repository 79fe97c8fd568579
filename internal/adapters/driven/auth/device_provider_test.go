package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/cswcalc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

type fakeGrant struct {
	mu           sync.Mutex
	deviceAuths  int
	refreshes    int
	token        *oauth2.Token
	deviceErr    error
	refreshErr   error
	pollBlock    chan struct{}
	refreshToken *oauth2.Token
}

func (g *fakeGrant) DeviceAuth(context.Context) (*oauth2.DeviceAuthResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deviceAuths++
	return &oauth2.DeviceAuthResponse{
		DeviceCode:      "dev",
		UserCode:        "ABCD-EFGH",
		VerificationURI: "https://microsoft.com/devicelogin",
		Expiry:          time.Now().Add(15 * time.Minute),
	}, nil
}

func (g *fakeGrant) DeviceAccessToken(ctx context.Context, _ *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	if g.pollBlock != nil {
		select {
		case <-g.pollBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.deviceErr != nil {
		return nil, g.deviceErr
	}
	return g.token, nil
}

func (g *fakeGrant) Refresh(context.Context, string) (*oauth2.Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshes++
	if g.refreshErr != nil {
		return nil, g.refreshErr
	}
	return g.refreshToken, nil
}

type recordingPrompter struct {
	mu      sync.Mutex
	prompts []domain.DeviceCodePrompt
}

func (p *recordingPrompter) PromptDeviceCode(_ context.Context, prompt domain.DeviceCodePrompt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	return nil
}

func (p *recordingPrompter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func freshToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-1",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func newProvider(grant Grant, cache *memory.CredentialCache, prompter *recordingPrompter, persist bool) *DeviceCodeProvider {
	return NewDeviceCodeProvider(ProviderConfig{
		Grant:          grant,
		Cache:          cache,
		Prompter:       prompter,
		TenantID:       "tenant",
		Scopes:         []string{"User.Read"},
		PersistRefresh: persist,
	})
}

func TestAcquire_DeviceGrantThenCached(t *testing.T) {
	ctx := context.Background()
	grant := &fakeGrant{token: freshToken()}
	cache := memory.NewCredentialCache()
	prompter := &recordingPrompter{}
	p := newProvider(grant, cache, prompter, false)

	cred, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Empty(t, cred.RefreshToken, "refresh material is not kept without persistence")
	require.Equal(t, 1, prompter.count())
	assert.Equal(t, "ABCD-EFGH", prompter.prompts[0].UserCode)
	assert.Equal(t, 1, cache.Saves())

	_, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.count())
}

// TestAcquire_IdempotentAcrossProcesses tests that a new provider over the
// same cache does not prompt again while the token is valid
func TestAcquire_IdempotentAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	prompter := &recordingPrompter{}

	_, err := newProvider(&fakeGrant{token: freshToken()}, cache, prompter, false).Acquire(ctx)
	require.NoError(t, err)

	second := newProvider(&fakeGrant{token: freshToken()}, cache, prompter, false)
	for i := 0; i < 2; i++ {
		tok, err := second.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-1", tok)
	}
	assert.Equal(t, 1, prompter.count())
}

func TestAcquire_RefreshesSilently(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	expired, err := (&domain.TokenCache{
		Account:    &domain.Account{Username: "ana@example.com"},
		Credential: &domain.Credential{AccessToken: "old", RefreshToken: "refresh-0", Expiry: time.Now().Add(-time.Minute)},
	}).Serialize()
	require.NoError(t, err)
	require.NoError(t, cache.Save(ctx, expired))

	grant := &fakeGrant{refreshToken: &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}}
	prompter := &recordingPrompter{}
	p := newProvider(grant, cache, prompter, true)

	cred, err := p.Acquire(ctx)

	require.NoError(t, err)
	assert.Equal(t, "new", cred.AccessToken)
	assert.Equal(t, "refresh-0", cred.RefreshToken, "old refresh token kept when none is returned")
	assert.Equal(t, 1, grant.refreshes)
	assert.Equal(t, 0, prompter.count())

	data, _ := cache.Load(ctx)
	stored, ok := domain.DeserializeTokenCache(data)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", stored.Account.Username)
	assert.Equal(t, "new", stored.Credential.AccessToken)
}

func TestAcquire_NoRefreshWithoutPersistence(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	expired, _ := (&domain.TokenCache{
		Account:    &domain.Account{},
		Credential: &domain.Credential{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)},
	}).Serialize()
	require.NoError(t, cache.Save(ctx, expired))
	grant := &fakeGrant{token: freshToken()}
	prompter := &recordingPrompter{}

	_, err := newProvider(grant, cache, prompter, false).Acquire(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, grant.refreshes)
	assert.Equal(t, 1, prompter.count())
}

func TestAcquire_RefreshFailureFallsBackToDeviceGrant(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	expired, _ := (&domain.TokenCache{
		Account:    &domain.Account{},
		Credential: &domain.Credential{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)},
	}).Serialize()
	require.NoError(t, cache.Save(ctx, expired))
	grant := &fakeGrant{token: freshToken(), refreshErr: errors.New("invalid_grant")}
	prompter := &recordingPrompter{}

	cred, err := newProvider(grant, cache, prompter, true).Acquire(ctx)

	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, 1, grant.refreshes)
	assert.Equal(t, 1, grant.deviceAuths)
}

func TestAcquire_CorruptCacheStartsEmpty(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	require.NoError(t, cache.Save(ctx, []byte("{garbage")))
	prompter := &recordingPrompter{}

	cred, err := newProvider(&fakeGrant{token: freshToken()}, cache, prompter, false).Acquire(ctx)

	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
}

func TestAcquire_DeviceGrantFailure(t *testing.T) {
	grant := &fakeGrant{deviceErr: &oauth2.RetrieveError{
		ErrorCode:        "authorization_declined",
		ErrorDescription: "The user declined the request.",
	}}

	_, err := newProvider(grant, memory.NewCredentialCache(), &recordingPrompter{}, false).Acquire(context.Background())

	var authErr *domain.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "The user declined the request.", authErr.Description)
}

func TestAcquire_NoPrompterRequiresAuth(t *testing.T) {
	p := NewDeviceCodeProvider(ProviderConfig{Grant: &fakeGrant{}, Cache: memory.NewCredentialCache()})

	_, err := p.Acquire(context.Background())

	assert.True(t, errors.Is(err, domain.ErrAuthRequired))
}

// TestAcquire_SecondInteractiveCallRejected tests that a device grant cannot
// be retriggered while one is waiting for the user
func TestAcquire_SecondInteractiveCallRejected(t *testing.T) {
	ctx := context.Background()
	grant := &fakeGrant{token: freshToken(), pollBlock: make(chan struct{})}
	prompter := &recordingPrompter{}
	p := newProvider(grant, memory.NewCredentialCache(), prompter, false)

	done := make(chan error, 1)
	go func() {
		_, err := p.Acquire(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return prompter.count() == 1 }, time.Second, 5*time.Millisecond)

	_, err := p.Acquire(ctx)
	assert.True(t, errors.Is(err, domain.ErrAuthInProgress))

	close(grant.pollBlock)
	require.NoError(t, <-done)
	assert.Equal(t, 1, grant.deviceAuths)
}

func TestInvalidate_RereadsCache(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCredentialCache()
	prompter := &recordingPrompter{}
	p := newProvider(&fakeGrant{token: freshToken()}, cache, prompter, false)
	_, err := p.Acquire(ctx)
	require.NoError(t, err)

	p.Invalidate()
	require.NoError(t, cache.Clear(ctx))
	_, err = p.Acquire(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, prompter.count())
}

func TestNullTokenProvider(t *testing.T) {
	tok, err := NewNullTokenProvider().GetToken(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tok)
}
