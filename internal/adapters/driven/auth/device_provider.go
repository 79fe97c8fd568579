package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Ensure DeviceCodeProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*DeviceCodeProvider)(nil)

// defaultRefreshBuffer is how long before expiry a token stops being reused.
const defaultRefreshBuffer = 5 * time.Minute

// DeviceCodeProvider acquires tokens silently from the credential cache
// and falls back to the device authorization grant. It is safe to call on
// every request: a valid cached token never reaches the network.
type DeviceCodeProvider struct {
	grant          Grant
	cache          driven.CredentialCache
	prompter       driven.DeviceCodePrompter
	tenantID       string
	scopes         []string
	persistRefresh bool
	refreshBuffer  time.Duration

	mu       sync.RWMutex
	current  *domain.Credential
	inFlight atomic.Bool
}

// ProviderConfig configures a DeviceCodeProvider.
type ProviderConfig struct {
	Grant    Grant
	Cache    driven.CredentialCache
	Prompter driven.DeviceCodePrompter
	TenantID string
	Scopes   []string
	// PersistRefresh keeps refresh tokens in the cache and enables the
	// silent refresh path.
	PersistRefresh bool
}

// NewDeviceCodeProvider creates a token provider.
func NewDeviceCodeProvider(cfg ProviderConfig) *DeviceCodeProvider {
	return &DeviceCodeProvider{
		grant:          cfg.Grant,
		cache:          cfg.Cache,
		prompter:       cfg.Prompter,
		tenantID:       cfg.TenantID,
		scopes:         cfg.Scopes,
		persistRefresh: cfg.PersistRefresh,
		refreshBuffer:  defaultRefreshBuffer,
	}
}

// NewProviderFromConfig wires the Microsoft identity platform grant for cfg.
func NewProviderFromConfig(
	cfg *domain.Config, cache driven.CredentialCache, prompter driven.DeviceCodePrompter,
) *DeviceCodeProvider {
	scopes := cfg.EffectiveScopes()
	return NewDeviceCodeProvider(ProviderConfig{
		Grant:          NewOAuthGrant(cfg.AuthorityHost, cfg.TenantID, cfg.ClientID, scopes),
		Cache:          cache,
		Prompter:       prompter,
		TenantID:       cfg.TenantID,
		Scopes:         scopes,
		PersistRefresh: cfg.PersistRefresh,
	})
}

// SetPrompter replaces the prompter. The TUI installs its own once the
// program is running.
func (p *DeviceCodeProvider) SetPrompter(prompter driven.DeviceCodePrompter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompter = prompter
}

// GetToken returns a valid access token.
func (p *DeviceCodeProvider) GetToken(ctx context.Context) (string, error) {
	cred, err := p.Acquire(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Invalidate drops the in-process credential, e.g. after a 401. The
// persisted cache is left for the refresh path.
func (p *DeviceCodeProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}

// Acquire returns a credential: cached, refreshed, or from a device grant,
// in that order.
func (p *DeviceCodeProvider) Acquire(ctx context.Context) (*domain.Credential, error) {
	// Fast path: check in-process credential with read lock
	p.mu.RLock()
	if p.current.ValidFor(p.refreshBuffer) {
		cred := p.current
		p.mu.RUnlock()
		return cred, nil
	}
	p.mu.RUnlock()

	cache := p.loadCache(ctx)
	if cache.HasAccount() {
		if cache.Credential.ValidFor(p.refreshBuffer) {
			logger.Debug("token: using cached credential for %s", displayName(cache.Account))
			p.remember(cache.Credential)
			return cache.Credential, nil
		}
		if cred, ok := p.refresh(ctx, cache); ok {
			return cred, nil
		}
	}

	return p.interactive(ctx)
}

func (p *DeviceCodeProvider) refresh(ctx context.Context, cache *domain.TokenCache) (*domain.Credential, bool) {
	if !p.persistRefresh || cache.Credential.RefreshToken == "" {
		return nil, false
	}
	tok, err := p.grant.Refresh(ctx, cache.Credential.RefreshToken)
	if err != nil {
		logger.Debug("token: silent refresh failed: %v", err)
		return nil, false
	}
	logger.Debug("token: refreshed silently")

	cred := credentialFrom(tok, true)
	if cred.RefreshToken == "" {
		cred.RefreshToken = cache.Credential.RefreshToken
	}
	p.store(ctx, cache.Account, cred)
	return cred, true
}

func (p *DeviceCodeProvider) interactive(ctx context.Context) (*domain.Credential, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrAuthInProgress
	}
	defer p.inFlight.Store(false)

	p.mu.RLock()
	prompter := p.prompter
	p.mu.RUnlock()
	if prompter == nil {
		return nil, &domain.AuthenticationError{Err: domain.ErrAuthRequired}
	}

	logger.Debug("token: starting device code grant")
	da, err := p.grant.DeviceAuth(ctx)
	if err != nil {
		return nil, authError(err)
	}

	prompt := domain.DeviceCodePrompt{
		VerificationURI: da.VerificationURI,
		UserCode:        da.UserCode,
		ExpiresAt:       da.Expiry,
	}
	if err := prompter.PromptDeviceCode(ctx, prompt); err != nil {
		return nil, &domain.AuthenticationError{Err: fmt.Errorf("show device code: %w", err)}
	}

	tok, err := p.grant.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, authError(err)
	}
	logger.Debug("token: device code grant completed")

	cred := credentialFrom(tok, p.persistRefresh)
	p.store(ctx, accountFrom(tok, p.tenantID), cred)
	return cred, nil
}

func (p *DeviceCodeProvider) loadCache(ctx context.Context) *domain.TokenCache {
	if p.cache == nil {
		return &domain.TokenCache{}
	}
	data, err := p.cache.Load(ctx)
	if err != nil {
		logger.Warn("read credential cache: %v", err)
		return &domain.TokenCache{}
	}
	cache, ok := domain.DeserializeTokenCache(data)
	if !ok && len(data) > 0 {
		logger.Debug("token: credential cache unreadable, starting empty")
	}
	return cache
}

// store persists the credential. A cache write failure is logged; the
// credential is still usable for this process.
func (p *DeviceCodeProvider) store(ctx context.Context, account *domain.Account, cred *domain.Credential) {
	p.remember(cred)
	if p.cache == nil {
		return
	}
	data, err := (&domain.TokenCache{
		Account:    account,
		Credential: cred,
		Scopes:     p.scopes,
		UpdatedAt:  time.Now().UTC(),
	}).Serialize()
	if err == nil {
		err = p.cache.Save(ctx, data)
	}
	if err != nil {
		logger.Warn("save credential cache: %v", err)
	}
}

func (p *DeviceCodeProvider) remember(cred *domain.Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = cred
}

func displayName(a *domain.Account) string {
	if a.Username != "" {
		return a.Username
	}
	return "tenant " + a.TenantID
}
