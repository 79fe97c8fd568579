package domain

import (
	"encoding/json"
	"time"
)

// Credential is a bearer credential issued by the identity provider.
// It is never mutated; a refreshed credential replaces the old one.
type Credential struct {
	// AccessToken is the bearer token presented on every request.
	AccessToken string `json:"access_token"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// RefreshToken is only kept when refresh material may be persisted.
	RefreshToken string `json:"refresh_token,omitempty"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the access token has expired.
func (c *Credential) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// ValidFor reports whether the access token is present and stays valid for
// at least d.
func (c *Credential) ValidFor(d time.Duration) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	if c.Expiry.IsZero() {
		return true
	}
	return time.Until(c.Expiry) > d
}

// Account identifies the signed-in user inside a TokenCache.
type Account struct {
	// Username is the user principal name, when the provider returned one.
	Username string `json:"username,omitempty"`
	// TenantID is the directory the account signed in to.
	TenantID string `json:"tenant_id,omitempty"`
}

// TokenCache is the reusable authentication artifact persisted between
// invocations. A cache without a Credential is empty.
type TokenCache struct {
	Account    *Account    `json:"account,omitempty"`
	Credential *Credential `json:"credential,omitempty"`
	Scopes     []string    `json:"scopes,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// HasAccount reports whether a previous grant left a usable account behind.
func (c *TokenCache) HasAccount() bool {
	return c != nil && c.Account != nil && c.Credential != nil
}

// Serialize encodes the cache for a CredentialCache.
func (c *TokenCache) Serialize() ([]byte, error) {
	return json.Marshal(c)
}

// DeserializeTokenCache decodes a serialized cache. Absent or corrupt data
// yields an empty cache and false; it is never an error.
func DeserializeTokenCache(data []byte) (*TokenCache, bool) {
	if len(data) == 0 {
		return &TokenCache{}, false
	}
	var cache TokenCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &TokenCache{}, false
	}
	return &cache, true
}

// DeviceCodePrompt is what the user needs to approve a device grant out of
// band: open VerificationURI and enter UserCode before ExpiresAt.
type DeviceCodePrompt struct {
	VerificationURI string
	UserCode        string
	ExpiresAt       time.Time
}

// Message renders the prompt as one instruction line.
func (p DeviceCodePrompt) Message() string {
	return "To sign in, open " + p.VerificationURI + " and enter the code " + p.UserCode
}
