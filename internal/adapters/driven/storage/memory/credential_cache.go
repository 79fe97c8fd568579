package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
)

// Ensure CredentialCache implements the interface.
var _ driven.CredentialCache = (*CredentialCache)(nil)

// CredentialCache keeps the serialized token cache in memory.
type CredentialCache struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewCredentialCache creates an empty cache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{}
}

// Load returns a copy of the stored bytes.
func (c *CredentialCache) Load(_ context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil, nil
	}
	return append([]byte(nil), c.data...), nil
}

// Save replaces the stored bytes.
func (c *CredentialCache) Save(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append([]byte(nil), data...)
	c.saves++
	return nil
}

// Clear removes the stored bytes.
func (c *CredentialCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	return nil
}

// Saves returns how many times Save was called.
func (c *CredentialCache) Saves() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saves
}
