package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Backend selects which document API serves the cell protocol.
type Backend string

// Available backends.
const (
	// BackendGraph talks to a workbook in OneDrive/SharePoint.
	BackendGraph Backend = "graph"
	// BackendXLSX edits a local .xlsx file.
	BackendXLSX Backend = "xlsx"
)

// IsValid returns true if the backend is recognised.
func (b Backend) IsValid() bool {
	return b == BackendGraph || b == BackendXLSX
}

// Configuration key names, as reported by ConfigurationError.
const (
	ConfigTenantID     = "TENANT_ID"
	ConfigClientID     = "CLIENT_ID"
	ConfigWorkbookPath = "WORKBOOK_PATH"
	ConfigBackend      = "WORKBOOK_BACKEND"
	ConfigScopes       = "SCOPES"
)

// Defaults used when configuration leaves a value unset.
const (
	DefaultGraphBaseURL      = "https://graph.microsoft.com/v1.0"
	DefaultAuthorityHost     = "https://login.microsoftonline.com"
	DefaultRequestsPerSecond = 4.0
)

// OfflineAccessScope is the scope that makes the provider issue refresh
// material.
const OfflineAccessScope = "offline_access"

// DefaultScopes are the permissions requested on every grant.
func DefaultScopes() []string {
	return []string{"User.Read", "Files.ReadWrite"}
}

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)

// Config is the resolved application configuration.
type Config struct {
	TenantID      string
	ClientID      string
	WorkbookPath  string
	Backend       Backend
	GraphBaseURL  string
	AuthorityHost string
	Scopes        []string
	// PersistRefresh allows refresh material to be stored in the credential
	// cache. Without it offline access is never requested.
	PersistRefresh    bool
	HistoryDSN        string
	CellMapPath       string
	RequestsPerSecond float64
}

// EffectiveScopes returns the scopes to request. offline_access is only
// kept when refresh material may be persisted.
func (c *Config) EffectiveScopes() []string {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}
	out := make([]string, 0, len(scopes)+1)
	hasOffline := false
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.EqualFold(s, OfflineAccessScope) {
			if !c.PersistRefresh || hasOffline {
				continue
			}
			hasOffline = true
		}
		out = append(out, s)
	}
	if c.PersistRefresh && !hasOffline {
		out = append(out, OfflineAccessScope)
	}
	return out
}

// Validate checks the shape of every setting and reports all offending
// names at once.
func (c *Config) Validate() error {
	var bad []string

	backend := c.Backend
	if backend == "" {
		backend = BackendGraph
	}

	switch backend {
	case BackendGraph:
		if !guidPattern.MatchString(c.TenantID) {
			bad = append(bad, ConfigTenantID)
		}
		if !guidPattern.MatchString(c.ClientID) {
			bad = append(bad, ConfigClientID)
		}
		if !IsGraphWorkbookPath(c.WorkbookPath) {
			bad = append(bad, ConfigWorkbookPath)
		}
		if len(c.EffectiveScopes()) == 0 {
			bad = append(bad, ConfigScopes)
		}
	case BackendXLSX:
		if !filepath.IsAbs(c.WorkbookPath) || !strings.EqualFold(filepath.Ext(c.WorkbookPath), ".xlsx") {
			bad = append(bad, ConfigWorkbookPath)
		}
	default:
		bad = append(bad, ConfigBackend)
	}

	if len(bad) > 0 {
		return &ConfigurationError{Names: bad}
	}
	return nil
}

// IsGraphWorkbookPath reports whether path is an absolute drive location.
func IsGraphWorkbookPath(path string) bool {
	return strings.HasPrefix(path, "/me/drive/root:") ||
		strings.HasPrefix(path, "/sites/") ||
		strings.HasPrefix(path, "/drives/")
}
