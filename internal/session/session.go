// Package session owns the current bearer credential and the authenticated
// user's profile. The manager has exclusive write access to both; every
// other component reads through its accessors.
package session

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/golang/glog"
	"golang.org/x/oauth2"

	"tasksync/internal/api"
	"tasksync/internal/config"
)

// State is the session lifecycle state.
type State int

const (
	// Anonymous means no credential is held.
	Anonymous State = iota

	// Authenticating means a login is in flight.
	Authenticating

	// ProfileLoading means a credential is held but the profile fetch has
	// not settled yet.
	ProfileLoading

	// ProfileReady means a credential and the profile are both held.
	ProfileReady
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case ProfileLoading:
		return "profile-loading"
	case ProfileReady:
		return "profile-ready"
	}
	return "unknown"
}

// Manager owns the session. The credential is the only state persisted
// across process restarts, stored as an oauth2 token file in the config dir.
type Manager struct {
	mu  sync.RWMutex
	cfg *config.Config
	gw  api.Gateway

	state      State
	credential string
	profile    *api.Profile
}

// NewManager creates a session manager. If a persisted credential exists it
// is loaded optimistically: the session enters ProfileLoading and a later
// Resume decides whether the credential is still accepted. The gateway's
// credential source is wired to this manager.
func NewManager(cfg *config.Config, gw api.Gateway) *Manager {
	m := &Manager{
		cfg:   cfg,
		gw:    gw,
		state: Anonymous,
	}
	if credential := loadCredential(cfg); credential != "" {
		m.credential = credential
		m.state = ProfileLoading
	}
	if setter, ok := gw.(api.CredentialSetter); ok {
		setter.SetCredentialSource(m.Credential)
	}
	return m
}

// Gateway returns the remote store gateway this session authenticates.
func (m *Manager) Gateway() api.Gateway {
	return m.gw
}

// Login authenticates and stores the returned credential, persisting it for
// reuse across restarts, then fetches the profile. A failed authenticate
// leaves the session anonymous and persisted state untouched; a failed
// profile fetch leaves the session authenticated with no profile.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	m.state = Authenticating
	m.mu.Unlock()

	credential, err := m.gw.Authenticate(ctx, username, password)
	if err != nil {
		m.mu.Lock()
		if m.state == Authenticating {
			m.state = Anonymous
		}
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.credential = credential
	m.profile = nil
	m.state = ProfileLoading
	m.mu.Unlock()

	if err := m.persist(credential); err != nil {
		glog.Infof("[session]failed to persist credential: %v", err)
	}

	if profile, err := m.gw.FetchProfile(ctx); err != nil {
		glog.Infof("[session]profile fetch after login failed: %v", err)
	} else {
		m.setProfile(profile)
	}
	return nil
}

// Register creates a new user. Session state is not changed; the caller
// logs in separately.
func (m *Manager) Register(ctx context.Context, username, password string) (api.Profile, error) {
	return m.gw.Register(ctx, username, password)
}

// Resume validates a previously persisted credential by fetching the
// profile. A credential the store rejects is stale: the credential, the
// profile, and the persisted value are all cleared. Any other failure keeps
// the credential in place with no profile.
func (m *Manager) Resume(ctx context.Context) error {
	m.mu.RLock()
	credential := m.credential
	m.mu.RUnlock()
	if credential == "" {
		return nil
	}

	profile, err := m.gw.FetchProfile(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			glog.Infof("[session]persisted credential rejected, clearing: %v", err)
			if clearErr := m.clear(); clearErr != nil {
				glog.Infof("[session]failed to remove persisted credential: %v", clearErr)
			}
		}
		return err
	}
	m.setProfile(profile)
	return nil
}

// UpdateProfile applies a partial profile update. The store's merged result
// replaces the local profile; on failure the local profile is untouched.
func (m *Manager) UpdateProfile(ctx context.Context, patch api.ProfilePatch) error {
	profile, err := m.gw.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	m.setProfile(profile)
	return nil
}

// Logout clears the credential, the profile, and the persisted value.
// Idempotent.
func (m *Manager) Logout() error {
	return m.clear()
}

// Invalidate clears the session after the remote store rejected the
// credential on some other component's call.
func (m *Manager) Invalidate() error {
	glog.Infof("[session]credential rejected by the store, invalidating session")
	return m.clear()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a credential is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential != ""
}

// Credential returns the current bearer credential, or "" when anonymous.
// This is the gateway's read-only credential source.
func (m *Manager) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential
}

// Profile returns a copy of the profile, or nil while it has not loaded.
func (m *Manager) Profile() *api.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil
	}
	profile := *m.profile
	return &profile
}

// Username returns the profile username, falling back to the bearer token's
// unverified subject claim while the profile has not loaded.
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile != nil {
		return m.profile.Username
	}
	if m.credential != "" {
		return subjectOf(m.credential)
	}
	return ""
}

// ExpiresAt returns the bearer token's unverified expiry claim, if present.
// Display only; the store's verdict on the credential is authoritative.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return expiryOf(m.credential)
}

func (m *Manager) setProfile(profile api.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// A logout may have raced the fetch; never attach a profile to an
	// anonymous session.
	if m.credential == "" {
		return
	}
	m.profile = &profile
	m.state = ProfileReady
}

func (m *Manager) clear() error {
	m.mu.Lock()
	m.credential = ""
	m.profile = nil
	m.state = Anonymous
	m.mu.Unlock()

	if m.cfg.HasToken() {
		return m.cfg.RemoveToken()
	}
	return nil
}

// persist saves the credential to the token file with mode 0600.
func (m *Manager) persist(credential string) error {
	if err := m.cfg.EnsureDir(); err != nil {
		return err
	}
	token := &oauth2.Token{AccessToken: credential, TokenType: "bearer"}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.cfg.TokenPath(), data, 0600)
}

// loadCredential reads the persisted credential, if any.
func loadCredential(cfg *config.Config) string {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return ""
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return ""
	}
	return strings.TrimSpace(token.AccessToken)
}

// subjectOf peeks at the token's unverified sub claim.
func subjectOf(credential string) string {
	claims := parseClaims(credential)
	if claims == nil {
		return ""
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// expiryOf peeks at the token's unverified exp claim.
func expiryOf(credential string) (time.Time, bool) {
	claims := parseClaims(credential)
	if claims == nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func parseClaims(credential string) gojwt.MapClaims {
	if credential == "" {
		return nil
	}
	parser := gojwt.NewParser()
	token, _, err := parser.ParseUnverified(credential, gojwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}
