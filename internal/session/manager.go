package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/models"
)

// State is the session lifecycle state. Unknown is the transient startup
// state while the store is consulted; it resolves to exactly one of the
// other two before any protected view is shown.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

// Result is what the mutating operations hand back to a form. Exactly one
// of Error or FieldErrors is populated on failure; neither on success.
// Nothing ever propagates past the manager as a raw error.
type Result struct {
	OK          bool
	Error       string
	FieldErrors map[string]string
}

func ok() Result                            { return Result{OK: true} }
func failMsg(msg string) Result             { return Result{Error: msg} }
func failFields(f map[string]string) Result { return Result{FieldErrors: f} }

// Manager is the single source of truth for who is logged in. It mediates
// between the forms and the remote API, keeping the in-memory session and
// the persistent store in sync. Bubble Tea runs commands on goroutines, so
// state access is guarded.
type Manager struct {
	client *api.Client
	store  *Store
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	loading bool
	lastErr string
}

// NewManager creates a manager in the Unknown state. Restore must be called
// before any protected view is rendered.
func NewManager(client *api.Client, store *Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client:  client,
		store:   store,
		logger:  logger,
		state:   StateUnknown,
		loading: true,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the cached user, or nil when anonymous.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// UserID returns the cached user's id, or 0 when anonymous.
func (m *Manager) UserID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return 0
	}
	return m.user.ID
}

// IsAuthenticated reports whether a user is present.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Loading reports whether startup restoration or an auth operation is in
// flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// LastError returns the message of the most recent failed operation.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Restore reads the persistent store and resolves the Unknown state. Token
// validity is not verified here; a stale token surfaces as a 401 on the
// next API call. Loading is cleared exactly once regardless of branch.
func (m *Manager) Restore() State {
	token, user, err := m.store.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.logger.Warn("session restore failed", "error", err)
		m.state = StateAnonymous
		return m.state
	}
	if token != "" && user != nil {
		m.user = user
		m.state = StateAuthenticated
		m.client.SetToken(token)
		m.logger.Info("session restored", "user_id", user.ID)
	} else {
		m.state = StateAnonymous
	}
	return m.state
}

// Login exchanges credentials for a session. On failure the session is left
// untouched and the server message (or a generic fallback) is surfaced.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	m.setBusy()
	resp, err := m.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		msg := authFailureMessage(err, "Login failed")
		m.settle(msg)
		return failMsg(msg)
	}
	return m.establish(resp)
}

// Register creates an account and, like login, auto-authenticates the new
// user. Validation failures surface as a field-keyed error map.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) Result {
	m.setBusy()
	resp, err := m.client.Register(ctx, req)
	if err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			m.settle(verr.Error())
			return failFields(verr.FieldMessages())
		}
		msg := authFailureMessage(err, "Registration failed")
		m.settle(msg)
		return failMsg(msg)
	}
	return m.establish(resp)
}

// Logout invalidates the server-side session best-effort, then clears the
// local session unconditionally. A flaky network must never keep the user
// logged in locally.
func (m *Manager) Logout(ctx context.Context) Result {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}
	m.clearLocal()
	return ok()
}

// Invalidate clears the local session without a remote call. Used when an
// API call answers 401: the stored token is dead and only the user can
// mint a new one by logging in again.
func (m *Manager) Invalidate() {
	m.logger.Info("session invalidated by server")
	m.clearLocal()
}

// UpdateProfile replaces the cached user in memory and in the store on
// success. The token is untouched. On failure the session is unchanged.
func (m *Manager) UpdateProfile(ctx context.Context, req models.ProfileRequest) Result {
	m.setBusy()
	user, err := m.client.UpdateProfile(ctx, req)
	if err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			m.settle(verr.Error())
			return failFields(verr.FieldMessages())
		}
		msg := authFailureMessage(err, "Update failed")
		m.settle(msg)
		return failMsg(msg)
	}

	token, _, loadErr := m.store.Load()
	if loadErr == nil && token != "" {
		if err := m.store.Save(token, user); err != nil {
			m.logger.Warn("persisting updated profile failed", "error", err)
		}
	}

	m.mu.Lock()
	m.user = &user
	m.loading = false
	m.lastErr = ""
	m.mu.Unlock()
	return ok()
}

// establish persists a successful auth response and transitions to
// Authenticated.
func (m *Manager) establish(resp models.AuthResponse) Result {
	if err := m.store.Save(resp.Token, resp.User); err != nil {
		m.logger.Warn("persisting session failed", "error", err)
	}
	m.client.SetToken(resp.Token)

	m.mu.Lock()
	m.user = &resp.User
	m.state = StateAuthenticated
	m.loading = false
	m.lastErr = ""
	m.mu.Unlock()

	m.logger.Info("session established", "user_id", resp.User.ID)
	return ok()
}

func (m *Manager) clearLocal() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clearing session store failed", "error", err)
	}
	m.client.ClearToken()

	m.mu.Lock()
	m.user = nil
	m.state = StateAnonymous
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) setBusy() {
	m.mu.Lock()
	m.loading = true
	m.lastErr = ""
	m.mu.Unlock()
}

func (m *Manager) settle(errMsg string) {
	m.mu.Lock()
	m.loading = false
	m.lastErr = errMsg
	m.mu.Unlock()
}

// authFailureMessage extracts the server-provided message, or falls back to
// a generic one for network and unexpected failures.
func authFailureMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return "Invalid credentials"
	}
	return fallback
}
