package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testUser() models.User {
	return models.User{
		ID:       1,
		Name:     "Test User",
		Username: "testuser",
		Email:    "test@example.com",
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// newTestManager wires a manager against the given handler with a fresh
// on-disk store so restore behavior can be exercised across instances.
func newTestManager(t *testing.T, handler http.Handler) (*Manager, *Store, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := api.New(srv.URL, 5*time.Second, discard)
	return NewManager(client, store, discard), store, srv.URL
}

func TestManager_RestoreEmptyStore(t *testing.T) {
	m, _, _ := newTestManager(t, http.NotFoundHandler())

	assert.Equal(t, StateUnknown, m.State())
	assert.True(t, m.Loading())

	state := m.Restore()

	assert.Equal(t, StateAnonymous, state)
	assert.False(t, m.Loading())
	assert.Nil(t, m.User())
}

func TestManager_LoginSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test@example.com", req.Email)
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	m, store, _ := newTestManager(t, mux)
	m.Restore()

	res := m.Login(context.Background(), "test@example.com", "password123")

	require.True(t, res.OK)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, int64(1), m.UserID())
	assert.False(t, m.Loading())

	// The session survives in the store for the next startup.
	token, user, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "testuser", user.Username)
}

func TestManager_RestoreAfterLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	m, store, url := newTestManager(t, mux)
	m.Restore()
	require.True(t, m.Login(context.Background(), "test@example.com", "password123").OK)

	// A fresh manager over the same store, as on the next launch.
	fresh := NewManager(api.New(url, 5*time.Second, discard), store, discard)
	state := fresh.Restore()

	assert.Equal(t, StateAuthenticated, state)
	require.NotNil(t, fresh.User())
	assert.Equal(t, "test@example.com", fresh.User().Email)
}

func TestManager_LoginFailureKeepsStateAndSurfacesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "The provided credentials are incorrect.",
		})
	})
	m, store, _ := newTestManager(t, mux)
	m.Restore()

	res := m.Login(context.Background(), "test@example.com", "wrong")

	assert.False(t, res.OK)
	assert.Equal(t, "The provided credentials are incorrect.", res.Error)
	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, res.Error, m.LastError())

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestManager_LoginFailureFallbackMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	m, _, _ := newTestManager(t, mux)
	m.Restore()

	res := m.Login(context.Background(), "test@example.com", "password123")

	assert.False(t, res.OK)
	assert.Equal(t, "Login failed", res.Error)
}

func TestManager_RegisterSuccessAutoAuthenticates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, req.Password, req.PasswordConfirmation)
		writeJSON(w, http.StatusCreated, models.AuthResponse{User: testUser(), Token: "fresh"})
	})
	m, _, _ := newTestManager(t, mux)
	m.Restore()

	res := m.Register(context.Background(), models.RegisterRequest{
		Name:                 "Test User",
		Username:             "testuser",
		Email:                "test@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})

	require.True(t, res.OK)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManager_RegisterValidationErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors": map[string][]string{
				"email":    {"The email has already been taken."},
				"username": {"The username has already been taken."},
			},
		})
	})
	m, _, _ := newTestManager(t, mux)
	m.Restore()

	res := m.Register(context.Background(), models.RegisterRequest{Email: "dupe@example.com"})

	assert.False(t, res.OK)
	assert.Empty(t, res.Error)
	assert.Equal(t, "The email has already been taken.", res.FieldErrors["email"])
	assert.Equal(t, "The username has already been taken.", res.FieldErrors["username"])
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_LogoutClearsLocalEvenWhenRemoteFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	m, store, _ := newTestManager(t, mux)
	m.Restore()
	require.True(t, m.Login(context.Background(), "test@example.com", "password123").OK)

	res := m.Logout(context.Background())

	assert.True(t, res.OK)
	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.User())

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestManager_Invalidate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	m, store, _ := newTestManager(t, mux)
	m.Restore()
	require.True(t, m.Login(context.Background(), "test@example.com", "password123").OK)

	m.Invalidate()

	assert.Equal(t, StateAnonymous, m.State())
	token, _, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestManager_UpdateProfileReplacesUserKeepsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	mux.HandleFunc("PUT /user/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		updated := testUser()
		updated.Name = "Renamed"
		writeJSON(w, http.StatusOK, models.ProfileResponse{User: updated})
	})
	m, store, _ := newTestManager(t, mux)
	m.Restore()
	require.True(t, m.Login(context.Background(), "test@example.com", "password123").OK)

	res := m.UpdateProfile(context.Background(), models.ProfileRequest{
		Name:     "Renamed",
		Username: "testuser",
		Email:    "test@example.com",
	})

	require.True(t, res.OK)
	require.NotNil(t, m.User())
	assert.Equal(t, "Renamed", m.User().Name)

	token, user, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "Renamed", user.Name)
}

func TestManager_UpdateProfileValidationFailureLeavesSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{User: testUser(), Token: "abc"})
	})
	mux.HandleFunc("PUT /user/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"email": {"The email has already been taken."}},
		})
	})
	m, _, _ := newTestManager(t, mux)
	m.Restore()
	require.True(t, m.Login(context.Background(), "test@example.com", "password123").OK)

	res := m.UpdateProfile(context.Background(), models.ProfileRequest{Email: "dupe@example.com"})

	assert.False(t, res.OK)
	assert.Equal(t, "The email has already been taken.", res.FieldErrors["email"])
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "Test User", m.User().Name)
}
