package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/models"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, discard)
}

func TestClient_BearerTokenHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.TaskList{})
	})

	_, err := c.ListTaskLists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	c.SetToken("abc")
	_, err = c.ListTaskLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)

	c.ClearToken()
	_, err = c.ListTaskLists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})

		_, err := c.GetTaskList(context.Background(), 1)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestClient_ServerMessageSurvivesSentinelMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "The provided credentials are incorrect."})
	})

	_, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "The provided credentials are incorrect.", apiErr.Message)
}

func TestClient_ValidationErrorParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "The given data was invalid.",
			"errors": map[string][]string{
				"title": {"The title field is required.", "second message"},
			},
		})
	})

	_, err := c.CreateTaskList(context.Background(), models.TaskListRequest{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The given data was invalid.", verr.Message)
	assert.Equal(t, []string{"The title field is required.", "second message"}, verr.Fields["title"])
	assert.Equal(t, "The title field is required.", verr.FieldMessages()["title"])
}

func TestClient_422WithoutFieldMapIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
	})

	_, err := c.CreateTaskList(context.Background(), models.TaskListRequest{})

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestClient_RequestShapes(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(models.Task{ID: 9})
	})
	c.SetToken("abc")

	done := true
	_, err := c.UpdateTask(context.Background(), 9, models.TaskUpdateRequest{IsCompleted: &done})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/tasks/9", gotPath)
	// Untouched fields stay out of the payload so the server will not
	// clobber them.
	assert.JSONEq(t, `{"is_completed":true}`, string(gotBody))

	_, err = c.CreateTask(context.Background(), 3, models.TaskRequest{Title: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/task-lists/3/tasks", gotPath)

	err = c.DeleteTaskList(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/task-lists/3", gotPath)
}

func TestClient_TimeoutBoundsRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.http.Timeout = 50 * time.Millisecond

	_, err := c.ListTaskLists(context.Background())
	assert.Error(t, err)
}

func TestClient_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]models.TaskList{})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/", 5*time.Second, discard)
	_, err := c.ListTaskLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/task-lists", gotPath)
}
