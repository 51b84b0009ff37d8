package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/models"
)

// ListTaskLists returns every list visible to the caller. The server does
// the access filtering; the client only derives UI affordances from it.
func (c *Client) ListTaskLists(ctx context.Context) ([]models.TaskList, error) {
	var lists []models.TaskList
	if err := c.do(ctx, http.MethodGet, "/task-lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetTaskList returns one list with its tasks loaded.
func (c *Client) GetTaskList(ctx context.Context, id int64) (models.TaskList, error) {
	var list models.TaskList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/task-lists/%d", id), nil, &list); err != nil {
		return models.TaskList{}, err
	}
	return list, nil
}

// CreateTaskList creates a new list owned by the caller.
func (c *Client) CreateTaskList(ctx context.Context, req models.TaskListRequest) (models.TaskList, error) {
	var list models.TaskList
	if err := c.do(ctx, http.MethodPost, "/task-lists", req, &list); err != nil {
		return models.TaskList{}, err
	}
	return list, nil
}

// UpdateTaskList updates a list. The server rejects calls from non-owners.
func (c *Client) UpdateTaskList(ctx context.Context, id int64, req models.TaskListRequest) (models.TaskList, error) {
	var list models.TaskList
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/task-lists/%d", id), req, &list); err != nil {
		return models.TaskList{}, err
	}
	return list, nil
}

// DeleteTaskList deletes a list and all its tasks.
func (c *Client) DeleteTaskList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/task-lists/%d", id), nil, nil)
}
