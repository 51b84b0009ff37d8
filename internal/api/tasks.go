package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/models"
)

// CreateTask creates a task within the given list.
func (c *Client) CreateTask(ctx context.Context, listID int64, req models.TaskRequest) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/task-lists/%d/tasks", listID), req, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask updates or toggles a task by its own id.
func (c *Client) UpdateTask(ctx context.Context, id int64, req models.TaskUpdateRequest) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), req, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}
