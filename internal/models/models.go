package models

import "time"

// User is the cached projection of the backend's user record. It lives only
// inside the session and is never persisted past logout.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListOwner is the denormalized owner summary embedded in a task list.
type ListOwner struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TaskList is a named, ownable collection of tasks. Tasks may arrive fully
// loaded (detail endpoint) or as just a count (index endpoint).
type TaskList struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsPublic    bool       `json:"is_public"`
	UserID      int64      `json:"user_id"`
	User        *ListOwner `json:"user,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
	TasksCount  *int       `json:"tasks_count,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskCount returns the number of tasks, falling back to the server-provided
// count when the task slice was not loaded.
func (l TaskList) TaskCount() int {
	if l.Tasks != nil {
		return len(l.Tasks)
	}
	if l.TasksCount != nil {
		return *l.TasksCount
	}
	return 0
}

// CompletedTaskCount counts completed tasks among the loaded ones. A list
// without a loaded task slice contributes zero.
func (l TaskList) CompletedTaskCount() int {
	n := 0
	for _, t := range l.Tasks {
		if t.IsCompleted {
			n++
		}
	}
	return n
}

// Task is a single completable work item belonging to one task list.
type Task struct {
	ID          int64     `json:"id"`
	TaskListID  int64     `json:"task_list_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginRequest carries credentials for the token exchange.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account and a session in one call.
type RegisterRequest struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ProfileRequest updates the authenticated user's profile fields.
type ProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is the success shape of /login and /register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ProfileResponse is the success shape of PUT /user/profile.
type ProfileResponse struct {
	User User `json:"user"`
}

// TaskListRequest creates or updates a task list.
type TaskListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// TaskRequest creates a task within a list.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskUpdateRequest updates a task. Nil fields are left untouched by the
// server, which is how a completion toggle avoids clobbering the title.
type TaskUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}
