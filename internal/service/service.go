// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// AuthService covers the /auth endpoints.
type AuthService interface {
	// Login authenticates and returns the issued session.
	Login(ctx context.Context, username, password string) (Session, error)

	// Register creates an account. The backend also issues a session.
	Register(ctx context.Context, username, password string) (Session, error)

	// Me returns the username of the current session.
	Me(ctx context.Context) (string, error)

	// Logout clears the session server-side.
	Logout(ctx context.Context) error
}

// Validator checks whether a session token is still accepted by the backend.
type Validator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// TodoService covers the /api/todos endpoints.
// Commands and the store never import the HTTP client directly.
type TodoService interface {
	// ListTodos returns one page of tasks in server order.
	ListTodos(ctx context.Context, req PageRequest) (PagedResponse, error)

	// GetTodo returns a single task.
	GetTodo(ctx context.Context, id int64) (Task, error)

	// CreateTodo persists a new task and returns the server representation.
	CreateTodo(ctx context.Context, draft Draft) (Task, error)

	// UpdateTodo overwrites the writable fields of an existing task.
	UpdateTodo(ctx context.Context, id int64, draft Draft) (Task, error)

	// DeleteTodo deletes a task.
	DeleteTodo(ctx context.Context, id int64) error

	// TodosByCompleted returns all tasks with the given completion flag.
	TodosByCompleted(ctx context.Context, completed bool) ([]Task, error)
}

// Service is everything a command may need from the backend.
type Service interface {
	AuthService
	Validator
	TodoService
}
