// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"todoctl/internal/service"
)

// DefaultPageSize mirrors the backend default.
const DefaultPageSize = 10

// FakeService is an in-memory implementation of service.Service for testing.
// It behaves like the backend: ids and timestamps are assigned server-side,
// unknown ids answer 404, listing is sorted by id descending unless asked
// otherwise.
type FakeService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]service.Task
	users  map[string]string // username -> password
	tokens map[string]string // token -> username
	token  string            // session carried by this client

	// Now supplies server timestamps.
	Now func() time.Time

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	MeErr       error
	LogoutErr   error
	ValidateErr error
	ListErr     error
	GetErr      error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	ByStatusErr error

	// NormalizeTitle, when set, rewrites titles on create/update the way
	// server-side validation might.
	NormalizeTitle func(string) string

	// BeforeUpdate, when set, runs inside UpdateTodo before the write.
	BeforeUpdate func(id int64)

	// AfterList, when set, runs after ListTodos has taken its snapshot and
	// before it returns.
	AfterList func(req service.PageRequest)

	// Calls counts invocations per method name.
	Calls map[string]int

	// LastPageRequest is the most recent ListTodos request.
	LastPageRequest service.PageRequest
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		tasks:  make(map[int64]service.Task),
		users:  make(map[string]string),
		tokens: make(map[string]string),
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
		},
		Calls: make(map[string]int),
	}
}

// AddUser registers an account.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// AddSession makes token a valid session for username and uses it for this client.
func (f *FakeService) AddSession(token, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = username
	f.token = token
}

// RevokeSession invalidates token server-side.
func (f *FakeService) RevokeSession(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// AddTask stores a task as if it had been created earlier and returns it.
func (f *FakeService) AddTask(title string, completed bool, due *time.Time) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := service.Draft{Title: title, Completed: completed}
	if due != nil {
		draft.DueDate = service.NewTimestamp(*due)
	}
	return f.insertLocked(draft)
}

// Task returns the stored task for id.
func (f *FakeService) Task(id int64) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

// Count returns the number of stored tasks.
func (f *FakeService) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// CallCount returns how often method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
}

func (f *FakeService) insertLocked(d service.Draft) service.Task {
	now := service.NewTimestamp(f.Now())
	t := service.Task{
		ID:          f.nextID,
		Title:       f.normalize(d.Title),
		Description: d.Description,
		Completed:   d.Completed,
		DueDate:     d.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.nextID++
	f.tasks[t.ID] = t
	return t
}

func (f *FakeService) normalize(title string) string {
	if f.NormalizeTitle != nil {
		return f.NormalizeTitle(title)
	}
	return title
}

func notFound() error {
	return &service.HTTPError{Status: 404, StatusText: "Not Found"}
}

func unauthorized() error {
	return &service.HTTPError{Status: 401, StatusText: "Unauthorized"}
}

// Login implements service.AuthService.
func (f *FakeService) Login(ctx context.Context, username, password string) (service.Session, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.Session{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.users[username]; !ok || pw != password {
		return service.Session{}, unauthorized()
	}
	return f.issueLocked(username), nil
}

// Register implements service.AuthService.
func (f *FakeService) Register(ctx context.Context, username, password string) (service.Session, error) {
	f.record("Register")
	if f.RegisterErr != nil {
		return service.Session{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[username]; exists {
		return service.Session{}, &service.HTTPError{Status: 409, StatusText: "Conflict"}
	}
	f.users[username] = password
	return f.issueLocked(username), nil
}

func (f *FakeService) issueLocked(username string) service.Session {
	token := fmt.Sprintf("tok-%s-%d", username, len(f.tokens)+1)
	f.tokens[token] = username
	f.token = token
	return service.Session{Token: token, Expiry: service.Timestamp{Time: f.Now().Add(24 * time.Hour)}}
}

// Me implements service.AuthService.
func (f *FakeService) Me(ctx context.Context) (string, error) {
	f.record("Me")
	if f.MeErr != nil {
		return "", f.MeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.tokens[f.token]
	if !ok {
		return "", unauthorized()
	}
	return name, nil
}

// Logout implements service.AuthService.
func (f *FakeService) Logout(ctx context.Context) error {
	f.record("Logout")
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, f.token)
	f.token = ""
	return nil
}

// Validate implements service.Validator.
func (f *FakeService) Validate(ctx context.Context, token string) (bool, error) {
	f.record("Validate")
	if f.ValidateErr != nil {
		return false, f.ValidateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	if ok {
		f.token = token
	}
	return ok, nil
}

// ListTodos implements service.TodoService.
// A non-empty Query keeps tasks whose title or description contains it,
// case-insensitively.
func (f *FakeService) ListTodos(ctx context.Context, req service.PageRequest) (service.PagedResponse, error) {
	f.record("ListTodos")
	f.mu.Lock()
	f.LastPageRequest = req
	f.mu.Unlock()
	if f.ListErr != nil {
		return service.PagedResponse{}, f.ListErr
	}

	page := f.listPage(req)
	if f.AfterList != nil {
		f.AfterList(req)
	}
	return page, nil
}

func (f *FakeService) listPage(req service.PageRequest) service.PagedResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	size := req.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	matches := f.sortedLocked(strings.EqualFold(req.SortDir, "ASC"))
	if q := strings.ToLower(strings.TrimSpace(req.Query)); q != "" {
		filtered := matches[:0]
		for _, t := range matches {
			if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
				filtered = append(filtered, t)
			}
		}
		matches = filtered
	}

	total := len(matches)
	totalPages := (total + size - 1) / size
	start := req.Page * size
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]service.Task, end-start)
	copy(content, matches[start:end])

	return service.PagedResponse{
		Content:       content,
		Page:          req.Page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
	}
}

func (f *FakeService) sortedLocked(asc bool) []service.Task {
	out := make([]service.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// GetTodo implements service.TodoService.
func (f *FakeService) GetTodo(ctx context.Context, id int64) (service.Task, error) {
	f.record("GetTodo")
	if f.GetErr != nil {
		return service.Task{}, f.GetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, notFound()
	}
	return t, nil
}

// CreateTodo implements service.TodoService.
func (f *FakeService) CreateTodo(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.record("CreateTodo")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(draft), nil
}

// UpdateTodo implements service.TodoService.
func (f *FakeService) UpdateTodo(ctx context.Context, id int64, draft service.Draft) (service.Task, error) {
	f.record("UpdateTodo")
	if f.BeforeUpdate != nil {
		f.BeforeUpdate(id)
	}
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, notFound()
	}
	t.Title = f.normalize(draft.Title)
	t.Description = draft.Description
	t.Completed = draft.Completed
	t.DueDate = draft.DueDate
	t.UpdatedAt = service.NewTimestamp(f.Now())
	f.tasks[id] = t
	return t, nil
}

// DeleteTodo implements service.TodoService.
func (f *FakeService) DeleteTodo(ctx context.Context, id int64) error {
	f.record("DeleteTodo")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return notFound()
	}
	delete(f.tasks, id)
	return nil
}

// TodosByCompleted implements service.TodoService.
func (f *FakeService) TodosByCompleted(ctx context.Context, completed bool) ([]service.Task, error) {
	f.record("TodosByCompleted")
	if f.ByStatusErr != nil {
		return nil, f.ByStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []service.Task
	for _, t := range f.sortedLocked(true) {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out, nil
}

var _ service.Service = (*FakeService)(nil)
