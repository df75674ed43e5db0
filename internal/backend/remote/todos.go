package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"todoctl/internal/service"
)

const todosPath = "/api/todos"

// ListTodos implements service.TodoService.
func (c *Client) ListTodos(ctx context.Context, req service.PageRequest) (service.PagedResponse, error) {
	var page service.PagedResponse
	raw, err := c.Call(ctx, todosPath+"?"+pageQuery(req).Encode(), http.MethodGet, nil)
	if err != nil {
		return page, err
	}
	if err := raw.Decode(&page); err != nil {
		return service.PagedResponse{}, err
	}
	return page, nil
}

// GetTodo implements service.TodoService.
func (c *Client) GetTodo(ctx context.Context, id int64) (service.Task, error) {
	return c.taskCall(ctx, todoPath(id), http.MethodGet, nil)
}

// CreateTodo implements service.TodoService.
func (c *Client) CreateTodo(ctx context.Context, draft service.Draft) (service.Task, error) {
	return c.taskCall(ctx, todosPath, http.MethodPost, draft)
}

// UpdateTodo implements service.TodoService.
func (c *Client) UpdateTodo(ctx context.Context, id int64, draft service.Draft) (service.Task, error) {
	return c.taskCall(ctx, todoPath(id), http.MethodPut, draft)
}

// DeleteTodo implements service.TodoService.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	_, err := c.Call(ctx, todoPath(id), http.MethodDelete, nil)
	return err
}

// TodosByCompleted implements service.TodoService.
func (c *Client) TodosByCompleted(ctx context.Context, completed bool) ([]service.Task, error) {
	raw, err := c.Call(ctx, todosPath+"/completed/"+strconv.FormatBool(completed), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	var tasks []service.Task
	if err := raw.Decode(&tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) taskCall(ctx context.Context, endpoint, method string, body any) (service.Task, error) {
	raw, err := c.Call(ctx, endpoint, method, body)
	if err != nil {
		return service.Task{}, err
	}
	var task service.Task
	if err := raw.Decode(&task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

func todoPath(id int64) string {
	return fmt.Sprintf("%s/%d", todosPath, id)
}

// pageQuery encodes the listing parameters. The backend defaults apply to
// anything left empty.
func pageQuery(req service.PageRequest) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	if req.Size > 0 {
		q.Set("size", strconv.Itoa(req.Size))
	}
	if req.SortBy != "" {
		q.Set("sortBy", req.SortBy)
	}
	if req.SortDir != "" {
		q.Set("sortDir", req.SortDir)
	}
	if req.Query != "" {
		q.Set("search", req.Query)
	}
	return q
}
