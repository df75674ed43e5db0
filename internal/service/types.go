// Package service defines the backend-agnostic interface for task operations.
package service

import "strings"

// Task represents a single to-do record as stored by the backend.
// ID is zero until the task has been persisted; CreatedAt and UpdatedAt are
// assigned by the server and never sent by the client.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *Timestamp `json:"dueDate,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// Draft holds the client-writable fields of a task.
// It is the body of both create and update requests.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *Timestamp `json:"dueDate"`
}

// Draft returns the client-writable fields of t.
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
	}
}

// Validate checks client-side preconditions before the draft reaches the network.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string
	Description  *string
	Completed    *bool
	DueDate      *Timestamp
	ClearDueDate bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply merges the patch onto t and returns the resulting draft.
func (p Patch) Apply(t Task) Draft {
	d := t.Draft()
	if p.Title != nil {
		d.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Completed != nil {
		d.Completed = *p.Completed
	}
	if p.DueDate != nil {
		d.DueDate = p.DueDate
	}
	if p.ClearDueDate {
		d.DueDate = nil
	}
	return d
}

// PagedResponse is one page of a server-sorted task collection.
type PagedResponse struct {
	Content       []Task `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Last          bool   `json:"last"`
	First         bool   `json:"first"`
}

// PageRequest selects a page of the task collection.
// Page is 0-based. Empty SortBy/SortDir use the backend defaults.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
	Query   string
}

// Session is the credential issued by login or registration.
type Session struct {
	Token  string
	Expiry Timestamp
}
