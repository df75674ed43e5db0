// Package store keeps a local, ordered task collection consistent with the
// backend. It is the only writer of that collection; views read copies.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"todoctl/internal/logging"
	"todoctl/internal/service"
)

// DefaultFetchAllSize is the page size used when walking every page.
const DefaultFetchAllSize = 100

// Store mirrors a paginated remote task collection.
//
// Every successful operation leaves the local entry for an id equal to the
// server's latest representation. Failed operations leave the collection
// untouched and are recorded as the last error.
//
// Mutations on the same id are serialized. Each applied change bumps a
// generation counter; responses to requests that began before a newer change
// to the same id (or before its removal) do not overwrite it.
type Store struct {
	svc    service.TodoService
	logger *log.Logger
	locks  idLocks

	mu       sync.Mutex
	tasks    []service.Task
	meta     service.PagedResponse
	loading  int
	lastErr  error
	fetchSeq uint64
	gen      uint64
	touched  map[int64]uint64
	removed  map[int64]uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store backed by svc.
func New(svc service.TodoService, opts ...Option) *Store {
	s := &Store{
		svc:     svc,
		logger:  logging.Discard(),
		locks:   idLocks{m: make(map[int64]*idLock)},
		touched: make(map[int64]uint64),
		removed: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns a copy of the local collection in order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find returns the local record for id.
func (s *Store) Find(id int64) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return service.Task{}, false
	}
	return s.tasks[i], true
}

// Page returns the paging metadata of the last applied fetch, without content.
func (s *Store) Page() service.PagedResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Loading reports whether any remote call is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Err returns the last recorded error.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Clear empties the collection and resets paging metadata without any remote
// call. Fetches in flight are discarded when they resolve.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq++
	s.tasks = nil
	s.meta = service.PagedResponse{}
	s.lastErr = nil
}

// FetchPage replaces the collection with one page. On failure the previous
// collection stays and the error is recorded. If a newer fetch (or Clear)
// started meanwhile, or ctx was cancelled, the response is returned but
// neither it nor its error is applied.
func (s *Store) FetchPage(ctx context.Context, req service.PageRequest) (service.PagedResponse, error) {
	seq, start := s.beginFetch()
	page, err := s.svc.ListTodos(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	current := s.currentLocked(ctx, seq)
	if err != nil {
		if current {
			s.lastErr = err
		}
		s.logger.Debug("fetch page failed", "page", req.Page, "query", req.Query, "err", err)
		return service.PagedResponse{}, err
	}
	if !current {
		s.logger.Debug("discarding stale page", "page", req.Page, "query", req.Query)
		return page, nil
	}
	s.tasks = s.reconcileLocked(page.Content, start)
	s.meta = page
	s.meta.Content = nil
	s.lastErr = nil
	return page, nil
}

// FetchAll walks every page and replaces the collection with the union.
func (s *Store) FetchAll(ctx context.Context, req service.PageRequest) ([]service.Task, error) {
	if req.Size <= 0 {
		req.Size = DefaultFetchAllSize
	}
	seq, start := s.beginFetch()

	var all []service.Task
	var last service.PagedResponse
	var err error
	for req.Page = 0; ; req.Page++ {
		last, err = s.svc.ListTodos(ctx, req)
		if err != nil {
			break
		}
		all = append(all, last.Content...)
		if last.Last || len(last.Content) == 0 || req.Page+1 >= last.TotalPages {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	current := s.currentLocked(ctx, seq)
	if err != nil {
		if current {
			s.lastErr = err
		}
		return nil, err
	}
	if current {
		s.tasks = s.reconcileLocked(all, start)
		s.meta = service.PagedResponse{
			Page:          0,
			Size:          len(all),
			TotalElements: int64(len(all)),
			TotalPages:    1,
			First:         true,
			Last:          true,
		}
		if len(all) == 0 {
			s.meta.TotalPages = 0
		}
		s.lastErr = nil
	}
	return all, nil
}

// FetchCompleted replaces the collection with every task whose completion
// flag equals completed.
func (s *Store) FetchCompleted(ctx context.Context, completed bool) ([]service.Task, error) {
	seq, start := s.beginFetch()
	tasks, err := s.svc.TodosByCompleted(ctx, completed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	current := s.currentLocked(ctx, seq)
	if err != nil {
		if current {
			s.lastErr = err
		}
		return nil, err
	}
	if current {
		s.tasks = s.reconcileLocked(tasks, start)
		s.meta = service.PagedResponse{Size: len(tasks), TotalElements: int64(len(tasks)), First: true, Last: true}
		if len(tasks) > 0 {
			s.meta.TotalPages = 1
		}
		s.lastErr = nil
	}
	return tasks, nil
}

// Load fetches a single task and inserts or replaces it locally.
func (s *Store) Load(ctx context.Context, id int64) (service.Task, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	start := s.begin()
	task, err := s.svc.GetTodo(ctx, id)
	return s.settle(start, id, task, err)
}

// Create persists draft and appends the server's record. Nothing is inserted
// before the server confirms.
func (s *Store) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := draft.Validate(); err != nil {
		return service.Task{}, s.fail(err)
	}

	start := s.begin()
	task, err := s.svc.CreateTodo(ctx, draft)
	if err != nil {
		return s.settle(start, 0, task, err)
	}

	unlock := s.locks.lock(task.ID)
	defer unlock()
	return s.settle(start, task.ID, task, nil)
}

// Update merges patch onto the current record and sends the result. The
// local entry is replaced with the server's answer, never with the merge.
// If the record is not held locally it is fetched first.
func (s *Store) Update(ctx context.Context, id int64, patch service.Patch) (service.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return service.Task{}, s.fail(&service.ValidationError{Field: "title", Reason: "must not be empty"})
	}

	unlock := s.locks.lock(id)
	defer unlock()

	start := s.begin()
	base, ok := s.Find(id)
	if !ok {
		fetched, err := s.svc.GetTodo(ctx, id)
		if err != nil {
			return s.settle(start, id, service.Task{}, err)
		}
		base = fetched
	}
	task, err := s.svc.UpdateTodo(ctx, id, patch.Apply(base))
	return s.settle(start, id, task, err)
}

// ToggleCompleted flips the completion flag of a locally held task. The
// current value is read under the id's lock immediately before sending.
func (s *Store) ToggleCompleted(ctx context.Context, id int64) (service.Task, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	base, ok := s.Find(id)
	if !ok {
		return service.Task{}, s.fail(fmt.Errorf("task %d: %w", id, service.ErrNotFound))
	}
	completed := !base.Completed

	start := s.begin()
	task, err := s.svc.UpdateTodo(ctx, id, service.Patch{Completed: &completed}.Apply(base))
	return s.settle(start, id, task, err)
}

// Remove deletes a task. Confirmation is the caller's concern. On failure the
// record is retained.
func (s *Store) Remove(ctx context.Context, id int64) error {
	unlock := s.locks.lock(id)
	defer unlock()

	s.begin()
	err := s.svc.DeleteTodo(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.lastErr = err
		s.logger.Debug("remove failed", "id", id, "err", err)
		return err
	}
	s.gen++
	s.removed[id] = s.gen
	delete(s.touched, id)
	if i := s.indexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.logger.Debug("removed task", "id", id)
	return nil
}

// currentLocked reports whether the fetch numbered seq may still change
// state: no newer fetch or Clear started and its context was not cancelled.
func (s *Store) currentLocked(ctx context.Context, seq uint64) bool {
	return seq == s.fetchSeq && ctx.Err() == nil
}

func (s *Store) beginFetch() (seq, start uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
	s.fetchSeq++
	return s.fetchSeq, s.gen
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
	return s.gen
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	return err
}

// settle finishes a single-record call started at generation start.
func (s *Store) settle(start uint64, id int64, task service.Task, err error) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		s.lastErr = err
		s.logger.Debug("task call failed", "id", id, "err", err)
		return service.Task{}, err
	}
	if s.removed[task.ID] > start {
		s.logger.Debug("dropping response for removed task", "id", task.ID)
		return task, nil
	}
	s.gen++
	s.touched[task.ID] = s.gen
	if i := s.indexLocked(task.ID); i >= 0 {
		s.tasks[i] = task
	} else {
		s.tasks = append(s.tasks, task)
	}
	return task, nil
}

// reconcileLocked builds the new collection from fetched content. Records
// removed or changed after the fetch began keep their newer local state.
func (s *Store) reconcileLocked(content []service.Task, start uint64) []service.Task {
	out := make([]service.Task, 0, len(content))
	for _, t := range content {
		if s.removed[t.ID] > start {
			continue
		}
		if s.touched[t.ID] > start {
			if i := s.indexLocked(t.ID); i >= 0 {
				t = s.tasks[i]
			}
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) indexLocked(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
