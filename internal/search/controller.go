// Package search drives server-side search and pagination over a task
// store, debouncing query edits.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todoctl/internal/config"
	"todoctl/internal/logging"
	"todoctl/internal/service"
)

// Fetcher is the subset of the task store the controller drives.
type Fetcher interface {
	FetchPage(ctx context.Context, req service.PageRequest) (service.PagedResponse, error)
	Clear()
}

// State is a snapshot of the controller.
type State struct {
	Query         string
	Page          int
	TotalPages    int
	TotalElements int64
	Err           error
}

// Empty reports whether there is no active query.
func (s State) Empty() bool {
	return strings.TrimSpace(s.Query) == ""
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize fixes the page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithSort sets the sort field and direction sent with every fetch.
func WithSort(by, dir string) Option {
	return func(c *Controller) {
		c.sortBy, c.sortDir = by, dir
	}
}

// WithDebounce sets the quiet window for query edits.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.wait = d }
}

// WithAfterFunc replaces the timer source used for debouncing.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.after = f }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller holds the query and page index and keeps the fetcher's
// collection in step with them.
type Controller struct {
	ctx     context.Context
	fetcher Fetcher
	logger  *log.Logger

	size    int
	sortBy  string
	sortDir string
	wait    time.Duration
	after   AfterFunc
	bounce  *Debouncer

	mu            sync.Mutex
	query         string
	page          int
	totalPages    int
	totalElements int64
	err           error
	seq           uint64
	cancel        context.CancelFunc // cancels the fetch numbered seq
	closed        bool
	onChange      func(State)
}

// New creates a controller. Fetches run with ctx.
func New(ctx context.Context, f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		ctx:     ctx,
		fetcher: f,
		logger:  logging.Discard(),
		size:    config.DefaultPageSize,
		sortBy:  config.DefaultSortBy,
		sortDir: config.DefaultSortDir,
		wait:    config.DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bounce = NewDebouncer(c.wait, c.after)
	return c
}

// OnChange registers fn to be called after every settled fetch or clear.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// PageSize returns the fixed page size.
func (c *Controller) PageSize() int {
	return c.size
}

// Pending reports whether a debounced fetch is waiting.
func (c *Controller) Pending() bool {
	return c.bounce.Pending()
}

// SetQuery stores q, resets to the first page and schedules a fetch after
// the quiet window. A blank query clears the collection without a fetch.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = q
	c.page = 0
	c.mu.Unlock()

	if strings.TrimSpace(q) == "" {
		c.bounce.Cancel()
		c.clear()
		return
	}
	c.bounce.Schedule(func() { c.fetch(0) })
}

// SetPage moves to page p, clamped to the known page range, and fetches it
// immediately with the current query.
func (c *Controller) SetPage(p int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	blank := strings.TrimSpace(c.query) == ""
	if !blank {
		p = clamp(p, c.totalPages)
		c.page = p
	}
	c.mu.Unlock()

	c.bounce.Cancel()
	if blank {
		c.clear()
		return
	}
	c.fetch(p)
}

// NextPage moves one page forward.
func (c *Controller) NextPage() {
	c.SetPage(c.State().Page + 1)
}

// PrevPage moves one page back.
func (c *Controller) PrevPage() {
	c.SetPage(c.State().Page - 1)
}

// Flush runs a pending debounced fetch now.
func (c *Controller) Flush() bool {
	return c.bounce.Flush()
}

// Close cancels pending work. Later calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.supersedeLocked()
	c.mu.Unlock()
	c.bounce.Cancel()
}

// supersedeLocked invalidates the fetch in flight, if any. Its context is
// cancelled so the store neither applies its page nor records its error.
func (c *Controller) supersedeLocked() {
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) fetch(page int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.supersedeLocked()
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	req := service.PageRequest{
		Page:    page,
		Size:    c.size,
		SortBy:  c.sortBy,
		SortDir: c.sortDir,
		Query:   strings.TrimSpace(c.query),
	}
	c.mu.Unlock()

	defer cancel()
	if err := ctx.Err(); err != nil {
		return
	}
	c.logger.Debug("search fetch", "query", req.Query, "page", req.Page)
	resp, err := c.fetcher.FetchPage(ctx, req)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	if err != nil {
		c.err = err
	} else {
		c.err = nil
		c.page = resp.Page
		c.totalPages = resp.TotalPages
		c.totalElements = resp.TotalElements
	}
	st, fn := c.stateLocked(), c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

func (c *Controller) clear() {
	c.mu.Lock()
	c.supersedeLocked()
	c.page = 0
	c.totalPages = 0
	c.totalElements = 0
	c.err = nil
	st, fn := c.stateLocked(), c.onChange
	c.mu.Unlock()

	c.fetcher.Clear()
	if fn != nil {
		fn(st)
	}
}

func (c *Controller) stateLocked() State {
	return State{
		Query:         c.query,
		Page:          c.page,
		TotalPages:    c.totalPages,
		TotalElements: c.totalElements,
		Err:           c.err,
	}
}

func clamp(p, totalPages int) int {
	if p >= totalPages {
		p = totalPages - 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
