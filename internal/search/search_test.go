package search_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"todoctl/internal/search"
	"todoctl/internal/service"
	"todoctl/internal/store"
	"todoctl/internal/testutil"
)

// fakeClock hands out timers that only fire when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) search.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// Fire runs every armed timer.
func (c *fakeClock) Fire() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func TestDebouncer_RunsLatestOnce(t *testing.T) {
	clock := &fakeClock{}
	d := search.NewDebouncer(time.Second, clock.AfterFunc)

	var ran []string
	for _, s := range []string{"a", "ab", "abc"} {
		s := s
		d.Schedule(func() { ran = append(ran, s) })
	}
	if clock.armed() != 1 {
		t.Fatalf("expected one armed timer, got %d", clock.armed())
	}
	clock.Fire()
	if len(ran) != 1 || ran[0] != "abc" {
		t.Errorf("expected only abc to run, got %v", ran)
	}
	if d.Pending() {
		t.Error("nothing should be pending after firing")
	}
}

func TestDebouncer_SupersededTimerIgnored(t *testing.T) {
	clock := &fakeClock{}
	d := search.NewDebouncer(time.Second, clock.AfterFunc)

	count := 0
	d.Schedule(func() { count++ })
	first := clock.timers[0]
	d.Schedule(func() { count += 10 })

	// The first timer fires despite having been stopped.
	first.f()
	if count != 0 {
		t.Fatalf("stale timer ran its callback, count=%d", count)
	}
	clock.Fire()
	if count != 10 {
		t.Errorf("expected latest callback only, count=%d", count)
	}
}

func TestDebouncer_CancelAndFlush(t *testing.T) {
	clock := &fakeClock{}
	d := search.NewDebouncer(time.Second, clock.AfterFunc)

	ran := 0
	d.Schedule(func() { ran++ })
	d.Cancel()
	clock.Fire()
	if ran != 0 {
		t.Errorf("cancelled callback ran")
	}
	if d.Flush() {
		t.Error("Flush with nothing pending should report false")
	}

	d.Schedule(func() { ran++ })
	if !d.Flush() {
		t.Fatal("expected Flush to run the pending callback")
	}
	clock.Fire()
	if ran != 1 {
		t.Errorf("expected exactly one run, got %d", ran)
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	d := search.NewDebouncer(5*time.Millisecond, nil)
	done := make(chan string, 3)
	d.Schedule(func() { done <- "first" })
	d.Schedule(func() { done <- "second" })

	select {
	case got := <-done:
		if got != "second" {
			t.Errorf("expected second, got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced callback never ran")
	}
}

func newController(t *testing.T, svc *testutil.FakeService, opts ...search.Option) (*search.Controller, *store.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	st := store.New(svc)
	opts = append([]search.Option{search.WithAfterFunc(clock.AfterFunc), search.WithPageSize(10)}, opts...)
	c := search.New(context.Background(), st, opts...)
	t.Cleanup(c.Close)
	return c, st, clock
}

func seed(svc *testutil.FakeService, n int, title string) {
	for i := 0; i < n; i++ {
		svc.AddTask(fmt.Sprintf("%s %d", title, i), false, nil)
	}
}

func TestController_DebouncesTyping(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 3, "abc")
	c, st, clock := newController(t, svc)

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("abc")
	if svc.CallCount("ListTodos") != 0 {
		t.Fatal("no fetch expected before the window elapses")
	}
	clock.Fire()

	if got := svc.CallCount("ListTodos"); got != 1 {
		t.Fatalf("expected exactly one search call, got %d", got)
	}
	if svc.LastPageRequest.Query != "abc" {
		t.Errorf("expected search for abc, got %q", svc.LastPageRequest.Query)
	}
	if len(st.Tasks()) != 3 {
		t.Errorf("expected 3 results, got %d", len(st.Tasks()))
	}
	state := c.State()
	if state.TotalElements != 3 || state.TotalPages != 1 {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestController_EmptyQueryShortCircuits(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 3, "task")
	c, st, clock := newController(t, svc)

	c.SetQuery("   ")
	clock.Fire()
	if svc.CallCount("ListTodos") != 0 {
		t.Error("blank query must not call the backend")
	}
	if len(st.Tasks()) != 0 {
		t.Error("expected empty collection")
	}
	if state := c.State(); state.TotalPages != 0 || state.TotalElements != 0 {
		t.Errorf("expected totals reset, got %+v", state)
	}
}

func TestController_EmptyQueryClearsResultsAndPending(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 3, "task")
	c, st, clock := newController(t, svc)

	c.SetQuery("task")
	clock.Fire()
	if len(st.Tasks()) != 3 {
		t.Fatalf("expected results, got %d", len(st.Tasks()))
	}

	c.SetQuery("tas")
	c.SetQuery("")
	clock.Fire()
	if svc.CallCount("ListTodos") != 1 {
		t.Errorf("pending search should have been cancelled, got %d calls", svc.CallCount("ListTodos"))
	}
	if len(st.Tasks()) != 0 || c.State().TotalPages != 0 {
		t.Errorf("expected cleared results, got %d tasks, state %+v", len(st.Tasks()), c.State())
	}
}

func TestController_SetPageClamps(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 25, "task")
	c, _, clock := newController(t, svc)

	c.SetQuery("task")
	clock.Fire()
	if c.State().TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %+v", c.State())
	}

	tests := []struct {
		name string
		page int
		want int
	}{
		{"in range", 1, 1},
		{"past end", 7, 2},
		{"negative", -3, 0},
		{"last", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := svc.CallCount("ListTodos")
			c.SetPage(tt.page)
			if svc.CallCount("ListTodos") != before+1 {
				t.Fatal("page change should fetch immediately")
			}
			if svc.LastPageRequest.Page != tt.want {
				t.Errorf("requested page %d, want %d", svc.LastPageRequest.Page, tt.want)
			}
			if svc.LastPageRequest.Query != "task" {
				t.Errorf("expected current query reused, got %q", svc.LastPageRequest.Query)
			}
			if c.State().Page != tt.want {
				t.Errorf("state page %d, want %d", c.State().Page, tt.want)
			}
		})
	}
}

func TestController_SetPageOnEmptyResult(t *testing.T) {
	svc := testutil.NewFakeService()
	c, st, clock := newController(t, svc)

	c.SetQuery("nothing")
	clock.Fire()
	c.SetPage(4)
	if svc.LastPageRequest.Page != 0 {
		t.Errorf("expected page 0 of empty result, got %d", svc.LastPageRequest.Page)
	}
	if len(st.Tasks()) != 0 {
		t.Error("expected empty page")
	}
}

func TestController_SetPageWithoutQuery(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 3, "task")
	c, _, _ := newController(t, svc)

	c.SetPage(2)
	if svc.CallCount("ListTodos") != 0 {
		t.Error("paging without a query must not call the backend")
	}
	if c.State().Page != 0 {
		t.Errorf("expected page 0, got %d", c.State().Page)
	}
}

func TestController_QueryResetsPage(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 25, "task")
	c, _, clock := newController(t, svc)

	c.SetQuery("task")
	clock.Fire()
	c.SetPage(2)
	c.SetQuery("task 1")
	clock.Fire()
	if svc.LastPageRequest.Page != 0 {
		t.Errorf("new query should start at page 0, got %d", svc.LastPageRequest.Page)
	}
}

func TestController_FetchErrorKeepsTotals(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 12, "task")
	c, st, clock := newController(t, svc)

	var states []search.State
	c.OnChange(func(s search.State) { states = append(states, s) })

	c.SetQuery("task")
	clock.Fire()
	svc.ListErr = &service.NetworkError{Op: "GET /api/todos", Err: errors.New("refused")}
	c.SetPage(1)

	state := c.State()
	if !service.IsNetwork(state.Err) {
		t.Fatalf("expected network error in state, got %v", state.Err)
	}
	if state.TotalPages != 2 || len(st.Tasks()) != 10 {
		t.Errorf("failed fetch should keep previous data, state %+v tasks %d", state, len(st.Tasks()))
	}
	if len(states) != 2 {
		t.Errorf("expected two change notifications, got %d", len(states))
	}
}

func TestController_FlushAndSort(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 2, "task")
	c, _, _ := newController(t, svc, search.WithSort("title", "ASC"))

	c.SetQuery("task")
	if !c.Pending() {
		t.Fatal("expected pending fetch")
	}
	if !c.Flush() {
		t.Fatal("expected Flush to run the fetch")
	}
	req := svc.LastPageRequest
	if req.SortBy != "title" || req.SortDir != "ASC" || req.Size != 10 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestController_CloseCancelsPending(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 2, "task")
	c, _, clock := newController(t, svc)

	c.SetQuery("task")
	c.Close()
	clock.Fire()
	c.SetPage(1)
	if svc.CallCount("ListTodos") != 0 {
		t.Error("closed controller must not fetch")
	}
}

func TestDebouncer_ZeroWindowRunsImmediately(t *testing.T) {
	clock := &fakeClock{}
	d := search.NewDebouncer(0, clock.AfterFunc)

	ran := 0
	d.Schedule(func() { ran++ })
	if ran != 1 {
		t.Errorf("expected immediate run, got %d", ran)
	}
	if len(clock.timers) != 0 {
		t.Error("zero window should not arm a timer")
	}
}

func TestDebouncer_FlushWaitsForRunning(t *testing.T) {
	clock := &fakeClock{}
	d := search.NewDebouncer(time.Second, clock.AfterFunc)

	started := make(chan struct{})
	release := make(chan struct{})
	finished := false
	d.Schedule(func() {
		close(started)
		<-release
		finished = true
	})
	go clock.Fire()
	<-started

	flushed := make(chan bool)
	go func() { flushed <- d.Flush() }()
	close(release)
	if <-flushed {
		t.Error("Flush should report nothing pending")
	}
	if !finished {
		t.Error("Flush returned before the running callback finished")
	}
}

// gatedFetcher holds FetchPage calls for chosen pages until released.
type gatedFetcher struct {
	*store.Store

	mu      sync.Mutex
	hold    map[int]chan struct{}
	arrived map[int]chan struct{}
}

func newGatedFetcher(st *store.Store) *gatedFetcher {
	return &gatedFetcher{Store: st, hold: map[int]chan struct{}{}, arrived: map[int]chan struct{}{}}
}

// gate makes the next fetch of page wait; it returns a channel closed once
// that fetch arrived and a release func.
func (g *gatedFetcher) gate(page int) (<-chan struct{}, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	hold, arrived := make(chan struct{}), make(chan struct{})
	g.hold[page], g.arrived[page] = hold, arrived
	return arrived, func() { close(hold) }
}

func (g *gatedFetcher) FetchPage(ctx context.Context, req service.PageRequest) (service.PagedResponse, error) {
	g.mu.Lock()
	hold, arrived := g.hold[req.Page], g.arrived[req.Page]
	delete(g.hold, req.Page)
	delete(g.arrived, req.Page)
	g.mu.Unlock()
	if hold != nil {
		close(arrived)
		<-hold
	}
	return g.Store.FetchPage(ctx, req)
}

func TestController_OverlappingPageChangesStayConsistent(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 25, "task")
	st := store.New(svc)
	g := newGatedFetcher(st)
	c := search.New(context.Background(), g, search.WithPageSize(10), search.WithDebounce(0))
	defer c.Close()

	c.SetQuery("task")
	if got := c.State().TotalPages; got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}

	arrived, release := g.gate(2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SetPage(2)
	}()
	<-arrived

	c.SetPage(1)
	release()
	<-done

	state := c.State()
	if state.Page != 1 {
		t.Errorf("expected the last requested page 1, got %d", state.Page)
	}
	if meta := st.Page(); meta.Page != state.Page {
		t.Errorf("controller reports page %d but store holds page %d", state.Page, meta.Page)
	}
	tasks := st.Tasks()
	if len(tasks) == 0 || tasks[0].ID != 15 {
		t.Errorf("expected page 1 content starting at id 15, got %+v", tasks)
	}
	if st.Err() != nil {
		t.Errorf("superseded fetch must not record an error, got %v", st.Err())
	}
}

func TestController_ClearDiscardsFetchInFlight(t *testing.T) {
	svc := testutil.NewFakeService()
	seed(svc, 25, "task")
	st := store.New(svc)
	g := newGatedFetcher(st)
	c := search.New(context.Background(), g, search.WithPageSize(10), search.WithDebounce(0))
	defer c.Close()

	c.SetQuery("task")
	arrived, release := g.gate(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SetPage(1)
	}()
	<-arrived

	c.SetQuery("")
	release()
	<-done

	if state := c.State(); state.TotalPages != 0 || state.Page != 0 {
		t.Errorf("expected cleared state, got %+v", state)
	}
	if len(st.Tasks()) != 0 {
		t.Errorf("expected empty store after clear, got %d tasks", len(st.Tasks()))
	}
}
