package store

import "sync"

// idLocks serializes operations per task id.
type idLocks struct {
	mu sync.Mutex
	m  map[int64]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until id is free and returns its unlock function.
func (l *idLocks) lock(id int64) func() {
	l.mu.Lock()
	e := l.m[id]
	if e == nil {
		e = &idLock{}
		l.m[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
