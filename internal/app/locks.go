package app

import "sync"

// lockRegistry hands out one mutex per tournament id. Every mutating
// engine operation runs under its tournament's mutex, which serializes
// check-then-act sequences like the court-capacity gate within this
// process. Cross-process coordination is out of scope. Entries are never
// evicted, so the registry grows with the number of distinct tournaments
// touched over the process lifetime; tournaments are never deleted and a
// mutex is a few dozen bytes, so there is nothing to reclaim.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *lockRegistry) get(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

var tournamentLocks = &lockRegistry{locks: make(map[string]*sync.Mutex)} //nolint:gochecknoglobals // process-wide serialization boundary
