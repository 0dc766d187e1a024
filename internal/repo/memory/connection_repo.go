package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/steveyiyo/tutor-relay/pkg/types"
)

type Connection struct {
	ID           string
	RemoteAddr   string
	UserAgent    string
	ConnectedAt  time.Time
	LastActivity time.Time
	MessageCount int64
	LastProgress *types.ProgressUpdate
}

type entry struct {
	mu   sync.Mutex
	conn Connection
}

// ConnectionRepo holds one entry per open socket. Entries are only mutated
// by their own connection's handlers.
type ConnectionRepo struct {
	m      sync.Map
	active atomic.Int64
	total  atomic.Int64
}

func NewConnectionRepo() *ConnectionRepo {
	return &ConnectionRepo{}
}

func (r *ConnectionRepo) Add(c Connection) {
	if _, loaded := r.m.LoadOrStore(c.ID, &entry{conn: c}); loaded {
		return
	}
	r.active.Add(1)
	r.total.Add(1)
}

// Get returns a copy of the stored record.
func (r *ConnectionRepo) Get(id string) (Connection, bool) {
	e, ok := r.load(id)
	if !ok {
		return Connection{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn, true
}

func (r *ConnectionRepo) Touch(id string, at time.Time) {
	e, ok := r.load(id)
	if !ok {
		return
	}
	e.mu.Lock()
	e.conn.MessageCount++
	e.conn.LastActivity = at
	e.mu.Unlock()
}

func (r *ConnectionRepo) RecordProgress(id string, p types.ProgressUpdate) {
	e, ok := r.load(id)
	if !ok {
		return
	}
	e.mu.Lock()
	e.conn.LastProgress = &p
	e.mu.Unlock()
}

// Remove deletes the entry and returns its final state.
func (r *ConnectionRepo) Remove(id string) (Connection, bool) {
	v, ok := r.m.LoadAndDelete(id)
	if !ok {
		return Connection{}, false
	}
	r.active.Add(-1)
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn, true
}

func (r *ConnectionRepo) Active() int64 { return r.active.Load() }
func (r *ConnectionRepo) Total() int64  { return r.total.Load() }

func (r *ConnectionRepo) load(id string) (*entry, bool) {
	v, ok := r.m.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}
