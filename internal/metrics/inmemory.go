package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ListCacheHits    uint64
	ListCacheMisses  uint64
	ListingsCreated  uint64
	ListingsUpdated  uint64
	ListingsDeleted  uint64
	UsersRegistered  uint64
	LoginsFailed     uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	listCacheHits   uint64
	listCacheMisses uint64
	listingsCreated uint64
	listingsUpdated uint64
	listingsDeleted uint64
	usersRegistered uint64
	loginsFailed    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ListCacheHits:   atomic.LoadUint64(&m.listCacheHits),
		ListCacheMisses: atomic.LoadUint64(&m.listCacheMisses),
		ListingsCreated: atomic.LoadUint64(&m.listingsCreated),
		ListingsUpdated: atomic.LoadUint64(&m.listingsUpdated),
		ListingsDeleted: atomic.LoadUint64(&m.listingsDeleted),
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginsFailed:    atomic.LoadUint64(&m.loginsFailed),
	}
}

// IncListCacheHit increments the list cache hit counter.
func (m *InMemoryRecorder) IncListCacheHit() {
	atomic.AddUint64(&m.listCacheHits, 1)
}

// IncListCacheMiss increments the list cache miss counter.
func (m *InMemoryRecorder) IncListCacheMiss() {
	atomic.AddUint64(&m.listCacheMisses, 1)
}

// IncListingCreated increments the listings created counter.
func (m *InMemoryRecorder) IncListingCreated() {
	atomic.AddUint64(&m.listingsCreated, 1)
}

// IncListingUpdated increments the listings updated counter.
func (m *InMemoryRecorder) IncListingUpdated() {
	atomic.AddUint64(&m.listingsUpdated, 1)
}

// IncListingDeleted increments the listings deleted counter.
func (m *InMemoryRecorder) IncListingDeleted() {
	atomic.AddUint64(&m.listingsDeleted, 1)
}

// IncUserRegistered increments the registrations counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginFailed increments the failed logins counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}
