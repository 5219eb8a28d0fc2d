// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// List view cache metrics
	IncListCacheHit()
	IncListCacheMiss()

	// Listing management metrics
	IncListingCreated()
	IncListingUpdated()
	IncListingDeleted()

	// Account metrics
	IncUserRegistered()
	IncLoginFailed()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
