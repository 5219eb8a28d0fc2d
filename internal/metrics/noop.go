package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncListCacheHit is a no-op.
func (n *NoopRecorder) IncListCacheHit() {}

// IncListCacheMiss is a no-op.
func (n *NoopRecorder) IncListCacheMiss() {}

// IncListingCreated is a no-op.
func (n *NoopRecorder) IncListingCreated() {}

// IncListingUpdated is a no-op.
func (n *NoopRecorder) IncListingUpdated() {}

// IncListingDeleted is a no-op.
func (n *NoopRecorder) IncListingDeleted() {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginFailed is a no-op.
func (n *NoopRecorder) IncLoginFailed() {}
