package rim

import "errors"

// Sentinel errors of the route information manager, for comparison with
// errors.Is. No method of RIM returns any of them: every RIM operation
// returns a nil error, and the ignored, stale and unknown-topic cases are
// reported through nil or empty result values instead.
var (
	// ErrTopicNotFound names a topic with no entry in the topic-queue
	// table. PickupTopicRouteData reports that case as a nil route with a
	// nil error.
	ErrTopicNotFound = errors.New("rim: topic not found")

	// ErrBrokerNotFound names a broker name that has no row in the broker
	// address table.
	ErrBrokerNotFound = errors.New("rim: broker not found")

	// ErrClusterNotFound names a cluster name with no membership row.
	ErrClusterNotFound = errors.New("rim: cluster not found")

	// ErrInvariantViolation names a state the six tables should never be
	// able to reach under the public API. The RIM does not check its
	// invariants at run time, so it never reports this error.
	ErrInvariantViolation = errors.New("rim: invariant violation")
)
