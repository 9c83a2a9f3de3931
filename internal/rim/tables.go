// Package rim implements the Route Information Manager: the in-memory
// control-plane data structure a message-broker name service uses to
// track which brokers own which topics, and to hand that mapping to
// producers and consumers on lookup.
//
// The six tables below are guarded by a single RWMutex. No external
// package may hold a reference into a table after releasing the lock; the
// public methods on RIM are the only way to read or mutate them (spec
// §4.1, §5).
package rim

import (
	"sync"

	"github.com/rocketmq-go/namesrv/pkg/metrics"
)

// Config controls the three registration/pickup behaviors exposed to the
// name-service operator (spec §6).
type Config struct {
	// DeleteTopicWithBrokerRegistration enables topic pruning when a
	// broker re-registers with an empty topic-queue-mapping map
	// (spec §4.2 step 8).
	DeleteTopicWithBrokerRegistration bool

	// SupportActingMaster enables pickup-time acting-master promotion
	// (spec §4.3 step 5).
	SupportActingMaster bool

	// NotifyMinBrokerIdChanged emits a notification when a registration
	// lowers the minimum broker id in a group (spec §4.2 step 12).
	NotifyMinBrokerIdChanged bool
}

// MinBrokerIDChangedEvent is delivered to listeners registered via
// OnMinBrokerIDChanged when a registration lowers the minimum broker id
// of a group. The RIM itself does not decide what to do with this; it
// only delivers the notification after releasing the lock, per spec §5.
type MinBrokerIDChangedEvent struct {
	ClusterName string
	BrokerName  string
	BrokerAddrs map[int64]string
	HaServerAddr string
}

// MinBrokerIDListener receives MinBrokerIDChangedEvent notifications.
// Implementations must not block; the RIM dispatches on the caller's
// goroutine after releasing the write lock.
type MinBrokerIDListener func(MinBrokerIDChangedEvent)

// RIM owns the six tables and the configuration record that governs
// registration and pickup behavior. Zero value is not usable; use New.
type RIM struct {
	mu sync.RWMutex

	// topicQueueTable: topic -> (brokerName -> QueueData). Spec §3.
	topicQueueTable map[string]map[string]QueueData

	// brokerAddrTable: brokerName -> BrokerData. Spec §3.
	brokerAddrTable map[string]*BrokerData

	// clusterAddrTable: clusterName -> set of brokerName. Spec §3.
	clusterAddrTable map[string]map[string]struct{}

	// brokerLiveTable: BrokerAddrInfo -> BrokerLiveInfo. Spec §3.
	brokerLiveTable map[BrokerAddrInfo]*BrokerLiveInfo

	// filterServerTable: BrokerAddrInfo -> ordered filter-server
	// addresses. Absent key means "none"; never holds an empty slice
	// (spec §3 invariant 6).
	filterServerTable map[BrokerAddrInfo][]string

	// topicQueueMappingInfoTable: topic -> (brokerName ->
	// TopicQueueMappingInfo). Spec §3.
	topicQueueMappingInfoTable map[string]map[string]TopicQueueMappingInfo

	cfg       Config
	listeners []MinBrokerIDListener
	metrics   metrics.RIMMetrics
}

// New creates an empty route information manager configured per cfg. It
// picks up whatever RIMMetrics metrics.NewRIMMetrics() returns at
// construction time (nil when metrics are disabled), so metrics.InitRegistry
// must run first if the caller wants recordings.
func New(cfg Config) *RIM {
	return &RIM{
		topicQueueTable:            make(map[string]map[string]QueueData),
		brokerAddrTable:            make(map[string]*BrokerData),
		clusterAddrTable:           make(map[string]map[string]struct{}),
		brokerLiveTable:            make(map[BrokerAddrInfo]*BrokerLiveInfo),
		filterServerTable:          make(map[BrokerAddrInfo][]string),
		topicQueueMappingInfoTable: make(map[string]map[string]TopicQueueMappingInfo),
		cfg:                        cfg,
		metrics:                    metrics.NewRIMMetrics(),
	}
}

// recordTableSizes reports the current table cardinalities to metrics.
// Caller must hold at least the read lock.
func (r *RIM) recordTableSizes() {
	if r.metrics == nil {
		return
	}
	r.metrics.SetTableSizes(len(r.topicQueueTable), len(r.brokerAddrTable), len(r.clusterAddrTable), len(r.brokerLiveTable))
}

// OnMinBrokerIDChanged registers a listener invoked whenever a
// registration lowers a group's minimum broker id and
// NotifyMinBrokerIdChanged is enabled. Must be called before the RIM is
// shared across goroutines, or under external synchronization.
func (r *RIM) OnMinBrokerIDChanged(l MinBrokerIDListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// CountTopics returns the number of topics currently present in the
// topic-queue table. Exposed for metrics and operator tooling.
func (r *RIM) CountTopics() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topicQueueTable)
}

// CountBrokers returns the number of distinct broker names registered.
func (r *RIM) CountBrokers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.brokerAddrTable)
}

// CountClusters returns the number of distinct clusters registered.
func (r *RIM) CountClusters() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clusterAddrTable)
}

// CountLiveBrokers returns the number of live broker-instance entries.
func (r *RIM) CountLiveBrokers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.brokerLiveTable)
}
