package rim

import "github.com/rocketmq-go/namesrv/internal/logger"

// UnregisterBroker removes a single broker instance, and — if that was
// the group's last address — the whole group: its BrokerData row,
// cluster membership, live and filter-server entries, and any
// topic-queue rows that no longer have a live peer (spec §4.5).
func (r *RIM) UnregisterBroker(clusterName, brokerAddr, brokerName string, brokerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(clusterName, brokerAddr, brokerName, brokerID)
	r.recordTableSizes()
}

func (r *RIM) unregisterLocked(clusterName, brokerAddr, brokerName string, brokerID int64) {
	liveKey := BrokerAddrInfo{ClusterName: clusterName, Addr: brokerAddr}
	delete(r.brokerLiveTable, liveKey)
	delete(r.filterServerTable, liveKey)

	bd, ok := r.brokerAddrTable[brokerName]
	if !ok {
		return
	}

	if addr, has := bd.BrokerAddrs[brokerID]; has && addr == brokerAddr {
		delete(bd.BrokerAddrs, brokerID)
	}

	if len(bd.BrokerAddrs) > 0 {
		return
	}

	delete(r.brokerAddrTable, brokerName)
	if members, ok := r.clusterAddrTable[clusterName]; ok {
		delete(members, brokerName)
		if len(members) == 0 {
			delete(r.clusterAddrTable, clusterName)
		}
	}

	for topic, brokers := range r.topicQueueTable {
		if r.brokerHasLivePeer(brokers, brokerName) {
			continue
		}
		delete(brokers, brokerName)
		if len(brokers) == 0 {
			delete(r.topicQueueTable, topic)
		}
	}

	for topic, mapping := range r.topicQueueMappingInfoTable {
		delete(mapping, brokerName)
		if len(mapping) == 0 {
			delete(r.topicQueueMappingInfoTable, topic)
		}
	}
}

// brokerHasLivePeer reports whether brokers[brokerName] still names a row
// in brokerAddrTable — i.e. whether the topic should keep referencing
// brokerName at all. Once the broker's group row is gone (the caller
// only reaches here after deleting it), the answer is always false; this
// exists as a named predicate for readability and as the hook a future
// finer-grained "live peer" check (rather than "row exists") would
// extend.
func (r *RIM) brokerHasLivePeer(brokers map[string]QueueData, brokerName string) bool {
	_, stillServed := brokers[brokerName]
	if !stillServed {
		return false
	}
	_, stillRegistered := r.brokerAddrTable[brokerName]
	return stillRegistered
}

// ScanNotActiveBroker evicts every live entry whose last heartbeat is
// older than its expiry window, unregistering the owning broker the same
// way UnregisterBroker would, and returns the number of broker instances
// evicted (spec §4.5).
func (r *RIM) ScanNotActiveBroker() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := nowMillis()
	type victim struct {
		key BrokerAddrInfo
	}
	var expired []victim
	for key, live := range r.brokerLiveTable {
		if now-live.LastUpdateTimestamp > live.ExpireMillis {
			expired = append(expired, victim{key: key})
		}
	}

	evicted := 0
	for _, v := range expired {
		brokerName, brokerID, ok := r.findBrokerByAddr(v.key.ClusterName, v.key.Addr)
		if !ok {
			delete(r.brokerLiveTable, v.key)
			delete(r.filterServerTable, v.key)
			continue
		}
		logger.Warn("scavenging inactive broker",
			logger.Cluster(v.key.ClusterName), logger.Address(v.key.Addr), logger.Broker(brokerName), logger.BrokerID(brokerID))
		r.unregisterLocked(v.key.ClusterName, v.key.Addr, brokerName, brokerID)
		if r.metrics != nil {
			r.metrics.BrokerScavenged(v.key.ClusterName)
		}
		evicted++
	}

	if evicted > 0 {
		r.recordTableSizes()
	}

	return evicted
}

// findBrokerByAddr locates the (brokerName, brokerId) pair that owns
// addr within clusterName, scanning the broker address table. Used only
// by the scavenger, which runs far less often than registration/pickup.
func (r *RIM) findBrokerByAddr(clusterName, addr string) (string, int64, bool) {
	for name, bd := range r.brokerAddrTable {
		if bd.ClusterName != clusterName {
			continue
		}
		for id, a := range bd.BrokerAddrs {
			if a == addr {
				return name, id, true
			}
		}
	}
	return "", 0, false
}
