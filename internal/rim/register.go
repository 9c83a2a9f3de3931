package rim

import (
	"time"

	"github.com/rocketmq-go/namesrv/internal/logger"
)

// RegisterBroker implements the registration algorithm of spec §4.2. It
// holds the write lock while it mutates the tables (and writes its log
// lines); min-broker-id listeners run only after the lock is released.
//
// A nil, nil-error result means the request was ignored (the out-of-order
// partial-registration guard, step 6). A non-nil result with empty
// fields is returned both to a stale caller that must re-sync (step 5)
// and, from step 11, to the master itself or to a slave whose master has
// no live entry.
func (r *RIM) RegisterBroker(
	clusterName string,
	brokerAddr string,
	brokerName string,
	brokerID int64,
	haServerAddr string,
	zoneName string,
	enableActingMaster bool,
	wrapper *TopicConfigAndMappingSerializeWrapper,
	filterServerList []string,
) (*RegisterBrokerResult, error) {
	// Registered before the unlock below, so it runs after the lock is
	// released: step 12's listeners never run under the write lock.
	var minIDEvent *MinBrokerIDChangedEvent
	var notify []MinBrokerIDListener
	defer func() {
		for _, l := range notify {
			l(*minIDEvent)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Step 1: cluster admission.
	members, ok := r.clusterAddrTable[clusterName]
	if !ok {
		members = make(map[string]struct{})
		r.clusterAddrTable[clusterName] = members
	}
	members[brokerName] = struct{}{}

	// Step 2: broker row upsert.
	brokerData, existed := r.brokerAddrTable[brokerName]
	registerFirst := !existed
	if existed {
		brokerData.EnableActingMaster = enableActingMaster
		brokerData.ZoneName = zoneName
	} else {
		brokerData = &BrokerData{
			ClusterName:        clusterName,
			BrokerName:         brokerName,
			BrokerAddrs:        make(map[int64]string),
			ZoneName:           zoneName,
			EnableActingMaster: enableActingMaster,
		}
		r.brokerAddrTable[brokerName] = brokerData
	}

	// Step 3: min-id snapshot, taken before any mutation this call makes.
	prevMinID := minBrokerID(brokerData.BrokerAddrs)
	minIDChanged := brokerID < prevMinID

	// Step 4: slave<->master swap cleanup — an address may occupy at
	// most one brokerId inside a group (invariant 5).
	for id, addr := range brokerData.BrokerAddrs {
		if addr == brokerAddr && id != brokerID {
			delete(brokerData.BrokerAddrs, id)
		}
	}

	// Step 5: conflict on same id, different address.
	if oldAddr, hasID := brokerData.BrokerAddrs[brokerID]; hasID && oldAddr != brokerAddr {
		oldKey := BrokerAddrInfo{ClusterName: clusterName, Addr: oldAddr}
		if oldLive, ok := r.brokerLiveTable[oldKey]; ok {
			incomingVersion := NewDataVersion()
			if wrapper != nil {
				incomingVersion = wrapper.DataVersion
			}
			if oldLive.DataVersion.StateVersion > incomingVersion.StateVersion {
				newKey := BrokerAddrInfo{ClusterName: clusterName, Addr: brokerAddr}
				delete(r.brokerLiveTable, newKey)
				logger.Warn("rejecting stale broker registration",
					logger.Cluster(clusterName), logger.Broker(brokerName), logger.BrokerID(brokerID),
					logger.Address(brokerAddr), "storedAddr", oldAddr)
				if r.metrics != nil {
					r.metrics.RegistrationRejectedStale(clusterName)
				}
				return &RegisterBrokerResult{}, nil
			}
		}
	}

	// Step 6: single-topic guard. The check window is: after step 4's
	// swap cleanup, before step 7's insert (spec §9 open question).
	_, hadID := brokerData.BrokerAddrs[brokerID]
	if !hadID && wrapper != nil && len(wrapper.TopicConfigTable) == 1 {
		logger.Warn("rejecting out-of-order partial broker registration",
			logger.Cluster(clusterName), logger.Broker(brokerName), logger.BrokerID(brokerID))
		if r.metrics != nil {
			r.metrics.RegistrationRejectedPartial(clusterName)
		}
		return nil, nil
	}

	// Step 7: record the address and classify the role.
	_, hadAddr := brokerData.BrokerAddrs[brokerID]
	brokerData.BrokerAddrs[brokerID] = brokerAddr
	if !hadAddr {
		registerFirst = true
	}

	isMaster := brokerID == MasterID
	isPrimeSlave := !isMaster && brokerID == minBrokerID(brokerData.BrokerAddrs)

	// Step 8: topic-config application, only for the master or the
	// prime slave.
	if (isMaster || isPrimeSlave) && wrapper != nil {
		if r.cfg.DeleteTopicWithBrokerRegistration && len(wrapper.TopicQueueMappingInfoMap) == 0 {
			r.pruneStaleTopics(brokerName, wrapper.TopicConfigTable)
		}

		changed := r.isBrokerTopicConfigChanged(clusterName, brokerAddr, wrapper.DataVersion)
		for topicName, tc := range wrapper.TopicConfigTable {
			if registerFirst || r.isTopicConfigChanged(topicName, brokerName, changed) {
				queueData := QueueData{
					BrokerName:     brokerName,
					WriteQueueNums: tc.WriteQueueNums,
					ReadQueueNums:  tc.ReadQueueNums,
					Perm:           tc.Perm,
					TopicSysFlag:   tc.TopicSysFlag,
				}
				if isPrimeSlave && enableActingMaster {
					queueData.Perm = queueData.Perm &^ PermWrite
				}
				r.upsertQueueData(topicName, brokerName, queueData)
			}
		}

		if changed || registerFirst {
			for topicName, mapping := range wrapper.TopicQueueMappingInfoMap {
				r.mergeTopicQueueMapping(topicName, mapping)
			}
		}
	}

	// Step 9: live table refresh.
	liveKey := BrokerAddrInfo{ClusterName: clusterName, Addr: brokerAddr}
	version := NewDataVersion()
	if wrapper != nil {
		version = wrapper.DataVersion
	}
	r.brokerLiveTable[liveKey] = &BrokerLiveInfo{
		LastUpdateTimestamp: nowMillis(),
		ExpireMillis:        DefaultBrokerChannelExpiredMillis,
		DataVersion:         version,
		HAServerAddr:        haServerAddr,
	}

	// Step 10: filter-server list.
	filterKey := BrokerAddrInfo{ClusterName: clusterName, Addr: brokerAddr}
	if len(filterServerList) == 0 {
		delete(r.filterServerTable, filterKey)
	} else {
		r.filterServerTable[filterKey] = append([]string(nil), filterServerList...)
	}

	// Step 11: result assembly.
	result := &RegisterBrokerResult{}
	if brokerID != MasterID {
		if masterAddr, ok := brokerData.BrokerAddrs[MasterID]; ok {
			masterKey := BrokerAddrInfo{ClusterName: clusterName, Addr: masterAddr}
			if masterLive, ok := r.brokerLiveTable[masterKey]; ok {
				result.HaServerAddr = masterLive.HAServerAddr
				result.MasterAddr = masterAddr
			}
		}
	}

	// Step 12: min-broker-id notification. The event is built here under
	// the lock and handed to the listeners by the deferred call at the
	// top of this method, after the write lock is released (spec §5).
	if minIDChanged && r.cfg.NotifyMinBrokerIdChanged && len(r.listeners) > 0 {
		minIDEvent = &MinBrokerIDChangedEvent{
			ClusterName:  clusterName,
			BrokerName:   brokerName,
			BrokerAddrs:  brokerData.Clone().BrokerAddrs,
			HaServerAddr: haServerAddr,
		}
		notify = append([]MinBrokerIDListener(nil), r.listeners...)
	}

	if r.metrics != nil {
		r.metrics.RegistrationAccepted(clusterName)
	}
	r.recordTableSizes()

	return result, nil
}

// pruneStaleTopics removes this broker's contribution from any topic it
// no longer advertises, dropping the topic row entirely when it becomes
// empty. newTopicConfigs is the broker's freshly reported TopicConfigTable
// (the "new" set is its key set, not the TopicQueueMappingInfoMap this
// method is gated on being empty — those are two different fields on the
// wrapper); the topics considered stale are those the broker previously
// contributed but newTopicConfigs no longer does — old \ new, not new \
// old (see DESIGN.md for why this direction was chosen over the source's
// literal new.difference(old)).
func (r *RIM) pruneStaleTopics(brokerName string, newTopicConfigs map[string]TopicConfig) {
	var stale []string
	for topic, brokers := range r.topicQueueTable {
		if _, stillServed := brokers[brokerName]; !stillServed {
			continue
		}
		if _, stillAdvertised := newTopicConfigs[topic]; stillAdvertised {
			continue
		}
		stale = append(stale, topic)
	}

	for _, topic := range stale {
		delete(r.topicQueueTable[topic], brokerName)
		if len(r.topicQueueTable[topic]) == 0 {
			delete(r.topicQueueTable, topic)
		}
		delete(r.topicQueueMappingInfoTable[topic], brokerName)
		if len(r.topicQueueMappingInfoTable[topic]) == 0 {
			delete(r.topicQueueMappingInfoTable, topic)
		}
	}
}

// upsertQueueData stores queueData for (topic, brokerName), logging when
// it replaces a structurally different prior value (spec §4.2 step 8).
func (r *RIM) upsertQueueData(topic, brokerName string, queueData QueueData) {
	brokers, ok := r.topicQueueTable[topic]
	if !ok {
		brokers = make(map[string]QueueData)
		r.topicQueueTable[topic] = brokers
	}

	if prior, existed := brokers[brokerName]; existed && !prior.Equal(queueData) {
		logger.Info("topic changed", logger.Topic(topic), logger.Broker(brokerName))
	}

	brokers[brokerName] = queueData
}

// mergeTopicQueueMapping merges a single (topic, mapping) pair into the
// static sharding table, keyed by the mapping's own broker name.
func (r *RIM) mergeTopicQueueMapping(topic string, mapping TopicQueueMappingInfo) {
	byBroker, ok := r.topicQueueMappingInfoTable[topic]
	if !ok {
		byBroker = make(map[string]TopicQueueMappingInfo)
		r.topicQueueMappingInfoTable[topic] = byBroker
	}
	byBroker[mapping.BName] = mapping
}

// nowMillis returns the current wall-clock time in milliseconds, as the
// monotonic heartbeat clock spec §3 calls for.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
