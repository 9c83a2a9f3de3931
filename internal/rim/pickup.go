package rim

import "strings"

// PickupTopicRouteData assembles the route view for topic, or returns
// (nil, nil) when the topic is unknown (spec §4.3). It holds the read
// lock only; the single rewrite step (acting-master promotion) mutates
// cloned BrokerData, never the RIM's own tables.
func (r *RIM) PickupTopicRouteData(topic string) (*TopicRouteData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brokers, ok := r.topicQueueTable[topic]
	if !ok {
		if r.metrics != nil {
			r.metrics.PickupRequested(topic, false)
		}
		return nil, nil
	}

	queueDatas := make([]QueueData, 0, len(brokers))
	for _, qd := range brokers {
		queueDatas = append(queueDatas, qd)
	}
	foundQueue := true

	brokerDatas := make([]*BrokerData, 0, len(brokers))
	filterServerTable := make(map[string][]string)
	foundBroker := false

	for brokerName := range brokers {
		bd, ok := r.brokerAddrTable[brokerName]
		if !ok {
			continue
		}
		clone := bd.Clone()
		brokerDatas = append(brokerDatas, clone)
		foundBroker = true

		for _, addr := range clone.BrokerAddrs {
			key := BrokerAddrInfo{ClusterName: clone.ClusterName, Addr: addr}
			if servers, ok := r.filterServerTable[key]; ok {
				filterServerTable[addr] = append([]string(nil), servers...)
			}
		}
	}

	if !foundQueue || !foundBroker {
		if r.metrics != nil {
			r.metrics.PickupRequested(topic, false)
		}
		return nil, nil
	}

	route := &TopicRouteData{
		BrokerDatas:       brokerDatas,
		QueueDatas:        queueDatas,
		FilterServerTable: filterServerTable,
	}

	if mapping, ok := r.topicQueueMappingInfoTable[topic]; ok {
		route.TopicQueueMappingByBroker = make(map[string]TopicQueueMappingInfo, len(mapping))
		for k, v := range mapping {
			route.TopicQueueMappingByBroker[k] = v
		}
	} else {
		route.TopicQueueMappingByBroker = map[string]TopicQueueMappingInfo{}
	}

	if r.cfg.SupportActingMaster &&
		!strings.HasPrefix(topic, SyncBrokerMemberGroupPrefix) &&
		len(route.BrokerDatas) > 0 && len(route.QueueDatas) > 0 {
		promoteActingMasters(route)
	}

	if r.metrics != nil {
		r.metrics.PickupRequested(topic, true)
	}

	return route, nil
}

// promoteActingMasters rewrites, in place, any cloned BrokerData in route
// that has entries but no declared master and is acting-master eligible,
// promoting its smallest-id entry to MasterID when that broker's queue is
// not writeable (spec §4.3 step 5). The same write-mask/promote duality
// as registration time keeps client-observed state consistent during
// failover (spec §9).
func promoteActingMasters(route *TopicRouteData) {
	queueByBroker := make(map[string]QueueData, len(route.QueueDatas))
	for _, qd := range route.QueueDatas {
		queueByBroker[qd.BrokerName] = qd
	}

	for _, bd := range route.BrokerDatas {
		if len(bd.BrokerAddrs) == 0 || !bd.EnableActingMaster {
			continue
		}
		if _, hasMaster := bd.BrokerAddrs[MasterID]; hasMaster {
			continue
		}
		qd, ok := queueByBroker[bd.BrokerName]
		if !ok || qd.Perm&PermWrite != 0 {
			continue
		}

		smallest := minBrokerID(bd.BrokerAddrs)
		addr := bd.BrokerAddrs[smallest]
		delete(bd.BrokerAddrs, smallest)
		bd.BrokerAddrs[MasterID] = addr
	}
}

// GetAllClusterInfo returns a deep-cloned snapshot of the broker address
// and cluster address tables (spec §4.6).
func (r *RIM) GetAllClusterInfo() *ClusterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brokerAddrTable := make(map[string]*BrokerData, len(r.brokerAddrTable))
	for name, bd := range r.brokerAddrTable {
		brokerAddrTable[name] = bd.Clone()
	}

	clusterAddrTable := make(map[string]map[string]struct{}, len(r.clusterAddrTable))
	for cluster, members := range r.clusterAddrTable {
		set := make(map[string]struct{}, len(members))
		for m := range members {
			set[m] = struct{}{}
		}
		clusterAddrTable[cluster] = set
	}

	return &ClusterInfo{
		BrokerAddrTable:  brokerAddrTable,
		ClusterAddrTable: clusterAddrTable,
	}
}
