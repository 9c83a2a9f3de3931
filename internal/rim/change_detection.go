package rim

// isBrokerTopicConfigChanged reports whether the broker at (clusterName,
// brokerAddr) has a stored DataVersion absent or not structurally equal
// to incoming. Equality ignores no field (spec §4.4). Caller must hold
// at least the read lock.
func (r *RIM) isBrokerTopicConfigChanged(clusterName, brokerAddr string, incoming DataVersion) bool {
	key := BrokerAddrInfo{ClusterName: clusterName, Addr: brokerAddr}
	live, ok := r.brokerLiveTable[key]
	if !ok {
		return true
	}
	return !live.DataVersion.Equal(incoming)
}

// isTopicConfigChanged reports whether the topic-queue row for topic
// should be treated as changed for brokerName: true when the broker-level
// config already changed, when the topic row is absent or empty, or when
// the topic row does not yet contain brokerName (spec §4.4).
func (r *RIM) isTopicConfigChanged(topic, brokerName string, brokerLevelChanged bool) bool {
	if brokerLevelChanged {
		return true
	}
	brokers, ok := r.topicQueueTable[topic]
	if !ok || len(brokers) == 0 {
		return true
	}
	_, has := brokers[brokerName]
	return !has
}
