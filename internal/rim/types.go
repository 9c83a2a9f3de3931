package rim

// MasterID is the broker id reserved for the declared master of a broker
// group. The smallest id in a group is the master; id 0 is reserved for
// it by convention (spec §3 invariant 4, §6).
const MasterID int64 = 0

// DefaultBrokerChannelExpiredMillis is the default window after which a
// broker live entry is considered stale if no heartbeat refreshes it
// (spec §6).
const DefaultBrokerChannelExpiredMillis int64 = 120000

// Permission bits packed into QueueData.Perm (spec §3).
const (
	PermRead    uint32 = 1 << 0
	PermWrite   uint32 = 1 << 1
	PermInherit uint32 = 1 << 2
)

// SyncBrokerMemberGroupPrefix marks topics used for broker-group
// membership synchronization; these are excluded from acting-master
// promotion at pickup time (spec §4.3 step 5).
const SyncBrokerMemberGroupPrefix = "SYNC_BROKER_MEMBER_"

// QueueData is the queue configuration a single broker contributes to a
// topic. Equality compares every field (spec §3).
type QueueData struct {
	BrokerName     string
	WriteQueueNums int32
	ReadQueueNums  int32
	Perm           uint32
	TopicSysFlag   int32
}

// Equal reports whether q and o carry identical queue configuration.
func (q QueueData) Equal(o QueueData) bool {
	return q.BrokerName == o.BrokerName &&
		q.WriteQueueNums == o.WriteQueueNums &&
		q.ReadQueueNums == o.ReadQueueNums &&
		q.Perm == o.Perm &&
		q.TopicSysFlag == o.TopicSysFlag
}

// DataVersion is a broker-provided generation marker for its topic
// configuration. Equality is full structural equality; ordering (used
// only as a registration tie-break, spec §4.2 step 5) compares
// StateVersion alone.
type DataVersion struct {
	StateVersion int64
	Timestamp    int64
	Counter      int64
}

// Equal reports full structural equality between two versions.
func (d DataVersion) Equal(o DataVersion) bool {
	return d.StateVersion == o.StateVersion &&
		d.Timestamp == o.Timestamp &&
		d.Counter == o.Counter
}

// NewDataVersion returns the zero-value version used when a registration
// does not supply one (spec §4.2 step 9).
func NewDataVersion() DataVersion {
	return DataVersion{}
}

// BrokerAddrInfo identifies a concrete broker instance by cluster and
// address; it is the stable identity used across restarts on the same
// host:port (spec §3).
type BrokerAddrInfo struct {
	ClusterName string
	Addr        string
}

// BrokerData is a broker group's registration state: the ordered map of
// brokerId to address plus the group-level metadata. The smallest key in
// BrokerAddrs is the master (spec §3 invariant 4).
type BrokerData struct {
	ClusterName        string
	BrokerName         string
	BrokerAddrs        map[int64]string
	ZoneName           string
	EnableActingMaster bool
}

// Clone returns a deep copy of b, safe to hand to callers outside the
// lock (spec §9 "snapshots by clone").
func (b *BrokerData) Clone() *BrokerData {
	if b == nil {
		return nil
	}
	addrs := make(map[int64]string, len(b.BrokerAddrs))
	for k, v := range b.BrokerAddrs {
		addrs[k] = v
	}
	return &BrokerData{
		ClusterName:        b.ClusterName,
		BrokerName:         b.BrokerName,
		BrokerAddrs:        addrs,
		ZoneName:           b.ZoneName,
		EnableActingMaster: b.EnableActingMaster,
	}
}

// minBrokerID returns the smallest key present in BrokerAddrs, or 0 when
// the map is empty (spec §4.2 step 3).
func minBrokerID(addrs map[int64]string) int64 {
	first := true
	var min int64
	for id := range addrs {
		if first || id < min {
			min = id
			first = false
		}
	}
	if first {
		return 0
	}
	return min
}

// BrokerLiveInfo is the heartbeat state of a single broker instance.
type BrokerLiveInfo struct {
	LastUpdateTimestamp int64
	ExpireMillis        int64
	DataVersion         DataVersion
	HAServerAddr        string
}

// TopicConfig is the per-broker, per-topic configuration supplied on
// registration.
type TopicConfig struct {
	TopicName      string
	WriteQueueNums int32
	ReadQueueNums  int32
	Perm           uint32
	TopicSysFlag   int32
}

// TopicQueueMappingInfo is static topic sharding metadata, stored
// verbatim and merged by broker name (BName) into the mapping table.
type TopicQueueMappingInfo struct {
	BName          string
	TotalQueueNums int32
	Epoch          int64
}

// TopicConfigAndMappingSerializeWrapper carries everything a broker
// uploads on registration: its data version, topic configs keyed by
// topic name, and the static sharding map. Any field may be absent.
type TopicConfigAndMappingSerializeWrapper struct {
	DataVersion              DataVersion
	TopicConfigTable         map[string]TopicConfig
	TopicQueueMappingInfoMap map[string]TopicQueueMappingInfo
}

// RegisterBrokerResult is returned from a successful registration. A nil
// *RegisterBrokerResult (not an error) signals the out-of-order partial
// registration guard (spec §4.2 step 6). Present-but-empty fields are
// returned when the registering broker is itself the master or its
// master has no live entry (spec §4.2 step 11), and also to a stale
// registration (spec §4.2 step 5).
type RegisterBrokerResult struct {
	HaServerAddr string
	MasterAddr   string
}

// TopicRouteData is the assembled view returned by route pickup (spec §4.3).
type TopicRouteData struct {
	OrderTopicConf            string
	BrokerDatas               []*BrokerData
	QueueDatas                []QueueData
	FilterServerTable         map[string][]string
	TopicQueueMappingByBroker map[string]TopicQueueMappingInfo
}

// ClusterInfo is the deep-cloned snapshot returned by GetAllClusterInfo
// (spec §4.6).
type ClusterInfo struct {
	BrokerAddrTable  map[string]*BrokerData
	ClusterAddrTable map[string]map[string]struct{}
}
