package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for route-information-manager operations.
const (
	AttrCluster     = "rim.cluster"
	AttrBroker      = "rim.broker"
	AttrBrokerID    = "rim.broker_id"
	AttrBrokerAddr  = "rim.broker_addr"
	AttrTopic       = "rim.topic"
	AttrStateVer    = "rim.state_version"
	AttrOperation   = "rim.operation"
	AttrFound       = "rim.found"
	AttrEvictedCount = "rim.evicted_count"
)

// Span names for RIM operations.
const (
	SpanRegisterBroker      = "rim.register_broker"
	SpanUnregisterBroker    = "rim.unregister_broker"
	SpanPickupTopicRoute    = "rim.pickup_topic_route"
	SpanScanNotActiveBroker = "rim.scan_not_active_broker"
)

// Cluster returns an attribute for the cluster name.
func Cluster(name string) attribute.KeyValue {
	return attribute.String(AttrCluster, name)
}

// Broker returns an attribute for the broker name (a broker group, not a
// single instance).
func Broker(name string) attribute.KeyValue {
	return attribute.String(AttrBroker, name)
}

// BrokerID returns an attribute for a broker's numeric id within its
// group (0 is the declared master).
func BrokerID(id int64) attribute.KeyValue {
	return attribute.Int64(AttrBrokerID, id)
}

// BrokerAddr returns an attribute for a broker instance's address.
func BrokerAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrBrokerAddr, addr)
}

// Topic returns an attribute for a topic name.
func Topic(name string) attribute.KeyValue {
	return attribute.String(AttrTopic, name)
}

// StateVersion returns an attribute for a DataVersion's state version.
func StateVersion(v int64) attribute.KeyValue {
	return attribute.Int64(AttrStateVer, v)
}

// Found returns an attribute for whether a lookup succeeded.
func Found(found bool) attribute.KeyValue {
	return attribute.Bool(AttrFound, found)
}

// EvictedCount returns an attribute for the number of brokers a
// scavenger pass removed.
func EvictedCount(n int) attribute.KeyValue {
	return attribute.Int(AttrEvictedCount, n)
}

// StartRIMSpan starts a span for a route-information-manager operation.
func StartRIMSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
}
