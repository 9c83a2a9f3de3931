package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID  = "trace_id"  // OpenTelemetry trace ID for request correlation
	KeySpanID   = "span_id"   // OpenTelemetry span ID for operation tracking
	KeyClientIP = "client_ip" // Client IP address, for the HTTP query API

	// ========================================================================
	// Route Information Manager
	// ========================================================================
	KeyCluster     = "cluster"      // Cluster name
	KeyBroker      = "broker"       // Broker name
	KeyBrokerID    = "broker_id"    // Broker id within a broker name group
	KeyAddress     = "address"      // Broker network address (ip:port)
	KeyTopic       = "topic"        // Topic name
	KeyDataVersion = "data_version" // DataVersion in string form, for tie-break diagnostics

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOperation  = "operation"   // Sub-operation type for complex operations
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ClientIP returns a slog.Attr for a client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ----------------------------------------------------------------------------
// Route Information Manager
// ----------------------------------------------------------------------------

// Cluster returns a slog.Attr for cluster name.
func Cluster(name string) slog.Attr {
	return slog.String(KeyCluster, name)
}

// Broker returns a slog.Attr for broker name.
func Broker(name string) slog.Attr {
	return slog.String(KeyBroker, name)
}

// BrokerID returns a slog.Attr for a broker id within a broker name group.
func BrokerID(id int64) slog.Attr {
	return slog.Int64(KeyBrokerID, id)
}

// Address returns a slog.Attr for a broker network address.
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, addr)
}

// Topic returns a slog.Attr for topic name.
func Topic(name string) slog.Attr {
	return slog.String(KeyTopic, name)
}

// DataVersionAttr returns a slog.Attr for a DataVersion's string form.
func DataVersionAttr(s string) slog.Attr {
	return slog.String(KeyDataVersion, s)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Operation returns a slog.Attr for sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}
