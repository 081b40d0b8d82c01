package metrics

import (
	"go.uber.org/atomic"
)

// IngestMetrics defines metrics over the entire runtime of the ingest server.
// The kilometers and the accepted message count live in the tally, these are the
// additional counters the tally does not need to know about.
type IngestMetrics struct {
	// The number of accepted TCP connections.
	AcceptedConnections atomic.Uint64
	// The number of failed accept attempts.
	AcceptErrors atomic.Uint64
	// The number of received messages, accepted or not.
	ReceivedMessages atomic.Uint64
	// The number of messages answered with a rejection.
	RejectedMessages atomic.Uint64
	// The number of connections which ended with a receive error.
	ReceiveErrors atomic.Uint64
	// The number of replies which could not be sent.
	SendErrors atomic.Uint64
	// The number of bytes read from all connections.
	BytesRead atomic.Uint64
	// The number of bytes written to all connections.
	BytesWritten atomic.Uint64
}
