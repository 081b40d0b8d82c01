package tally

import (
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/syncutils"
)

// Snapshot is a consistent copy of the tally, taken while holding the tally lock.
type Snapshot struct {
	// The sum of all accepted kilometers.
	TotalDistance uint64 `json:"totalDistance"`
	// The number of accepted messages.
	MessageCount uint64 `json:"messageCount"`
	// The number of connections currently being handled.
	CurrentConnections int `json:"currentConnections"`
	// The highest number of simultaneous connections seen so far.
	MaxConnections int `json:"maxConnections"`
}

// Events are the events issued by the Tally.
type Events struct {
	// DistanceAdded is triggered after accepted kilometers were added to the total.
	// The handler receives the added kilometers and the snapshot taken right after the update.
	DistanceAdded *events.Event
}

// DistanceAddedCaller is the event caller for Events.DistanceAdded.
func DistanceAddedCaller(handler interface{}, params ...interface{}) {
	handler.(func(km uint64, snapshot Snapshot))(params[0].(uint64), params[1].(Snapshot))
}

// Tally accumulates the kilometers reported by all clients and keeps the connection statistics.
// A single mutex guards all fields, so the connection counter and its watermark
// are always updated together.
type Tally struct {
	mutex syncutils.Mutex

	totalDistance      uint64
	messageCount       uint64
	currentConnections int
	maxConnections     int

	Events *Events
}

// New creates a new Tally with all counters set to zero.
func New() *Tally {
	return &Tally{
		Events: &Events{
			DistanceAdded: events.NewEvent(DistanceAddedCaller),
		},
	}
}

// snapshot must be called while holding the lock.
func (t *Tally) snapshot() Snapshot {
	return Snapshot{
		TotalDistance:      t.totalDistance,
		MessageCount:       t.messageCount,
		CurrentConnections: t.currentConnections,
		MaxConnections:     t.maxConnections,
	}
}

// ConnectionOpened registers a new connection and raises the watermark if needed.
func (t *Tally) ConnectionOpened() Snapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.currentConnections++
	if t.currentConnections > t.maxConnections {
		t.maxConnections = t.currentConnections
	}

	return t.snapshot()
}

// ConnectionClosed unregisters a connection. The watermark is left untouched.
func (t *Tally) ConnectionClosed() Snapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.currentConnections > 0 {
		t.currentConnections--
	}

	return t.snapshot()
}

// Add adds the given kilometers to the total and counts the message.
// The returned snapshot reflects the state right after the update.
func (t *Tally) Add(km uint64) Snapshot {
	t.mutex.Lock()
	t.totalDistance += km
	t.messageCount++
	snapshot := t.snapshot()
	t.mutex.Unlock()

	t.Events.DistanceAdded.Trigger(km, snapshot)

	return snapshot
}

// MaxConnections returns the highest number of simultaneous connections seen so far.
func (t *Tally) MaxConnections() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.maxConnections
}

// Snapshot returns a consistent copy of all counters.
func (t *Tally) Snapshot() Snapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.snapshot()
}
