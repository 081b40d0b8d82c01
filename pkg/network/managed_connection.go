package network

import (
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/iotaledger/hive.go/events"
)

// ManagedConnectionEvents are the events issued by a ManagedConnection.
type ManagedConnectionEvents struct {
	// Close is triggered once when the connection gets closed.
	Close *events.Event
}

// ManagedConnection wraps a net.Conn, counts the transferred bytes and
// makes sure the close event is only fired once.
// Read and write errors are returned to the caller, which owns the error accounting.
type ManagedConnection struct {
	net.Conn
	Events       ManagedConnectionEvents
	readTimeout  time.Duration
	closeOnce    sync.Once
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// NewManagedConnection creates a new ManagedConnection.
func NewManagedConnection(conn net.Conn) *ManagedConnection {
	return &ManagedConnection{
		Conn: conn,
		Events: ManagedConnectionEvents{
			Close: events.NewEvent(events.VoidCaller),
		},
	}
}

// Read reads a single chunk of at most len(receiveBuffer) bytes from the connection.
func (mc *ManagedConnection) Read(receiveBuffer []byte) (int, error) {
	if err := mc.setReadTimeoutBasedDeadline(); err != nil {
		return 0, err
	}

	n, err := mc.Conn.Read(receiveBuffer)
	mc.bytesRead.Add(uint64(n))

	return n, err
}

// Write writes data to the connection.
func (mc *ManagedConnection) Write(data []byte) (int, error) {
	n, err := mc.Conn.Write(data)
	mc.bytesWritten.Add(uint64(n))

	return n, err
}

// Close closes the connection. The Close event is only triggered on the first call.
func (mc *ManagedConnection) Close() error {
	var err error
	mc.closeOnce.Do(func() {
		err = mc.Conn.Close()
		mc.Events.Close.Trigger()
	})

	return err
}

// BytesRead returns the amount of bytes read from the connection.
func (mc *ManagedConnection) BytesRead() uint64 {
	return mc.bytesRead.Load()
}

// BytesWritten returns the amount of bytes written to the connection.
func (mc *ManagedConnection) BytesWritten() uint64 {
	return mc.bytesWritten.Load()
}

// SetReadTimeout sets a timeout which gets renewed before every read.
// A zero timeout disables it.
func (mc *ManagedConnection) SetReadTimeout(d time.Duration) error {
	mc.readTimeout = d

	return mc.setReadTimeoutBasedDeadline()
}

func (mc *ManagedConnection) setReadTimeoutBasedDeadline() error {
	if mc.readTimeout != 0 {
		return mc.Conn.SetReadDeadline(time.Now().Add(mc.readTimeout))
	}

	return mc.Conn.SetReadDeadline(time.Time{})
}
