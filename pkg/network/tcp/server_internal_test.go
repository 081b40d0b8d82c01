package tcp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/iotaledger/hive.go/events"

	"github.com/truckfleet/odometer/pkg/network"
)

var errTooManyOpenFiles = errors.New("accept: too many open files")

type accepted struct {
	conn net.Conn
	err  error
}

// scriptedListener hands out the queued results and blocks afterwards until it gets closed.
type scriptedListener struct {
	results   chan accepted
	closed    chan struct{}
	closeOnce sync.Once
}

func newScriptedListener(results ...accepted) *scriptedListener {
	l := &scriptedListener{
		results: make(chan accepted, len(results)),
		closed:  make(chan struct{}),
	}
	for _, r := range results {
		l.results <- r
	}

	return l
}

func (l *scriptedListener) Accept() (net.Conn, error) {
	select {
	case r := <-l.results:
		return r.conn, r.err
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *scriptedListener) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

func (l *scriptedListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func TestServeContinuesAfterAcceptError(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	srv := NewServer()
	srv.listener = newScriptedListener(
		accepted{err: errTooManyOpenFiles},
		accepted{conn: serverSide},
	)

	var acceptErrors atomic.Int32
	var lastErr atomic.Error
	srv.Events.Error.Attach(events.NewClosure(func(err error) {
		acceptErrors.Inc()
		lastErr.Store(err)
	}))

	connected := make(chan *network.ManagedConnection, 1)
	srv.Events.Connect.Attach(events.NewClosure(func(conn *network.ManagedConnection) {
		connected <- conn
	}))

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve()
	}()

	select {
	case conn := <-connected:
		assert.Same(t, serverSide, conn.Conn)
	case <-time.After(5 * time.Second):
		t.Fatal("connection after the failed accept was not handed out")
	}

	assert.EqualValues(t, 1, acceptErrors.Load())
	assert.True(t, errors.Is(lastErr.Load(), errTooManyOpenFiles))
	assert.Equal(t, 1, srv.ConnectionCount())

	// still accepting
	select {
	case err := <-served:
		t.Fatalf("serve returned before shutdown: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	srv.Shutdown()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}

	assert.EqualValues(t, 1, acceptErrors.Load())
	assert.Zero(t, srv.ConnectionCount())
}
