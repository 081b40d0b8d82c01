package tcp_test

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/events"

	"github.com/truckfleet/odometer/pkg/network"
	"github.com/truckfleet/odometer/pkg/network/tcp"
)

func startServer(t *testing.T, onConnect func(conn *network.ManagedConnection)) (*tcp.Server, chan error) {
	t.Helper()

	srv := tcp.NewServer()
	srv.Events.Connect.Attach(events.NewClosure(onConnect))

	require.NoError(t, srv.Listen(context.Background(), "127.0.0.1:0"))

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve()
	}()

	t.Cleanup(srv.Shutdown)

	return srv, served
}

func TestServerAcceptsConnections(t *testing.T) {
	srv, _ := startServer(t, func(conn *network.ManagedConnection) {
		go func() {
			defer conn.Close()
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte(line))
		}()
	})

	for i := 0; i < 3; i++ {
		client, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)

		_, err = client.Write([]byte("ping\n"))
		require.NoError(t, err)

		reply, err := bufio.NewReader(client).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "ping\n", reply)

		require.NoError(t, client.Close())
	}
}

func TestServerStartEvent(t *testing.T) {
	srv := tcp.NewServer()

	var started string
	srv.Events.Start.Attach(events.NewClosure(func(addr string) {
		started = addr
	}))

	require.NoError(t, srv.Listen(context.Background(), "127.0.0.1:0"))
	defer srv.Shutdown()

	assert.True(t, srv.IsRunning())
	assert.Equal(t, srv.Addr().String(), started)
}

func TestServerListenTwice(t *testing.T) {
	srv := tcp.NewServer()
	require.NoError(t, srv.Listen(context.Background(), "127.0.0.1:0"))
	defer srv.Shutdown()

	assert.True(t, errors.Is(srv.Listen(context.Background(), "127.0.0.1:0"), tcp.ErrServerRunning))
}

func TestServerListenInvalidAddress(t *testing.T) {
	srv := tcp.NewServer()
	assert.Error(t, srv.Listen(context.Background(), "127.0.0.1:notaport"))
	assert.False(t, srv.IsRunning())
}

func TestServerServeWithoutListen(t *testing.T) {
	srv := tcp.NewServer()
	assert.True(t, errors.Is(srv.Serve(), tcp.ErrServerNotListening))
}

func TestServerShutdownClosesConnections(t *testing.T) {
	connected := make(chan *network.ManagedConnection, 1)
	srv, served := startServer(t, func(conn *network.ManagedConnection) {
		connected <- conn
	})

	client, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var conn *network.ManagedConnection
	select {
	case conn = <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not accepted")
	}

	closed := make(chan struct{})
	conn.Events.Close.Attach(events.NewClosure(func() {
		close(closed)
	}))
	assert.Equal(t, 1, srv.ConnectionCount())

	shutdown := make(chan struct{})
	srv.Events.Shutdown.Attach(events.NewClosure(func() {
		close(shutdown)
	}))
	srv.Shutdown()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not closed on shutdown")
	}
	<-shutdown

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("accept loop did not stop")
	}

	assert.False(t, srv.IsRunning())
	assert.Zero(t, srv.ConnectionCount())

	// the client notices the closed connection
	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = client.Read(make([]byte, 1))
	assert.Error(t, err)
}
