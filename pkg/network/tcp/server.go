package tcp

import (
	"context"
	"net"

	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/syncutils"

	"github.com/truckfleet/odometer/pkg/network"
)

var (
	// ErrServerRunning is returned if Listen is called on a server which is already listening.
	ErrServerRunning = errors.New("tcp server is already listening")
	// ErrServerNotListening is returned if Serve is called before Listen.
	ErrServerNotListening = errors.New("tcp server is not listening")
)

// ServerEvents are the events issued by the Server.
type ServerEvents struct {
	// Start is triggered with the bound address once the server listens.
	Start *events.Event
	// Shutdown is triggered after the listener was closed.
	Shutdown *events.Event
	// Connect is triggered for every accepted connection. Handlers must not block.
	Connect *events.Event
	// Error is triggered when accepting a connection failed. The server keeps accepting.
	Error *events.Event
}

// Server accepts TCP connections and hands them out via the Connect event.
// It does not limit the amount of simultaneous connections.
type Server struct {
	listener      net.Listener
	listenerMutex syncutils.RWMutex

	connections      map[*network.ManagedConnection]struct{}
	connectionsMutex syncutils.Mutex

	Events ServerEvents
}

// NewServer creates a new Server.
func NewServer() *Server {
	return &Server{
		connections: make(map[*network.ManagedConnection]struct{}),
		Events: ServerEvents{
			Start:    events.NewEvent(AddressCaller),
			Shutdown: events.NewEvent(events.VoidCaller),
			Connect:  events.NewEvent(ConnectionCaller),
			Error:    events.NewEvent(events.ErrorCaller),
		},
	}
}

// Listen binds the listening socket to the given address.
// The pending connection backlog is the one of the operating system.
func (srv *Server) Listen(ctx context.Context, address string) error {
	srv.listenerMutex.Lock()
	defer srv.listenerMutex.Unlock()

	if srv.listener != nil {
		return ErrServerRunning
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", address)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", address)
	}
	srv.listener = listener

	srv.Events.Start.Trigger(listener.Addr().String())

	return nil
}

// Addr returns the address the server is bound to, or nil if it is not listening.
func (srv *Server) Addr() net.Addr {
	srv.listenerMutex.RLock()
	defer srv.listenerMutex.RUnlock()

	if srv.listener == nil {
		return nil
	}

	return srv.listener.Addr()
}

// IsRunning returns whether the server is listening.
func (srv *Server) IsRunning() bool {
	return srv.Addr() != nil
}

// Serve accepts connections until the server is shut down.
// A failed accept is reported via the Error event and the loop continues.
func (srv *Server) Serve() error {
	srv.listenerMutex.RLock()
	listener := srv.listener
	srv.listenerMutex.RUnlock()

	if listener == nil {
		return ErrServerNotListening
	}

	return srv.serve(listener)
}

func (srv *Server) serve(listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			srv.Events.Error.Trigger(errors.Wrap(err, "accept failed"))

			continue
		}

		srv.Events.Connect.Trigger(srv.track(network.NewManagedConnection(conn)))
	}
}

// track remembers the connection until it gets closed, so it can be closed on shutdown.
func (srv *Server) track(conn *network.ManagedConnection) *network.ManagedConnection {
	srv.connectionsMutex.Lock()
	srv.connections[conn] = struct{}{}
	srv.connectionsMutex.Unlock()

	conn.Events.Close.Attach(events.NewClosure(func() {
		srv.connectionsMutex.Lock()
		delete(srv.connections, conn)
		srv.connectionsMutex.Unlock()
	}))

	// the listener got closed while this connection was accepted
	if !srv.IsRunning() {
		_ = conn.Close()
	}

	return conn
}

// ConnectionCount returns the amount of accepted connections which are not closed yet.
func (srv *Server) ConnectionCount() int {
	srv.connectionsMutex.Lock()
	defer srv.connectionsMutex.Unlock()

	return len(srv.connections)
}

// Shutdown closes the listener and all open connections.
func (srv *Server) Shutdown() {
	srv.listenerMutex.Lock()
	if srv.listener == nil {
		srv.listenerMutex.Unlock()
		return
	}
	if err := srv.listener.Close(); err != nil {
		srv.Events.Error.Trigger(errors.Wrap(err, "closing listener failed"))
	}
	srv.listener = nil
	srv.listenerMutex.Unlock()

	srv.connectionsMutex.Lock()
	open := make([]*network.ManagedConnection, 0, len(srv.connections))
	for conn := range srv.connections {
		open = append(open, conn)
	}
	srv.connectionsMutex.Unlock()

	// closing triggers the Close event, which needs the connections lock
	for _, conn := range open {
		_ = conn.Close()
	}

	srv.Events.Shutdown.Trigger()
}
