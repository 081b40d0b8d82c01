package ingest

import (
	"io"
	"net"
	"strings"

	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/logger"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/protocol"
	"github.com/truckfleet/odometer/pkg/tally"
)

// Options define options for the Handler.
type Options struct {
	strictParsing bool
}

// Option is a function setting an Options option.
type Option func(opts *Options)

// applies the given Option.
func (o *Options) apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithStrictParsing rejects messages which are not plain decimal numbers
// instead of counting them as zero kilometers.
func WithStrictParsing(strict bool) Option {
	return func(opts *Options) {
		opts.strictParsing = strict
	}
}

// Handler runs the kilometer protocol on client connections.
// It is safe to use a single Handler for all connections at the same time.
type Handler struct {
	log     *logger.Logger
	tally   *tally.Tally
	metrics *metrics.IngestMetrics
	opts    *Options
}

// NewHandler creates a new Handler which adds the received kilometers to the given tally.
func NewHandler(log *logger.Logger, tally *tally.Tally, metrics *metrics.IngestMetrics, opts ...Option) *Handler {
	options := &Options{}
	options.apply(opts...)

	return &Handler{
		log:     log,
		tally:   tally,
		metrics: metrics,
		opts:    options,
	}
}

// Handle drives the given connection until the client disconnects or an error occurs.
// Every received chunk of at most protocol.MaxMessageSize bytes is one message.
// The connection is closed when Handle returns.
func (h *Handler) Handle(conn net.Conn) {
	h.tally.ConnectionOpened()
	defer func() {
		h.tally.ConnectionClosed()
		_ = conn.Close()
	}()

	receiveBuffer := make([]byte, protocol.MaxMessageSize)
	for {
		n, err := conn.Read(receiveBuffer)
		if n > 0 {
			if !h.processMessage(conn, receiveBuffer[:n]) {
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				h.metrics.ReceiveErrors.Inc()
				h.log.Warnf("Error in recv from %s: %s", conn.RemoteAddr(), err)
			}
			return
		}
	}
}

// processMessage validates the message, updates the tally and replies to the client.
// It returns false if the reply could not be sent.
func (h *Handler) processMessage(conn net.Conn, message []byte) bool {
	h.metrics.ReceivedMessages.Inc()
	h.metrics.BytesRead.Add(uint64(len(message)))

	km, err := protocol.ParseKilometers(message, h.opts.strictParsing)
	if err != nil {
		h.metrics.RejectedMessages.Inc()
		h.log.Debugf("Rejected message from %s: %s", conn.RemoteAddr(), err)

		return h.reply(conn, protocol.ReplyRejected)
	}

	snapshot := h.tally.Add(km)
	h.log.Infof("Total KMs: %d - KM received: %d - Message received: %s - Total messages: %d",
		snapshot.TotalDistance, km, strings.TrimSpace(string(message)), snapshot.MessageCount)

	return h.reply(conn, protocol.ReplyAccepted)
}

func (h *Handler) reply(conn net.Conn, reply []byte) bool {
	n, err := conn.Write(reply)
	h.metrics.BytesWritten.Add(uint64(n))
	if err != nil {
		h.metrics.SendErrors.Inc()
		h.log.Warnf("Error in send to %s: %s", conn.RemoteAddr(), err)
		return false
	}

	return true
}
