package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotaledger/hive.go/events"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/protocol"
	"github.com/truckfleet/odometer/pkg/tally"
)

// ingestCollector exports the tally and the ingest counters.
type ingestCollector struct {
	tally *tally.Tally

	totalDistance      prometheus.Gauge
	messages           prometheus.Gauge
	currentConnections prometheus.Gauge
	maxConnections     prometheus.Gauge
	reportedDistance   prometheus.Histogram

	onDistanceAdded *events.Closure
}

func newIngestCollector(registry *prometheus.Registry, t *tally.Tally, ingestMetrics *metrics.IngestMetrics) *ingestCollector {
	c := &ingestCollector{
		tally: t,
		totalDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odometer_total_distance_km",
			Help: "Sum of all accepted kilometers.",
		}),
		messages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odometer_messages_total",
			Help: "Number of accepted messages.",
		}),
		currentConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odometer_connections_current",
			Help: "Number of connections currently being handled.",
		}),
		maxConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odometer_connections_max",
			Help: "Highest number of simultaneous connections.",
		}),
		reportedDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "odometer_reported_distance_km",
			Help:    "Distribution of the accepted kilometers per message.",
			Buckets: prometheus.LinearBuckets(protocol.MaxKilometers/16, protocol.MaxKilometers/16, 16),
		}),
	}

	c.onDistanceAdded = events.NewClosure(func(km uint64, _ tally.Snapshot) {
		c.reportedDistance.Observe(float64(km))
	})

	registry.MustRegister(c.totalDistance)
	registry.MustRegister(c.messages)
	registry.MustRegister(c.currentConnections)
	registry.MustRegister(c.maxConnections)
	registry.MustRegister(c.reportedDistance)

	counters := []struct {
		name    string
		help    string
		counter func() uint64
	}{
		{"odometer_messages_received_total", "Number of received messages, accepted or not.", ingestMetrics.ReceivedMessages.Load},
		{"odometer_messages_rejected_total", "Number of messages answered with a rejection.", ingestMetrics.RejectedMessages.Load},
		{"odometer_connections_accepted_total", "Number of accepted TCP connections.", ingestMetrics.AcceptedConnections.Load},
		{"odometer_accept_errors_total", "Number of failed accept attempts.", ingestMetrics.AcceptErrors.Load},
		{"odometer_receive_errors_total", "Number of connections which ended with a receive error.", ingestMetrics.ReceiveErrors.Load},
		{"odometer_send_errors_total", "Number of replies which could not be sent.", ingestMetrics.SendErrors.Load},
		{"odometer_received_bytes_total", "Number of bytes read from all connections.", ingestMetrics.BytesRead.Load},
		{"odometer_sent_bytes_total", "Number of bytes written to all connections.", ingestMetrics.BytesWritten.Load},
	}

	for _, cnt := range counters {
		load := cnt.counter
		registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: cnt.name,
			Help: cnt.help,
		}, func() float64 {
			return float64(load())
		}))
	}

	return c
}

func (c *ingestCollector) attach() {
	c.tally.Events.DistanceAdded.Attach(c.onDistanceAdded)
}

func (c *ingestCollector) detach() {
	c.tally.Events.DistanceAdded.Detach(c.onDistanceAdded)
}

// collect sets the gauges from a single snapshot, so they are consistent with each other.
func (c *ingestCollector) collect() {
	snapshot := c.tally.Snapshot()

	c.totalDistance.Set(float64(snapshot.TotalDistance))
	c.messages.Set(float64(snapshot.MessageCount))
	c.currentConnections.Set(float64(snapshot.CurrentConnections))
	c.maxConnections.Set(float64(snapshot.MaxConnections))
}
