package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/tally"
)

func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				values[family.GetName()] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[family.GetName()] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[family.GetName()+"_count"] = float64(m.GetHistogram().GetSampleCount())
				values[family.GetName()+"_sum"] = m.GetHistogram().GetSampleSum()
			}
		}
	}

	return values
}

func TestIngestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	tl := tally.New()
	ingestMetrics := &metrics.IngestMetrics{}

	c := newIngestCollector(reg, tl, ingestMetrics)
	c.attach()

	tl.ConnectionOpened()
	tl.ConnectionOpened()
	tl.ConnectionClosed()
	tl.Add(1500)
	tl.Add(250)

	ingestMetrics.ReceivedMessages.Add(3)
	ingestMetrics.RejectedMessages.Inc()
	ingestMetrics.AcceptedConnections.Add(2)

	c.collect()

	assert.Equal(t, float64(1750), testutil.ToFloat64(c.totalDistance))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.messages))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.currentConnections))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.maxConnections))

	values := gathered(t, reg)
	assert.Equal(t, float64(3), values["odometer_messages_received_total"])
	assert.Equal(t, float64(1), values["odometer_messages_rejected_total"])
	assert.Equal(t, float64(2), values["odometer_connections_accepted_total"])
	assert.Equal(t, float64(0), values["odometer_accept_errors_total"])
	assert.Equal(t, float64(2), values["odometer_reported_distance_km_count"])
	assert.Equal(t, float64(1750), values["odometer_reported_distance_km_sum"])

	// detached collectors no longer observe new distances
	c.detach()
	tl.Add(100)
	assert.Equal(t, float64(2), gathered(t, reg)["odometer_reported_distance_km_count"])
}
