package tally_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/events"

	"github.com/truckfleet/odometer/pkg/tally"
)

func TestTallyStartsAtZero(t *testing.T) {
	tl := tally.New()
	assert.Equal(t, tally.Snapshot{}, tl.Snapshot())
	assert.Zero(t, tl.MaxConnections())
}

func TestTallyAdd(t *testing.T) {
	tl := tally.New()

	snapshot := tl.Add(100)
	assert.EqualValues(t, 100, snapshot.TotalDistance)
	assert.EqualValues(t, 1, snapshot.MessageCount)

	// zero kilometers is still an accepted message
	snapshot = tl.Add(0)
	assert.EqualValues(t, 100, snapshot.TotalDistance)
	assert.EqualValues(t, 2, snapshot.MessageCount)

	assert.Equal(t, snapshot, tl.Snapshot())
}

func TestTallyConnectionWatermark(t *testing.T) {
	tl := tally.New()

	tl.ConnectionOpened()
	tl.ConnectionOpened()
	snapshot := tl.ConnectionOpened()
	assert.Equal(t, 3, snapshot.CurrentConnections)
	assert.Equal(t, 3, snapshot.MaxConnections)

	tl.ConnectionClosed()
	snapshot = tl.ConnectionClosed()
	assert.Equal(t, 1, snapshot.CurrentConnections)
	assert.Equal(t, 3, snapshot.MaxConnections)

	snapshot = tl.ConnectionOpened()
	assert.Equal(t, 2, snapshot.CurrentConnections)
	assert.Equal(t, 3, tl.MaxConnections())

	tl.ConnectionClosed()
	tl.ConnectionClosed()
	// closing more connections than opened must not go negative
	snapshot = tl.ConnectionClosed()
	assert.Zero(t, snapshot.CurrentConnections)
	assert.Equal(t, 3, snapshot.MaxConnections)
}

func TestTallyConcurrentAdd(t *testing.T) {
	const workers = 50
	const messagesPerWorker = 200

	tl := tally.New()

	var wg sync.WaitGroup
	var expectedTotal uint64
	for i := 0; i < workers; i++ {
		km := uint64(i * 300)
		expectedTotal += km * messagesPerWorker

		wg.Add(1)
		go func() {
			defer wg.Done()

			tl.ConnectionOpened()
			defer tl.ConnectionClosed()

			for j := 0; j < messagesPerWorker; j++ {
				tl.Add(km)
			}
		}()
	}
	wg.Wait()

	snapshot := tl.Snapshot()
	assert.Equal(t, expectedTotal, snapshot.TotalDistance)
	assert.EqualValues(t, workers*messagesPerWorker, snapshot.MessageCount)
	assert.Zero(t, snapshot.CurrentConnections)
	assert.GreaterOrEqual(t, snapshot.MaxConnections, 1)
	assert.LessOrEqual(t, snapshot.MaxConnections, workers)
}

func TestTallyWatermarkNeverDecreases(t *testing.T) {
	tl := tally.New()

	var wg sync.WaitGroup
	done := make(chan struct{})

	// observe the watermark while connections come and go
	observed := make(chan []int, 1)
	go func() {
		var seen []int
		for {
			select {
			case <-done:
				observed <- seen
				return
			default:
				seen = append(seen, tl.MaxConnections())
			}
		}
	}()

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snapshot := tl.ConnectionOpened()
				assert.GreaterOrEqual(t, snapshot.MaxConnections, snapshot.CurrentConnections)
				tl.ConnectionClosed()
			}
		}()
	}
	wg.Wait()
	close(done)

	seen := <-observed
	for i := 1; i < len(seen); i++ {
		require.GreaterOrEqual(t, seen[i], seen[i-1])
	}
}

func TestTallyDistanceAddedEvent(t *testing.T) {
	tl := tally.New()

	var receivedKm uint64
	var receivedSnapshot tally.Snapshot
	tl.Events.DistanceAdded.Attach(events.NewClosure(func(km uint64, snapshot tally.Snapshot) {
		receivedKm = km
		receivedSnapshot = snapshot
	}))

	snapshot := tl.Add(42)
	assert.EqualValues(t, 42, receivedKm)
	assert.Equal(t, snapshot, receivedSnapshot)
}

func TestSnapshotString(t *testing.T) {
	snapshot := tally.Snapshot{
		TotalDistance:      1234567,
		MessageCount:       1000,
		CurrentConnections: 3,
		MaxConnections:     12,
	}

	assert.Equal(t, "total: 1,234,567 km, messages: 1,000, connections (cur/max): 3/12", snapshot.String())
}

func TestSnapshotStringBeyondInt64(t *testing.T) {
	snapshot := tally.Snapshot{
		TotalDistance: math.MaxInt64 + 1,
		MessageCount:  math.MaxUint64,
	}

	assert.Equal(t, "total: 9,223,372,036,854,775,808 km, messages: 18,446,744,073,709,551,615, connections (cur/max): 0/0", snapshot.String())
}
