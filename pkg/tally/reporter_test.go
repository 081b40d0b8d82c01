package tally_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/truckfleet/odometer/pkg/tally"
)

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core).Sugar(), logs
}

func TestReporterRejectsInvalidInterval(t *testing.T) {
	log, _ := newObservedLogger()

	for _, interval := range []time.Duration{0, -time.Second} {
		reporter, err := tally.NewReporter(log, tally.New(), interval)
		assert.Nil(t, reporter)
		assert.True(t, errors.Is(err, tally.ErrInvalidInterval), "interval %v", interval)
	}
}

func TestReporterLogsWatermark(t *testing.T) {
	log, logs := newObservedLogger()

	tl := tally.New()
	tl.ConnectionOpened()
	tl.ConnectionOpened()
	tl.ConnectionOpened()
	tl.ConnectionClosed()
	tl.ConnectionClosed()

	reporter, err := tally.NewReporter(log, tl, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		reporter.Run(ctx)
		close(done)
	}()

	// the watermark is reported, not the one remaining connection
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Max simultaneous connections: 3").Len() >= 2
	}, 5*time.Second, 5*time.Millisecond)
	assert.Zero(t, logs.FilterMessage("Max simultaneous connections: 1").Len())

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not stop")
	}

	// no more reports after the reporter stopped
	reported := logs.Len()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, reported, logs.Len())
}

func TestReporterReport(t *testing.T) {
	log, logs := newObservedLogger()

	tl := tally.New()
	reporter, err := tally.NewReporter(log, tl, time.Hour)
	require.NoError(t, err)

	reporter.Report()
	tl.ConnectionOpened()
	reporter.Report()

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, "Max simultaneous connections: 0", entries[0].Message)
	assert.Equal(t, "Max simultaneous connections: 1", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}
