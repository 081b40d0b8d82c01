package tally

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/timeutil"
)

// ErrInvalidInterval is returned if the reporter interval is not positive.
var ErrInvalidInterval = errors.New("reporter interval must be positive")

// Reporter periodically logs the connection watermark of a Tally.
type Reporter struct {
	log      *logger.Logger
	tally    *Tally
	interval time.Duration
}

// NewReporter creates a new Reporter which logs the status of the given tally every interval.
func NewReporter(log *logger.Logger, t *Tally, interval time.Duration) (*Reporter, error) {
	if interval <= 0 {
		return nil, errors.Wrapf(ErrInvalidInterval, "got %v", interval)
	}

	return &Reporter{
		log:      log,
		tally:    t,
		interval: interval,
	}, nil
}

// Run logs the status every interval until the context is done.
// The first report happens one interval after the start.
func (r *Reporter) Run(ctx context.Context) {
	ticker := timeutil.NewTicker(r.Report, r.interval, ctx)
	ticker.WaitForShutdown()
	ticker.WaitForGracefulShutdown()
}

// Report logs the current status once.
func (r *Reporter) Report() {
	snapshot := r.tally.Snapshot()

	r.log.Infof("Max simultaneous connections: %d", snapshot.MaxConnections)
	r.log.Debugf("Status: %s", snapshot)
}
