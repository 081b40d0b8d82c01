package shutdown

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/logger"
)

// ShutdownHandler waits until a shutdown signal was received or the node tried to shutdown itself,
// and shuts down all background workers gracefully.
type ShutdownHandler struct {
	log              *logger.Logger
	daemon           daemon.Daemon
	waitToKill       time.Duration
	gracefulStop     chan os.Signal
	nodeSelfShutdown chan string
}

// NewShutdownHandler creates a new shutdown handler.
// If the background workers did not stop within waitToKill, the process is killed.
func NewShutdownHandler(log *logger.Logger, daemon daemon.Daemon, waitToKill time.Duration) *ShutdownHandler {

	gs := &ShutdownHandler{
		log:              log,
		daemon:           daemon,
		waitToKill:       waitToKill,
		gracefulStop:     make(chan os.Signal, 1),
		nodeSelfShutdown: make(chan string, 1),
	}

	signal.Notify(gs.gracefulStop, syscall.SIGTERM, syscall.SIGINT)

	return gs
}

// SelfShutdown can be called in order to instruct the node to shutdown cleanly without receiving any interrupt signals.
func (gs *ShutdownHandler) SelfShutdown(msg string) {
	select {
	case gs.nodeSelfShutdown <- msg:
	default:
	}
}

// Run starts the ShutdownHandler go routine.
func (gs *ShutdownHandler) Run() {

	go func() {
		select {
		case <-gs.gracefulStop:
			gs.log.Warnf("Received shutdown request - waiting (max %v) for the workers to stop ...", gs.waitToKill)
		case msg := <-gs.nodeSelfShutdown:
			gs.log.Warnf("Node self-shutdown: %s; waiting (max %v) for the workers to stop ...", msg, gs.waitToKill)
		}

		go gs.watchdog()

		gs.daemon.ShutdownAndWait()
	}()
}

// watchdog reports the still running workers every second and kills the process
// once the shutdown took longer than waitToKill.
func (gs *ShutdownHandler) watchdog() {
	deadline := time.Now().Add(gs.waitToKill)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for now := range ticker.C {
		if now.After(deadline) {
			gs.log.Fatal("Background workers did not terminate in time! Forcing shutdown ...")
			return
		}

		var processList string
		if running := gs.daemon.GetRunningBackgroundWorkers(); len(running) > 0 {
			processList = "(" + strings.Join(running, ", ") + ") "
		}
		gs.log.Warnf("Waiting %v for the workers %sto stop ...", deadline.Sub(now).Truncate(time.Second), processList)
	}
}
