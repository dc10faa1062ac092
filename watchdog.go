package bonnet

import (
	"time"

	"github.com/golang/glog"
)

// DefaultWatchdogInterval is how often the port register is re-read
// when nothing else is happening.
const DefaultWatchdogInterval = 100 * time.Millisecond

// Watchdog periodically reads the expander's port register and throws
// the value away. The MCP23017 stops signalling interrupts until a
// port read clears the pending one, so if an edge is ever missed the
// read is what un-sticks the INT line; a missed press stalls input for
// at most one tick.
type Watchdog struct {
	ports PortReader
	every time.Duration
}

// NewWatchdog creates a watchdog reading ports at the given cadence.
func NewWatchdog(ports PortReader, every time.Duration) *Watchdog {
	if every <= 0 {
		every = DefaultWatchdogInterval
	}
	return &Watchdog{
		ports: ports,
		every: every,
	}
}

// Run reads until stop is closed. Read failures are logged and the
// loop keeps going; the next tick is the retry.
func (w *Watchdog) Run(stop <-chan struct{}) {
	tick := time.NewTicker(w.every)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if _, err := w.ports.ReadPorts(); err != nil {
				glog.Errorf("watchdog: port read failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}
