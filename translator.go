package bonnet

import (
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// PortReader is the source of 16-bit port snapshots. Implementations
// must be safe for concurrent use; *MCP23017 satisfies this.
type PortReader interface {
	ReadPorts() (uint16, error)
}

// Translator turns port state changes into key events. It keeps the
// last snapshot it has fully reported and, on each interrupt, emits
// one event per bit that differs, as a single synced batch. Pins are
// pulled up, so a low level means pressed.
type Translator struct {
	ports PortReader
	keys  KeyMap
	sink  EventSink

	mu   sync.Mutex
	last uint16
}

// NewTranslator creates a translator. The initial snapshot is zero, so
// the first interrupt reports every mapped pin's real level; for an
// idle panel that is a burst of key-up events, which front-ends ignore.
func NewTranslator(ports PortReader, keys KeyMap, sink EventSink) *Translator {
	return &Translator{
		ports: ports,
		keys:  keys,
		sink:  sink,
	}
}

// HandleInterrupt services one expander interrupt: read the ports,
// emit events for the changes, advance the snapshot. It is safe to
// call from concurrent edge callbacks; a call that lands while another
// is in flight blocks, then re-reads, and the dedup check makes the
// extra pass a no-op.
//
// Errors are logged, never fatal. A failed read or emit leaves the
// snapshot untouched so the next interrupt or watchdog-provoked edge
// reports the still-outstanding changes.
func (t *Translator) HandleInterrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := t.ports.ReadPorts()
	if err != nil {
		glog.Errorf("translator: port read failed: %v", err)
		return
	}
	if err := t.emit(state); err != nil {
		glog.Errorf("translator: %v", err)
		return
	}
	t.last = state
}

func (t *Translator) emit(state uint16) error {
	if state == t.last {
		// The chip re-signals an unchanged state when a watchdog read
		// re-arms a missed interrupt; nothing to report.
		return nil
	}

	emitted := 0
	for i := 0; i < 16; i++ {
		bit := uint16(1) << uint(i)
		if state&bit == t.last&bit {
			continue
		}
		code := t.keys[i]
		if code == 0 {
			continue
		}
		if err := t.sink.Key(code, state&bit == 0); err != nil {
			return errors.Wrapf(err, "write key %d", code)
		}
		emitted++
	}
	if emitted == 0 {
		return nil
	}
	return errors.Wrap(t.sink.Sync(), "sync batch")
}
