package bonnet

import (
	evdev "github.com/holoplot/go-evdev"
	"github.com/pkg/errors"
)

// EventSink receives translated key events. Key writes are buffered by
// the consumer until Sync, so everything between two Sync calls is
// delivered as one batch.
type EventSink interface {
	Key(code evdev.EvCode, pressed bool) error
	Sync() error
}

// Bus type reported by the virtual device, per linux/input.h.
const busUSB = 0x03

// VirtualKeyboard injects key events through /dev/uinput.
type VirtualKeyboard struct {
	dev *evdev.InputDevice
}

// NewVirtualKeyboard creates a uinput keyboard advertising exactly the
// codes in keys. Name it "retrogame" to keep existing udev rules for
// the legacy handlers matching.
func NewVirtualKeyboard(name string, keys KeyMap) (*VirtualKeyboard, error) {
	dev, err := evdev.CreateDevice(name, evdev.InputID{BusType: busUSB}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys.Codes(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create uinput device %q", name)
	}
	return &VirtualKeyboard{dev: dev}, nil
}

// Key queues a key-down (pressed) or key-up event.
func (k *VirtualKeyboard) Key(code evdev.EvCode, pressed bool) error {
	value := int32(0)
	if pressed {
		value = 1
	}
	return k.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  code,
		Value: value,
	})
}

// Sync flushes the queued events to readers as one report.
func (k *VirtualKeyboard) Sync() error {
	return k.dev.WriteOne(&evdev.InputEvent{
		Type: evdev.EV_SYN,
		Code: evdev.SYN_REPORT,
	})
}

// Close destroys the uinput device.
func (k *VirtualKeyboard) Close() error {
	return k.dev.Close()
}
