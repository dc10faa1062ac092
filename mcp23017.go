// Package bonnet drives the Adafruit Arcade Bonnet: an MCP23017 16-bit
// I2C port expander with arcade buttons wired to its pins, translated
// into virtual keyboard events for emulator front-ends.
package bonnet

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/kidoman/embd"
	"github.com/pkg/errors"
)

// DefaultAddress is the MCP23017's I2C address with the bonnet's
// address jumper open. Closing the jumper moves it to 0x27.
const DefaultAddress = 0x26

// MCP23017 register addresses in bank 0 (interleaved A/B) mode.
const (
	regIODIRA   = 0x00 // pin direction, 1 = input
	regIPOLA    = 0x02 // input polarity inversion
	regGPINTENA = 0x04 // interrupt-on-change enable
	regIOCONA   = 0x0A // device configuration
	regGPPUA    = 0x0C // internal pull-up enable
	regINTCAPA  = 0x10 // pin state captured at interrupt, read-only
	regGPIOA    = 0x12 // live pin state; reading re-arms interrupts
)

// MCP23017 16-bit I2C port expander, configured as an all-input button
// matrix with pull-ups and interrupt-on-change on every pin.
//
// Port reads are serialized with an internal mutex so the interrupt
// callback and the watchdog loop can share the bus handle.
type MCP23017 struct {
	bus  embd.I2CBus
	addr byte

	configured bool

	// reference to the interrupt pin.
	interruptPin embd.DigitalPin

	mu sync.Mutex
}

// New creates a new MCP23017 interface on the given bus. The device is
// not touched until Configure is called.
func New(bus embd.I2CBus, addr byte) *MCP23017 {
	return &MCP23017{
		bus:  bus,
		addr: addr,
	}
}

// Configure places the expander in bank 0 mode and programs every pin
// as an input with normal polarity, pull-up enabled and
// interrupt-on-change enabled. Must complete before SetInterruptPin.
func (d *MCP23017) Configure() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The IOCON address depends on the current bank mode. If the chip
	// is in bank 1, address 0x05 is IOCON and writing 0x00 switches it
	// to bank 0. If it was already in bank 0, that address is GPINTENB,
	// which the block write below reprograms anyway.
	if err := d.bus.WriteByteToReg(d.addr, 0x05, 0x00); err != nil {
		return errors.Wrap(err, "mcp23017: bank select")
	}

	// Bank 0, mirrored INT pins, sequential addressing, open-drain IRQ.
	if err := d.bus.WriteByteToReg(d.addr, regIOCONA, 0x44); err != nil {
		return errors.Wrap(err, "mcp23017: write IOCON")
	}

	// Read/modify/write the remaining configuration in one block,
	// IODIRA through GPPUB.
	cfg := make([]byte, 14)
	if err := d.bus.ReadFromReg(d.addr, regIODIRA, cfg); err != nil {
		return errors.Wrap(err, "mcp23017: read configuration block")
	}
	cfg[0], cfg[1] = 0xFF, 0xFF   // IODIR: all pins input
	cfg[2], cfg[3] = 0x00, 0x00   // IPOL: normal polarity
	cfg[4], cfg[5] = 0xFF, 0xFF   // GPINTEN: interrupt on change
	cfg[12], cfg[13] = 0xFF, 0xFF // GPPU: pull-ups on
	if err := d.bus.WriteToReg(d.addr, regIODIRA, cfg); err != nil {
		return errors.Wrap(err, "mcp23017: write configuration block")
	}

	glog.V(1).Infof("mcp23017: device %#02x configured", d.addr)
	d.configured = true
	return nil
}

// ReadPorts returns the current state of all 16 pins, port A in the
// low byte. Reading GPIO also clears a pending interrupt on the chip.
func (d *MCP23017) ReadPorts() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf [2]byte
	if err := d.bus.ReadFromReg(d.addr, regGPIOA, buf[:]); err != nil {
		return 0, err
	}
	state := uint16(buf[1])<<8 | uint16(buf[0])
	glog.V(1).Infof("mcp23017: port state [%#04x]", state)
	return state, nil
}

// SetInterruptPin registers handler to run on each falling edge of the
// GPIO pin wired to the expander's INT line. The device must already
// be configured, otherwise an edge could observe a half-programmed
// chip.
func (d *MCP23017) SetInterruptPin(pin embd.DigitalPin, handler func()) error {
	if d.interruptPin != nil {
		// only one interrupt pin on this product
		return fmt.Errorf("mcp23017: interrupt pin has already been set to %v", d.interruptPin.N())
	}
	if !d.configured {
		return fmt.Errorf("mcp23017: device must be configured before arming interrupts")
	}

	if err := pin.SetDirection(embd.In); err != nil {
		return err
	}
	if err := pin.PullUp(); err != nil {
		// sysfs GPIO hosts can't program pulls; the INT line is
		// open-drain and usually has an external pull-up anyway.
		glog.V(1).Infof("mcp23017: no pull-up on pin %v: %v", pin.N(), err)
	}

	// INT is active low, so only listen for the falling edge.
	err := pin.Watch(embd.EdgeFalling, func(p embd.DigitalPin) {
		handler()
	})
	if err != nil {
		return err
	}

	d.interruptPin = pin
	return nil
}

// Close disconnects from the interrupt pin.
func (d *MCP23017) Close() error {
	if d.interruptPin == nil {
		return nil
	}

	if err := d.interruptPin.Close(); err != nil {
		return err
	}

	d.interruptPin = nil
	return nil
}
