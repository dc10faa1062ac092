// Command arcade-bonnet translates Adafruit Arcade Bonnet button and
// joystick changes into virtual keyboard events, the same way the
// legacy retrogame handler does. It runs until killed.
package main

import (
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/kidoman/embd"

	_ "github.com/kidoman/embd/host/all"

	bonnet "github.com/adafruit/Adafruit-Retrogame"
)

var (
	addr     = flag.Int("addr", bonnet.DefaultAddress, "I2C address of the MCP23017 (0x27 with the address jumper closed)")
	bus      = flag.Int("bus", 1, "I2C bus the bonnet is attached to")
	irqPin   = flag.Int("irq", 17, "GPIO pin wired to the MCP23017 INT line")
	watchdog = flag.Duration("watchdog", bonnet.DefaultWatchdogInterval, "cadence of the port re-read that recovers missed interrupts")
)

func main() {
	flag.Parse()

	// uinput is usually built in or auto-loaded; if not, creating the
	// keyboard below fails with a clear diagnostic.
	if out, err := exec.Command("modprobe", "uinput").CombinedOutput(); err != nil {
		glog.Warningf("modprobe uinput: %v (%s)", err, out)
	}

	keyboard, err := bonnet.NewVirtualKeyboard("retrogame", bonnet.DefaultKeyMap)
	if err != nil {
		glog.Exitf("virtual keyboard: %v", err)
	}
	defer keyboard.Close()

	if err := embd.InitI2C(); err != nil {
		glog.Exitf("i2c init: %v", err)
	}
	defer embd.CloseI2C()

	if err := embd.InitGPIO(); err != nil {
		glog.Exitf("gpio init: %v", err)
	}
	defer embd.CloseGPIO()

	dev := bonnet.New(embd.NewI2CBus(byte(*bus)), byte(*addr))
	if err := dev.Configure(); err != nil {
		glog.Exitf("configure expander at %#02x: %v", *addr, err)
	}

	translator := bonnet.NewTranslator(dev, bonnet.DefaultKeyMap, keyboard)

	pin, err := embd.NewDigitalPin(*irqPin)
	if err != nil {
		glog.Exitf("open irq pin %d: %v", *irqPin, err)
	}
	// The expander is fully configured; edges may fire from here on.
	if err := dev.SetInterruptPin(pin, translator.HandleInterrupt); err != nil {
		glog.Exitf("arm irq pin %d: %v", *irqPin, err)
	}
	defer dev.Close()

	glog.Infof("arcade-bonnet: expander %#02x on bus %d, irq on GPIO %d", *addr, *bus, *irqPin)

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		glog.Infof("arcade-bonnet: %v, shutting down", s)
		close(stop)
	}()

	bonnet.NewWatchdog(dev, *watchdog).Run(stop)
}
