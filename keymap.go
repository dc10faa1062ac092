package bonnet

import (
	evdev "github.com/holoplot/go-evdev"
)

// KeyMap assigns a keyboard code to each of the 16 expander port bits.
// A zero entry marks a pin that is not connected; it never produces
// events.
type KeyMap [16]evdev.EvCode

// DefaultKeyMap matches the Arcade Bonnet silkscreen and the keys
// EmulationStation expects out of the box.
var DefaultKeyMap = KeyMap{
	evdev.KEY_LEFTCTRL, // 1A            'A' button
	evdev.KEY_LEFTALT,  // 1B            'B' button
	evdev.KEY_Z,        // 1C            'X' button
	evdev.KEY_X,        // 1D            'Y' button
	evdev.KEY_SPACE,    // 1E            'Select' button
	evdev.KEY_ENTER,    // 1F            'Start' button
	0,                  // bit 6 not connected
	0,                  // bit 7 not connected
	evdev.KEY_DOWN,     // 4-way down    D-pad down
	evdev.KEY_UP,       // 4-way up      D-pad up
	evdev.KEY_RIGHT,    // 4-way right   D-pad right
	evdev.KEY_LEFT,     // 4-way left    D-pad left
	evdev.KEY_L,        // analog right
	evdev.KEY_H,        // analog left
	evdev.KEY_J,        // analog down
	evdev.KEY_K,        // analog up
}

// Codes returns the distinct mapped key codes in bit order. The
// virtual keyboard advertises exactly this set.
func (m KeyMap) Codes() []evdev.EvCode {
	seen := make(map[evdev.EvCode]bool, len(m))
	codes := make([]evdev.EvCode, 0, len(m))
	for _, code := range m {
		if code == 0 || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
