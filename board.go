// Static per-board pin tables. A board maps logical pin names to BCM pin
// identifiers and carries the SoC peripheral base address; where a pin can
// do hardware PWM the table also records its alternate-function index and
// channel. The core consumes these as resolved construction parameters and
// performs no board detection of its own. Custom boards load from YAML.

package sbcio

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Offsets of the peripheral register blocks from the board base address,
// and the mapped window lengths (one page each).
const (
	gpioBlockOffset  = 0x200000
	pwmBlockOffset   = 0x20C000
	clockBlockOffset = 0x101000

	gpioBlockLength  = 4096
	pwmBlockLength   = 4096
	clockBlockLength = 4096
)

// PinSpec describes one pin of a board.
type PinSpec struct {
	Name         string        `yaml:"name"`
	BCM          Pin           `yaml:"bcm"`
	Capabilities CapabilitySet `yaml:"capabilities"`
	AltFunc      AltFunc       `yaml:"alt,omitempty"`
	PWMChannel   int           `yaml:"pwm_channel,omitempty"`
}

// Board is a static pin table plus the peripheral base address the pins'
// register blocks hang off.
type Board struct {
	Name           string    `yaml:"name"`
	PeripheralBase int64     `yaml:"peripheral_base"`
	Pins           []PinSpec `yaml:"pins"`
}

// GPIOBase returns the physical address of the board's GPIO register block.
func (b *Board) GPIOBase() int64 {
	return b.PeripheralBase + gpioBlockOffset
}

// Lookup finds a pin by its logical name. Search is case sensitive.
func (b *Board) Lookup(name string) (*PinSpec, error) {
	for i := range b.Pins {
		if b.Pins[i].Name == name {
			return &b.Pins[i], nil
		}
	}
	return nil, fmt.Errorf("board %s has no pin called %s", b.Name, name)
}

// MemPin returns a register-backed handle for a named pin.
func (b *Board) MemPin(name string) (*MemPin, error) {
	spec, e := b.Lookup(name)
	if e != nil {
		return nil, e
	}
	return NewMemPin(spec.BCM, b.GPIOBase()), nil
}

// FSPin returns a file-backed handle for a named pin.
func (b *Board) FSPin(name string) (*FSPin, error) {
	spec, e := b.Lookup(name)
	if e != nil {
		return nil, e
	}
	return NewFSPin(spec.BCM), nil
}

// PWM returns a generator bound to a named pin, which must be PWM capable.
func (b *Board) PWM(name string) (*PWM, error) {
	spec, e := b.Lookup(name)
	if e != nil {
		return nil, e
	}
	if !spec.Capabilities.Has(CAP_PWM) {
		return nil, fmt.Errorf("pin %s on board %s has no pwm capability", name, b.Name)
	}
	return NewPWM(spec.BCM, spec.AltFunc, spec.PWMChannel, b.PeripheralBase), nil
}

// LoadBoard reads a board definition in YAML form.
func LoadBoard(r io.Reader) (*Board, error) {
	var b Board
	if e := yaml.NewDecoder(r).Decode(&b); e != nil {
		return nil, fmt.Errorf("parsing board definition: %w", e)
	}
	if b.Name == "" {
		return nil, fmt.Errorf("board definition has no name")
	}
	if b.PeripheralBase == 0 {
		return nil, fmt.Errorf("board %s has no peripheral base address", b.Name)
	}
	if len(b.Pins) == 0 {
		return nil, fmt.Errorf("board %s defines no pins", b.Name)
	}
	return &b, nil
}

// The 40-pin header GPIOs shared by all Raspberry Pi models. PWM0 lives on
// GPIO12 (alt0) and GPIO18 (alt5), PWM1 on GPIO13 (alt0) and GPIO19 (alt5).
func raspberryPins() []PinSpec {
	gpio := CapabilitySet{CAP_INPUT, CAP_OUTPUT}
	pwm := CapabilitySet{CAP_INPUT, CAP_OUTPUT, CAP_PWM}

	pins := []PinSpec{}
	for bcm := 2; bcm <= 27; bcm++ {
		spec := PinSpec{
			Name:         fmt.Sprintf("GPIO%d", bcm),
			BCM:          Pin(bcm),
			Capabilities: gpio,
		}
		switch bcm {
		case 12:
			spec.Capabilities, spec.AltFunc, spec.PWMChannel = pwm, 0, 0
		case 13:
			spec.Capabilities, spec.AltFunc, spec.PWMChannel = pwm, 0, 1
		case 18:
			spec.Capabilities, spec.AltFunc, spec.PWMChannel = pwm, 5, 0
		case 19:
			spec.Capabilities, spec.AltFunc, spec.PWMChannel = pwm, 5, 1
		}
		pins = append(pins, spec)
	}
	return pins
}

// RaspberryPi is the original BCM2835 board (Pi 1, Zero, Zero W).
func RaspberryPi() *Board {
	return &Board{Name: "raspberrypi", PeripheralBase: 0x20000000, Pins: raspberryPins()}
}

// RaspberryPi2 covers the BCM2836/BCM2837 boards (Pi 2 and 3).
func RaspberryPi2() *Board {
	return &Board{Name: "raspberrypi2", PeripheralBase: 0x3F000000, Pins: raspberryPins()}
}

// RaspberryPi4 is the BCM2711 board.
func RaspberryPi4() *Board {
	return &Board{Name: "raspberrypi4", PeripheralBase: 0xFE000000, Pins: raspberryPins()}
}

// Boards returns the built-in board tables by name.
func Boards() map[string]*Board {
	boards := map[string]*Board{}
	for _, b := range []*Board{RaspberryPi(), RaspberryPi2(), RaspberryPi4()} {
		boards[b.Name] = b
	}
	return boards
}
