package sbcio

// Definitions relating to pins.
type PinIOMode int

// The modes for SetMode.
const (
	INPUT PinIOMode = iota
	OUTPUT
)

// String representation of pin IO mode
func (mode PinIOMode) String() string {
	switch mode {
	case INPUT:
		return "INPUT"
	case OUTPUT:
		return "OUTPUT"
	}
	return ""
}

// Convenience constants for digital pin values.
const (
	HIGH = 1
	LOW  = 0
)

// Pin identifies a physical pin within a controller's addressing scheme.
// The value is stable for the lifetime of a pin handle.
type Pin int

// DigitalPin is the capability interface every pin backend implements.
// There are two concrete variants: MemPin drives the pin through mapped
// peripheral registers, FSPin goes through the sysfs pseudo-files. The
// variant is selected at construction, not by runtime dispatch.
type DigitalPin interface {
	// Set the pin direction.
	SetMode(mode PinIOMode) error

	// Report the pin direction as the hardware currently has it.
	Mode() (PinIOMode, error)

	// Drive the pin to HIGH or LOW.
	DigitalWrite(value int) error

	// Read the pin level, HIGH or LOW.
	DigitalRead() (int, error)

	// RegisterBacked reports whether this pin uses the low-latency mapped
	// register path. ShiftOutFrame uses it to pick a transfer strategy.
	RegisterBacked() bool
}
