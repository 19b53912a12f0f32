// Register-backed pin controller. Pin direction goes through the 3-bit
// function-select fields, levels through the dedicated set/clear/level
// registers. Layout per the BCM283x datasheet (page 90 onwards): six fsel
// words of 10 pins x 3 bits each, then banked set, clear and level words.

package sbcio

import "fmt"

// Word offsets within the GPIO register block.
const (
	gpioFSel  = 0  // function select, 3 bits per pin
	gpioSet   = 7  // output set, write-only, self-clearing
	gpioClear = 10 // output clear, write-only, self-clearing
	gpioLevel = 13 // input level
)

const (
	fselMask   uint32 = 7 // function select field is 3 bits
	fselOutput uint32 = 1
)

// MemPin drives one pin through a mapped GPIO register window. The window
// is mapped lazily on first access and shared with every other pin on the
// same base address; Close releases this pin's claim on it.
type MemPin struct {
	pin  Pin
	base int64
	mem  *MemMap
}

// NewMemPin returns a register-backed pin handle. gpioBase is the physical
// address of the GPIO register block, normally Board.GPIOBase(). No I/O
// happens until the pin is first used.
func NewMemPin(pin Pin, gpioBase int64) *MemPin {
	return &MemPin{pin: pin, base: gpioBase}
}

// Map the register window if this pin does not hold one yet. A pin already
// backed by a mapped window must not remap.
func (p *MemPin) ensureMapped() error {
	if p.mem != nil {
		return nil
	}
	mem, e := OpenMemMap(p.base, gpioBlockLength)
	if e != nil {
		return fmt.Errorf("pin %d: %w", p.pin, e)
	}
	p.mem = mem
	return nil
}

func (p *MemPin) fselField() (word, shift uint32) {
	return uint32(p.pin) / 10, (uint32(p.pin) % 10) * 3
}

func (p *MemPin) SetMode(mode PinIOMode) error {
	if e := p.ensureMapped(); e != nil {
		return e
	}
	word, shift := p.fselField()
	value := uint32(0)
	if mode == OUTPUT {
		value = fselOutput << shift
	}
	// Clearing the field first also resets any alternate function the pin
	// was muxed to.
	p.mem.ReadModifyWrite(gpioFSel+word, fselMask<<shift, value)
	return nil
}

func (p *MemPin) Mode() (PinIOMode, error) {
	if e := p.ensureMapped(); e != nil {
		return INPUT, e
	}
	word, shift := p.fselField()
	if (p.mem.Read(gpioFSel+word)>>shift)&fselMask == fselOutput {
		return OUTPUT, nil
	}
	return INPUT, nil
}

func (p *MemPin) DigitalWrite(value int) error {
	if e := p.ensureMapped(); e != nil {
		return e
	}
	p.writeLevel(value)
	return nil
}

// writeLevel assumes the window is mapped. The set and clear registers are
// write-only and self-clearing, so a plain store of the pin's mask is both
// correct and atomic with respect to other pins in the same bank.
func (p *MemPin) writeLevel(value int) {
	bank := uint32(p.pin) / 32
	mask := uint32(1) << (uint32(p.pin) & 31)
	if value == LOW {
		p.mem.Write(gpioClear+bank, mask)
	} else {
		p.mem.Write(gpioSet+bank, mask)
	}
}

func (p *MemPin) DigitalRead() (int, error) {
	if e := p.ensureMapped(); e != nil {
		return 0, e
	}
	bank := uint32(p.pin) / 32
	mask := uint32(1) << (uint32(p.pin) & 31)
	if p.mem.Read(gpioLevel+bank)&mask != 0 {
		return HIGH, nil
	}
	return LOW, nil
}

func (p *MemPin) RegisterBacked() bool {
	return true
}

// Close releases the pin's claim on the register window. Other pins sharing
// the base address keep observing a valid mapping.
func (p *MemPin) Close() error {
	if p.mem == nil {
		return nil
	}
	mem := p.mem
	p.mem = nil
	return mem.Close()
}
