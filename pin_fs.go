// File-backed pin controller using the Linux sysfs GPIO interface. This is
// the portability escape hatch used when no register window is available or
// wanted. The value file is kept open across operations; re-seeking and
// writing is an order of magnitude faster than re-opening per write.

package sbcio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const defaultGPIOClassPath = "/sys/class/gpio"

// FSPin drives one pin through the export/direction/value pseudo-files.
// It also carries the pin's interrupt-callback state; see watcher.go.
type FSPin struct {
	pin       Pin
	root      string
	exported  bool
	direction PinIOMode
	valueFile *os.File
	watch     *watcher
}

// NewFSPin returns a file-backed pin handle. No I/O happens until the pin
// is first used.
func NewFSPin(pin Pin) *FSPin {
	return &FSPin{pin: pin, root: defaultGPIOClassPath}
}

func (p *FSPin) gpioDir() string {
	return p.root + "/gpio" + strconv.Itoa(int(p.pin))
}

func (p *FSPin) valuePath() string     { return p.gpioDir() + "/value" }
func (p *FSPin) directionPath() string { return p.gpioDir() + "/direction" }
func (p *FSPin) edgePath() string      { return p.gpioDir() + "/edge" }

// export allocates the pin in sysfs. Exporting an already-exported pin is
// idempotent: if the pin directory exists the control write is skipped, and
// an "exists" failure from the kernel is ignored.
func (p *FSPin) export() error {
	if p.exported {
		return nil
	}
	if _, e := os.Stat(p.gpioDir()); e == nil {
		p.exported = true
		return nil
	}
	e := writeStringToFile(p.root+"/export", strconv.Itoa(int(p.pin)))
	// The kernel answers EBUSY when the pin is already exported.
	if e != nil && !os.IsExist(e) && !errors.Is(e, unix.EBUSY) {
		return fmt.Errorf("exporting pin %d: %w", p.pin, e)
	}
	p.exported = true
	return nil
}

func (p *FSPin) unexport() error {
	if !p.exported {
		return nil
	}
	p.exported = false
	return writeStringToFile(p.root+"/unexport", strconv.Itoa(int(p.pin)))
}

func (p *FSPin) SetMode(mode PinIOMode) error {
	if e := p.export(); e != nil {
		return e
	}
	dir := "in"
	openMode := os.O_RDONLY
	if mode == OUTPUT {
		// Read-write so a driven pin can still be read back.
		dir = "out"
		openMode = os.O_RDWR
	}
	if e := writeStringToFile(p.directionPath(), dir); e != nil {
		return e
	}

	if p.valueFile != nil {
		p.valueFile.Close()
	}
	f, e := os.OpenFile(p.valuePath(), openMode, 0666)
	if e != nil {
		return e
	}
	p.valueFile = f
	p.direction = mode
	return nil
}

// Mode reads the direction back from the pseudo-file. Anything other than
// "in" or "out" means the kernel interface is broken, which is surfaced
// rather than mapped to a default.
func (p *FSPin) Mode() (PinIOMode, error) {
	if e := p.export(); e != nil {
		return INPUT, e
	}
	b, e := os.ReadFile(p.directionPath())
	if e != nil {
		return INPUT, e
	}
	switch strings.TrimSpace(string(b)) {
	case "in":
		return INPUT, nil
	case "out":
		return OUTPUT, nil
	}
	return INPUT, fmt.Errorf("direction file for pin %d holds %q: %w", p.pin, b, ErrProtocolViolation)
}

func (p *FSPin) DigitalWrite(value int) error {
	if p.valueFile == nil {
		return fmt.Errorf("pin %d has no open value file; call SetMode first", p.pin)
	}
	return p.writeValue(value)
}

// writeValue performs one single-character value write on the open file.
func (p *FSPin) writeValue(value int) error {
	if _, e := p.valueFile.Seek(0, 0); e != nil {
		return e
	}
	b := []byte{'0'}
	if value != LOW {
		b[0] = '1'
	}
	n, e := p.valueFile.Write(b)
	if e != nil || n != 1 {
		return fmt.Errorf("writing value of pin %d: %v: %w", p.pin, e, ErrIOFailure)
	}
	return nil
}

func (p *FSPin) DigitalRead() (int, error) {
	if p.valueFile == nil {
		return 0, fmt.Errorf("pin %d has no open value file; call SetMode first", p.pin)
	}
	var b [1]byte
	n, e := p.valueFile.ReadAt(b[:], 0)
	if n < 1 {
		return 0, fmt.Errorf("value file for pin %d is empty: %v: %w", p.pin, e, ErrProtocolViolation)
	}
	switch b[0] {
	case '0':
		return LOW, nil
	case '1':
		return HIGH, nil
	}
	return 0, fmt.Errorf("value file for pin %d holds %q: %w", p.pin, b[0], ErrProtocolViolation)
}

func (p *FSPin) RegisterBacked() bool {
	return false
}

// Close stops any interrupt watcher, closes the value file and unexports
// the pin. The watcher is joined before its descriptors go away so a
// blocked edge wait never races a close.
func (p *FSPin) Close() error {
	if e := p.ClearInterrupts(); e != nil {
		return e
	}
	if p.valueFile != nil {
		p.valueFile.Close()
		p.valueFile = nil
	}
	return p.unexport()
}

// Write a string value to a file, such as the sysfs control files. The file
// is opened and closed per write; these are one-shot configuration writes,
// not the hot path.
func writeStringToFile(filename string, value string) error {
	f, e := os.OpenFile(filename, os.O_WRONLY|os.O_TRUNC, 0666)
	if e != nil {
		return e
	}
	defer f.Close()

	_, e = f.WriteString(value)
	return e
}
