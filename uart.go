// Thin wrapper over a hardware serial device. The termios work lives in
// the serial package; this only binds device path and speed, for callers
// that want a real UART next to the bit-banged output in shift.go.

package sbcio

import (
	"fmt"

	"github.com/tarm/serial"
)

type UART struct {
	device string
	port   *serial.Port
}

// OpenUART opens a serial device such as /dev/serial0 at the given baud
// rate.
func OpenUART(device string, baud int) (*UART, error) {
	port, e := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if e != nil {
		return nil, fmt.Errorf("opening serial device %s: %w", device, e)
	}
	return &UART{device: device, port: port}, nil
}

func (u *UART) Read(p []byte) (int, error) {
	return u.port.Read(p)
}

func (u *UART) Write(p []byte) (int, error) {
	return u.port.Write(p)
}

func (u *UART) Close() error {
	return u.port.Close()
}
