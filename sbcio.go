/*
	Package sbcio implements direct hardware access to GPIO pins, the
	on-chip PWM generator and bit-banged serial output on single-board
	computers, without requiring a kernel driver beyond /dev/mem (or
	/dev/gpiomem) and the sysfs GPIO interface.

	Pins come in two flavours selected at construction: MemPin manipulates
	the peripheral registers through a memory mapping, FSPin goes through
	the sysfs pseudo-files and works anywhere the kernel exposes them.
	Board tables (board.go) resolve logical pin names to the numbers and
	base addresses both flavours need.
*/
package sbcio

import "time"

// Delay execution by the specified number of milliseconds. Helper for
// Arduino-style sketches.
func Delay(duration int) {
	time.Sleep(time.Duration(duration) * time.Millisecond)
}

// Delay execution by the specified number of microseconds. The host kernel
// gives best-effort resolution only; this is not a real-time guarantee.
func DelayMicroseconds(duration int) {
	time.Sleep(time.Duration(duration) * time.Microsecond)
}

// Map a value from one range to another, the same as the Arduino map
// function. Truncates rather than rounds.
func Map(value int, fromLow int, fromHigh int, toLow int, toHigh int) int {
	return (value-fromLow)*(toHigh-toLow)/(fromHigh-fromLow) + toLow
}
