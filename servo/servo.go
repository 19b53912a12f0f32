// Hobby servo control on top of a hardware PWM channel. Servos expect a
// fixed frame, typically 20ms, with the position encoded in the width of
// the high pulse, typically 1000 to 2000 microseconds.
package servo

import (
	"github.com/sbcio/sbcio"
)

const (
	// default servo period, in milliseconds
	DEFAULT_SERVO_PERIOD = 20

	// defaults for servo pulse width, in microseconds
	DEFAULT_DUTY_MIN = 1000
	DEFAULT_DUTY_MAX = 2000
)

// Generator is the slice of the PWM surface a servo needs. sbcio.PWM
// satisfies it.
type Generator interface {
	StartDuty(periodNs, dutyNs int64) error
	Stop() error
}

type Servo struct {
	pwm      Generator
	periodNs int64
	minDuty  int // min pulse width in microseconds
	maxDuty  int // max pulse width in microseconds
}

// Create a new servo on the given generator, which must already be
// initialised. No pulse is emitted until the first Write.
func New(pwm Generator) *Servo {
	result := &Servo{pwm: pwm}
	result.SetPeriod(DEFAULT_SERVO_PERIOD)
	result.SetRange(DEFAULT_DUTY_MIN, DEFAULT_DUTY_MAX)
	return result
}

// Set the period of each frame. Servos generally want this fixed, typically
// at 20ms; the new period takes effect on the next Write.
func (servo *Servo) SetPeriod(milliseconds int) {
	servo.periodNs = int64(milliseconds) * 1000000
}

// Set the servo to the specified angle, typically 0-180. This sets the
// pulse width proportionally between min and max, which default to the
// 1000-2000 microsecond range.
func (servo *Servo) Write(angle int) error {
	return servo.WriteMicroseconds(sbcio.Map(angle, 0, 180, servo.minDuty, servo.maxDuty))
}

// Like the Arduino Servo.writeMicroseconds function. This sets the pulse
// width directly, so it is possible to write values too small or too large
// for the servo to track.
func (servo *Servo) WriteMicroseconds(ms int) error {
	return servo.pwm.StartDuty(servo.periodNs, int64(ms)*1000)
}

// Set the minimum and maximum pulse width in microseconds. Write maps 0-180
// to these values.
func (servo *Servo) SetRange(min int, max int) {
	servo.minDuty = min
	servo.maxDuty = max
}

// Detach stops the pulse train. Most servos go limp without a signal.
func (servo *Servo) Detach() error {
	return servo.pwm.Stop()
}
