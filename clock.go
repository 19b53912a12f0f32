package sbcio

// The PWM clock generator divides a fixed reference clock by an integer.
// Divisors in the upper half of the 12-bit field produce visible jitter, so
// the solver trades frequency precision for divisor range instead.

// pwmMaxDivisor is the largest value the clock manager's 12-bit integer
// divisor field can hold.
const pwmMaxDivisor = 4095

// SolveClockDivisor finds an integer divisor for deriving desiredHz from
// baseHz, keeping the divisor at or below half the representable maximum.
// While the divisor is out of range the sample-count scale is raised by
// powers of ten and the division redone; the caller multiplies its sample
// count by the returned scale to preserve the output period. The divisor is
// clamped to 1, a divisor of 0 being undefined on the hardware.
//
// Pure computation, no I/O.
func SolveClockDivisor(baseHz, desiredHz uint32) (divisor, scale uint32) {
	scale = 1
	divisor = uint32(uint64(baseHz) / uint64(desiredHz))
	for divisor > pwmMaxDivisor/2 {
		scale *= 10
		divisor = uint32(uint64(baseHz) / (uint64(desiredHz) * uint64(scale)))
	}
	if divisor < 1 {
		divisor = 1
	}
	return divisor, scale
}
