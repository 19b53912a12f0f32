package sbcio

import "testing"

func isPowerOfTen(v uint32) bool {
	for v%10 == 0 {
		v /= 10
	}
	return v == 1
}

func TestSolveClockDivisorKnownValues(t *testing.T) {
	cases := []struct {
		base, desired uint32
		divisor       uint32
		scale         uint32
	}{
		{500000000, 1000000, 500, 1},
		{19200000, 600000, 32, 1},   // the classic 19.2 MHz / 600 kHz
		{500000000, 250000000, 2, 1},
		{500000000, 10, 500, 100000}, // very slow target forces scaling
	}
	for _, c := range cases {
		d, s := SolveClockDivisor(c.base, c.desired)
		if d != c.divisor || s != c.scale {
			t.Errorf("SolveClockDivisor(%d, %d) = (%d, %d), want (%d, %d)",
				c.base, c.desired, d, s, c.divisor, c.scale)
		}
	}
}

func TestSolveClockDivisorBounds(t *testing.T) {
	for _, base := range []uint32{19200000, 500000000} {
		// Sweep desired frequencies across the valid range with a stride
		// that hits plenty of awkward non-divisor values.
		for f := uint32(1); f <= base/2; f = f*3 + 7 {
			d, s := SolveClockDivisor(base, f)
			if d < 1 {
				t.Fatalf("SolveClockDivisor(%d, %d) produced divisor %d < 1", base, f, d)
			}
			if d > pwmMaxDivisor/2 {
				t.Fatalf("SolveClockDivisor(%d, %d) produced divisor %d above the jitter bound", base, f, d)
			}
			if !isPowerOfTen(s) {
				t.Fatalf("SolveClockDivisor(%d, %d) produced scale %d, not a power of ten", base, f, s)
			}
		}
	}
}

func TestSolveClockDivisorClampsToOne(t *testing.T) {
	// Desired above base floors to 0 and must clamp.
	if d, _ := SolveClockDivisor(1000, 3000); d != 1 {
		t.Errorf("divisor for desired > base is %d, want 1", d)
	}
}
