// Software-timed synchronous serial output over two ordinary pins. Each bit
// is placed on the data pin, then the clock pin is pulsed high and low. Two
// strategies exist because unbuffered pseudo-file writes cost a kernel
// round trip per transition, which dominates timing at pin toggle rates;
// the register strategy avoids it. Both emit the identical waveform.

package sbcio

import "fmt"

type BitShiftOrder byte

const (
	LSBFIRST BitShiftOrder = iota
	MSBFIRST
)

// Frame is one serial transfer: a byte sequence, the bit order to clock it
// out in, and an optional delay between raising and lowering the clock.
// A delay of 0 means as fast as possible. Frames are transient, built and
// consumed per transfer.
type Frame struct {
	Bytes       []byte
	Order       BitShiftOrder
	DelayMicros int
}

func (f Frame) eachBit(emit func(bit int) error) error {
	for _, b := range f.Bytes {
		for i := 0; i < 8; i++ {
			bit := int(b>>i) & 1
			if f.Order == MSBFIRST {
				bit = int(b>>(7-i)) & 1
			}
			if e := emit(bit); e != nil {
				return e
			}
		}
	}
	return nil
}

// ShiftOutFrame clocks the frame onto the data pin. The strategy is picked
// per call: register-backed pins toggle through direct register writes,
// file-backed pins reuse their already-open unbuffered value files for the
// whole transfer. A write failure aborts immediately; bits already clocked
// out stay on the bus, there is no transactional rollback.
func ShiftOutFrame(data, clock DigitalPin, frame Frame) error {
	if dm, ok := data.(*MemPin); ok && data.RegisterBacked() {
		if cm, ok := clock.(*MemPin); ok {
			return shiftOutMem(dm, cm, frame)
		}
	}
	if df, ok := data.(*FSPin); ok {
		if cf, ok := clock.(*FSPin); ok {
			return shiftOutFS(df, cf, frame)
		}
	}
	return shiftOutGeneric(data, clock, frame)
}

// Register strategy: one register write per transition, nothing else on the
// path once both windows are mapped.
func shiftOutMem(data, clock *MemPin, frame Frame) error {
	if e := data.ensureMapped(); e != nil {
		return e
	}
	if e := clock.ensureMapped(); e != nil {
		return e
	}
	return frame.eachBit(func(bit int) error {
		data.writeLevel(bit)
		clock.writeLevel(HIGH)
		if frame.DelayMicros > 0 {
			DelayMicroseconds(frame.DelayMicros)
		}
		clock.writeLevel(LOW)
		return nil
	})
}

// File strategy: both value files stay open across the transfer and every
// transition is a single-character write. os.File is unbuffered, so each
// write reaches the kernel immediately.
func shiftOutFS(data, clock *FSPin, frame Frame) error {
	if data.valueFile == nil || clock.valueFile == nil {
		return fmt.Errorf("shift out needs both pins set to OUTPUT first")
	}
	return frame.eachBit(func(bit int) error {
		if e := data.writeValue(bit); e != nil {
			return e
		}
		if e := clock.writeValue(HIGH); e != nil {
			return e
		}
		if frame.DelayMicros > 0 {
			DelayMicroseconds(frame.DelayMicros)
		}
		return clock.writeValue(LOW)
	})
}

func shiftOutGeneric(data, clock DigitalPin, frame Frame) error {
	return frame.eachBit(func(bit int) error {
		if e := data.DigitalWrite(bit); e != nil {
			return e
		}
		if e := clock.DigitalWrite(HIGH); e != nil {
			return e
		}
		if frame.DelayMicros > 0 {
			DelayMicroseconds(frame.DelayMicros)
		}
		return clock.DigitalWrite(LOW)
	})
}

// The approximate mapping of Arduino shiftOut, this shifts a byte out on
// the data pin, pulsing the clock pin high and then low.
func ShiftOut(data, clock DigitalPin, value uint, order BitShiftOrder) error {
	return ShiftOutSize(data, clock, value, order, 8)
}

// More generic version of ShiftOut which shifts out n bits of data from
// value. The value shifted is always the lowest n bits, but 'order'
// determines whether the msb or lsb of those are shifted first.
func ShiftOutSize(data, clock DigitalPin, value uint, order BitShiftOrder, n uint) error {
	bit := uint(0)
	v := value
	mask := uint(1) << (n - 1)
	for i := uint(0); i < n; i++ {
		if order == LSBFIRST {
			bit = v & 1
			v = v >> 1
		} else {
			bit = v & mask
			if bit != 0 {
				bit = 1
			}
			v = v << 1
		}
		if e := data.DigitalWrite(int(bit)); e != nil {
			return e
		}
		if e := clock.DigitalWrite(HIGH); e != nil {
			return e
		}
		if e := clock.DigitalWrite(LOW); e != nil {
			return e
		}
	}
	return nil
}
