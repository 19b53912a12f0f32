package sbcio

import (
	"os"
	"testing"
)

// Sample the data pin on every rising clock edge, which is where a
// receiving shift register latches.
func sampleOnRisingEdge(data, clock *MockPin) *[]int {
	sampled := &[]int{}
	clock.OnWrite = func(v int) {
		if v == HIGH {
			*sampled = append(*sampled, data.level)
		}
	}
	return sampled
}

func TestShiftOutFrameMSBFirst(t *testing.T) {
	data := NewMockPin(2)
	clock := NewMockPin(3)
	sampled := sampleOnRisingEdge(data, clock)

	e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{0xB0}, Order: MSBFIRST})
	if e != nil {
		t.Fatal(e)
	}

	want := []int{1, 0, 1, 1, 0, 0, 0, 0}
	if len(*sampled) != len(want) {
		t.Fatalf("got %d clock pulses, want %d", len(*sampled), len(want))
	}
	for i, v := range want {
		if (*sampled)[i] != v {
			t.Errorf("bit %d sampled as %d, want %d", i, (*sampled)[i], v)
		}
	}

	// Every pulse is one high write followed by one low write.
	if len(clock.Writes) != 16 {
		t.Errorf("clock pin saw %d writes, want 16", len(clock.Writes))
	}
	for i, v := range clock.Writes {
		if want := (i + 1) % 2; v != want {
			t.Fatalf("clock write %d is %d, want %d", i, v, want)
		}
	}
}

func TestShiftOutFrameLSBFirst(t *testing.T) {
	data := NewMockPin(2)
	clock := NewMockPin(3)
	sampled := sampleOnRisingEdge(data, clock)

	if e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{0xB0}, Order: LSBFIRST}); e != nil {
		t.Fatal(e)
	}

	want := []int{0, 0, 0, 0, 1, 1, 0, 1}
	for i, v := range want {
		if (*sampled)[i] != v {
			t.Errorf("bit %d sampled as %d, want %d", i, (*sampled)[i], v)
		}
	}
}

func TestShiftOutFrameMultiByte(t *testing.T) {
	data := NewMockPin(2)
	clock := NewMockPin(3)
	sampled := sampleOnRisingEdge(data, clock)

	if e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{0xFF, 0x00}, Order: MSBFIRST}); e != nil {
		t.Fatal(e)
	}
	if len(*sampled) != 16 {
		t.Fatalf("got %d clock pulses for two bytes, want 16", len(*sampled))
	}
	for i := 0; i < 8; i++ {
		if (*sampled)[i] != 1 || (*sampled)[8+i] != 0 {
			t.Fatalf("byte boundary broken at bit %d", i)
		}
	}
}

func TestShiftOutFrameRegisterStrategy(t *testing.T) {
	mem := newFakeMemMap(32)
	data := newTestMemPin(0, mem)
	clock := newTestMemPin(1, mem)

	e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{0xB0}, Order: MSBFIRST})
	if e != nil {
		t.Fatal(e)
	}

	// The transfer always ends by lowering the clock, so the last store to
	// the clear register carries the clock mask.
	if v := mem.Read(gpioClear); v != 1<<1 {
		t.Errorf("final clear register is %#x, want clock mask %#x", v, uint32(1)<<1)
	}
}

func TestShiftOutFrameFileStrategy(t *testing.T) {
	data := newTestFSPin(t, 2)
	clock := newTestFSPin(t, 3)
	if e := data.SetMode(OUTPUT); e != nil {
		t.Fatal(e)
	}
	if e := clock.SetMode(OUTPUT); e != nil {
		t.Fatal(e)
	}

	if e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{0xB0}, Order: MSBFIRST}); e != nil {
		t.Fatal(e)
	}

	// 0xB0 MSB-first ends on a 0 bit; the clock always ends low.
	b, _ := os.ReadFile(data.valuePath())
	if string(b) != "0" {
		t.Errorf("data value file ends as %q, want \"0\"", b)
	}
	b, _ = os.ReadFile(clock.valuePath())
	if string(b) != "0" {
		t.Errorf("clock value file ends as %q, want \"0\"", b)
	}
}

func TestShiftOutFrameFileStrategyNeedsOutputMode(t *testing.T) {
	data := newTestFSPin(t, 2)
	clock := newTestFSPin(t, 3)
	if e := ShiftOutFrame(data, clock, Frame{Bytes: []byte{1}}); e == nil {
		t.Error("transfer on unconfigured fs pins should fail")
	}
}

func TestShiftOutSize(t *testing.T) {
	data := NewMockPin(2)
	clock := NewMockPin(3)
	sampled := sampleOnRisingEdge(data, clock)

	// Lowest 4 bits of 0b1011, msb first: 1,0,1,1.
	if e := ShiftOutSize(data, clock, 0xB, MSBFIRST, 4); e != nil {
		t.Fatal(e)
	}
	want := []int{1, 0, 1, 1}
	if len(*sampled) != 4 {
		t.Fatalf("got %d pulses, want 4", len(*sampled))
	}
	for i, v := range want {
		if (*sampled)[i] != v {
			t.Errorf("bit %d sampled as %d, want %d", i, (*sampled)[i], v)
		}
	}
}

func TestShiftOutMatchesFrameWaveform(t *testing.T) {
	// The convenience byte API and the frame API must clock out the same
	// waveform for the same byte.
	a, ac := NewMockPin(2), NewMockPin(3)
	sa := sampleOnRisingEdge(a, ac)
	ShiftOut(a, ac, 0xB0, MSBFIRST)

	b, bc := NewMockPin(2), NewMockPin(3)
	sb := sampleOnRisingEdge(b, bc)
	ShiftOutFrame(b, bc, Frame{Bytes: []byte{0xB0}, Order: MSBFIRST})

	if len(*sa) != len(*sb) {
		t.Fatalf("pulse counts differ: %d vs %d", len(*sa), len(*sb))
	}
	for i := range *sa {
		if (*sa)[i] != (*sb)[i] {
			t.Errorf("bit %d differs between APIs: %d vs %d", i, (*sa)[i], (*sb)[i])
		}
	}
}
