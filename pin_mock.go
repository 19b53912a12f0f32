package sbcio

// A mock pin used for unit testing. It records every mode and level change
// so tests can assert on the exact waveform a caller produced.
type MockPin struct {
	pin   Pin
	mode  PinIOMode
	level int

	// Writes holds every level written, in order.
	Writes []int
	// ModeChanges holds every mode assigned, in order.
	ModeChanges []PinIOMode
	// OnWrite, when set, observes each write as it lands. Used to sample
	// other pins at clock edges.
	OnWrite func(value int)
}

func NewMockPin(pin Pin) *MockPin {
	return &MockPin{pin: pin}
}

func (p *MockPin) SetMode(mode PinIOMode) error {
	p.mode = mode
	p.ModeChanges = append(p.ModeChanges, mode)
	return nil
}

func (p *MockPin) Mode() (PinIOMode, error) {
	return p.mode, nil
}

func (p *MockPin) DigitalWrite(value int) error {
	p.level = value
	p.Writes = append(p.Writes, value)
	if p.OnWrite != nil {
		p.OnWrite(value)
	}
	return nil
}

func (p *MockPin) DigitalRead() (int, error) {
	return p.level, nil
}

func (p *MockPin) RegisterBacked() bool {
	return false
}

// MockSetLevel plants a level for a subsequent DigitalRead, emulating the
// outside world driving an input pin.
func (p *MockPin) MockSetLevel(value int) {
	p.level = value
}
