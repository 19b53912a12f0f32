package sbcio

import "testing"

// newFakeMemMap returns a MemMap backed by ordinary memory instead of a
// hardware mapping, for tests that assert on register contents.
func newFakeMemMap(words int) *MemMap {
	return &MemMap{words: make([]uint32, words)}
}

func TestMemMapReadWrite(t *testing.T) {
	m := newFakeMemMap(16)

	m.Write(3, 0xDEADBEEF)
	if v := m.Read(3); v != 0xDEADBEEF {
		t.Errorf("Read(3) returned %#x, want 0xDEADBEEF", v)
	}
	if v := m.Read(4); v != 0 {
		t.Errorf("Read(4) should be untouched, got %#x", v)
	}
}

func TestMemMapReadModifyWrite(t *testing.T) {
	m := newFakeMemMap(16)
	m.Write(0, 0xFFFF0000)

	// Only the masked bits may change.
	m.ReadModifyWrite(0, 0x00FF, 0x00AB)
	if v := m.Read(0); v != 0xFFFF00AB {
		t.Errorf("after masked write got %#x, want 0xFFFF00AB", v)
	}

	// Value bits outside the mask must be discarded.
	m.ReadModifyWrite(0, 0x00FF, 0xFFFF)
	if v := m.Read(0); v != 0xFFFF00FF {
		t.Errorf("after second masked write got %#x, want 0xFFFF00FF", v)
	}
}
