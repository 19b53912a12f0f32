// Memory-mapped access to peripheral registers. A MemMap is one contiguous
// window of physical address space exposed as word-sized reads and writes.
// Exactly one mapping exists per physical base address per process; pins and
// PWM channels sharing a peripheral block share the mapping.

package sbcio

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const memWordSize = 4

// Candidate devices for register access, in preference order. The gpiomem
// device works without root but the kernel restricts it to the GPIO block;
// /dev/mem covers the PWM and clock blocks as well.
var memDevices = []string{"/dev/gpiomem", "/dev/mem"}

// MemMap is a mapped window of peripheral registers, addressed in 32-bit
// words. Accessing a word outside the mapped length panics, as does use
// after Close; both are programming errors, not recoverable conditions.
type MemMap struct {
	base  int64
	mem8  []byte
	words []uint32
	mu    sync.Mutex
}

type memMapRef struct {
	mm   *MemMap
	refs int
}

var (
	memMapLock sync.Mutex
	memMaps    = make(map[int64]*memMapRef)
)

// OpenMemMap maps length bytes of physical address space starting at base.
// If the base is already mapped in this process the existing MemMap is
// shared; otherwise the best available memory device is opened, the window
// mapped, and the device closed again (the mapping outlives the descriptor).
func OpenMemMap(base int64, length int) (*MemMap, error) {
	memMapLock.Lock()
	defer memMapLock.Unlock()

	if ref := memMaps[base]; ref != nil {
		ref.refs++
		return ref.mm, nil
	}

	fd, e := openMemDevice()
	if e != nil {
		return nil, e
	}
	defer unix.Close(fd)

	mem8, e := unix.Mmap(fd, base, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if e != nil {
		// unix.Mmap already turns the MAP_FAILED sentinel into an error.
		return nil, fmt.Errorf("mmap of %d bytes at %#x: %v: %w", length, base, e, ErrMapFailed)
	}

	mm := &MemMap{
		base:  base,
		mem8:  mem8,
		words: unsafe.Slice((*uint32)(unsafe.Pointer(&mem8[0])), len(mem8)/memWordSize),
	}
	memMaps[base] = &memMapRef{mm: mm, refs: 1}
	return mm, nil
}

func openMemDevice() (int, error) {
	var lastErr error
	for _, dev := range memDevices {
		fd, e := unix.Open(dev, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
		if e == nil {
			return fd, nil
		}
		lastErr = e
	}
	return -1, fmt.Errorf("no memory device available (tried %v): %v: %w",
		memDevices, lastErr, ErrPermissionDenied)
}

// Read returns the register word at the given word offset.
func (m *MemMap) Read(offset uint32) uint32 {
	return m.words[offset]
}

// Write stores a whole word at the given word offset. Meant for write-only
// and self-clearing registers; for registers shared between pins use
// ReadModifyWrite so unrelated bit ranges survive.
func (m *MemMap) Write(offset uint32, value uint32) {
	m.mu.Lock()
	m.words[offset] = value
	m.mu.Unlock()
}

// ReadModifyWrite replaces only the masked bits of the word at offset.
func (m *MemMap) ReadModifyWrite(offset, mask, value uint32) {
	m.mu.Lock()
	m.words[offset] = (m.words[offset] &^ mask) | (value & mask)
	m.mu.Unlock()
}

// Close releases this owner's claim on the mapping and unmaps it once the
// last owner is gone. Accessors of an unmapped window panic.
func (m *MemMap) Close() error {
	memMapLock.Lock()
	defer memMapLock.Unlock()

	ref := memMaps[m.base]
	if ref == nil {
		return nil
	}
	ref.refs--
	if ref.refs > 0 {
		return nil
	}
	delete(memMaps, m.base)
	m.words = nil
	mem8 := m.mem8
	m.mem8 = nil
	return unix.Munmap(mem8)
}
