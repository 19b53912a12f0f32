// Edge-triggered interrupt delivery for file-backed pins. Registering any
// callback arms the pin: direction in, edge mode "both", one throwaway read
// to discard the stale value, then a single background goroutine that
// blocks in poll(2) on priority-readiness of the value file. A pipe shares
// the poll so teardown can wake the goroutine without waiting for an edge.

package sbcio

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// InterruptHandler is invoked from the pin's watcher goroutine when an edge
// is observed. Handlers must not block for long; the next edge is not
// polled for until the handler returns.
type InterruptHandler func(pin Pin)

type watcher struct {
	pin *FSPin

	mu      sync.Mutex
	rising  InterruptHandler
	falling InterruptHandler
	change  InterruptHandler

	valueFd int
	wakeR   int
	wakeW   int
	stop    chan struct{}
	done    chan struct{}
}

// OnRising registers a callback for low-to-high edges, arming the watcher
// if the pin has none yet.
func (p *FSPin) OnRising(fn InterruptHandler) error {
	return p.setHandler(func(w *watcher) { w.rising = fn })
}

// OnFalling registers a callback for high-to-low edges.
func (p *FSPin) OnFalling(fn InterruptHandler) error {
	return p.setHandler(func(w *watcher) { w.falling = fn })
}

// OnChange registers a callback for any edge. It runs after the rising or
// falling callback for the same edge.
func (p *FSPin) OnChange(fn InterruptHandler) error {
	return p.setHandler(func(w *watcher) { w.change = fn })
}

// All callback kinds share one watcher; no more than one goroutine ever
// watches a pin.
func (p *FSPin) setHandler(assign func(*watcher)) error {
	if p.watch == nil {
		w, e := p.arm()
		if e != nil {
			return e
		}
		p.watch = w
	}
	p.watch.mu.Lock()
	assign(p.watch)
	p.watch.mu.Unlock()
	return nil
}

// ClearInterrupts removes all callbacks, stops the watcher goroutine and
// joins it before closing its descriptors. Safe to call on an unarmed pin.
func (p *FSPin) ClearInterrupts() error {
	if p.watch == nil {
		return nil
	}
	w := p.watch
	p.watch = nil
	return w.teardown()
}

func (p *FSPin) arm() (*watcher, error) {
	if e := p.SetMode(INPUT); e != nil {
		return nil, e
	}
	if e := writeStringToFile(p.edgePath(), "both"); e != nil {
		return nil, fmt.Errorf("setting edge mode of pin %d: %w", p.pin, e)
	}

	fd, e := unix.Open(p.valuePath(), unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if e != nil {
		return nil, fmt.Errorf("opening value file of pin %d: %w", p.pin, e)
	}

	// Discard the pin's current value; only transitions from here on
	// should be delivered.
	var stale [1]byte
	unix.Pread(fd, stale[:], 0)

	var pipeFds [2]int
	if e := unix.Pipe2(pipeFds[:], unix.O_CLOEXEC); e != nil {
		unix.Close(fd)
		return nil, e
	}

	w := &watcher{
		pin:     p,
		valueFd: fd,
		wakeR:   pipeFds[0],
		wakeW:   pipeFds[1],
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer close(w.done)

	fds := []unix.PollFd{
		{Fd: int32(w.valueFd), Events: unix.POLLPRI | unix.POLLERR},
		{Fd: int32(w.wakeR), Events: unix.POLLIN},
	}
	var value [1]byte

	for {
		fds[0].Revents = 0
		fds[1].Revents = 0
		_, e := unix.Poll(fds, -1)
		if e == unix.EINTR {
			continue
		}
		select {
		case <-w.stop:
			return
		default:
		}
		if e != nil || fds[1].Revents != 0 {
			return
		}
		if fds[0].Revents&unix.POLLPRI == 0 {
			continue
		}

		// An edge occurred; re-read the value from the start of the file.
		n, e := unix.Pread(w.valueFd, value[:], 0)
		if e != nil || n < 1 {
			return
		}
		w.dispatch(value[0])
	}
}

// dispatch delivers one observed edge: falling for '0', rising for '1',
// then the change callback regardless of polarity.
func (w *watcher) dispatch(value byte) {
	w.mu.Lock()
	rising, falling, change := w.rising, w.falling, w.change
	w.mu.Unlock()

	switch value {
	case '0':
		if falling != nil {
			falling(w.pin.pin)
		}
	case '1':
		if rising != nil {
			rising(w.pin.pin)
		}
	}
	if change != nil {
		change(w.pin.pin)
	}
}

func (w *watcher) teardown() error {
	close(w.stop)
	unix.Write(w.wakeW, []byte{0})
	<-w.done

	unix.Close(w.valueFd)
	unix.Close(w.wakeR)
	unix.Close(w.wakeW)
	return writeStringToFile(w.pin.edgePath(), "none")
}
