package engine

import "sync"

type request struct {
	cmd   Command
	reply chan Result
}

// inbox is an unbounded FIFO between producers and the processor loop. push
// never blocks and never drops; the only loss is a queued UpdateDrag being
// overwritten by a newer one.
type inbox struct {
	mu     sync.Mutex
	queue  []request
	signal chan struct{}
	closed bool
}

func newInbox() *inbox {
	return &inbox{signal: make(chan struct{}, 1)}
}

func (in *inbox) push(r request) bool {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return false
	}
	if n := len(in.queue); n > 0 && coalescable(r) && coalescable(in.queue[n-1]) {
		in.queue[n-1] = r
	} else {
		in.queue = append(in.queue, r)
	}
	in.mu.Unlock()

	select {
	case in.signal <- struct{}{}:
	default:
	}
	return true
}

func coalescable(r request) bool {
	_, ok := r.cmd.(UpdateDrag)
	return ok && r.reply == nil
}

func (in *inbox) drain() []request {
	in.mu.Lock()
	defer in.mu.Unlock()
	q := in.queue
	in.queue = nil
	return q
}

func (in *inbox) close() {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()
}

func (in *inbox) len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue)
}
