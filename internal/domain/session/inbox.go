package session

import "sync"

// Inbox queues callbacks posted by background goroutines until the frame
// goroutine drains them.
type Inbox struct {
	mu      sync.Mutex
	pending []func()
}

// NewInbox creates an empty inbox
func NewInbox() *Inbox {
	return &Inbox{}
}

// Post queues fn. Safe for concurrent use.
func (in *Inbox) Post(fn func()) {
	if fn == nil {
		return
	}
	in.mu.Lock()
	in.pending = append(in.pending, fn)
	in.mu.Unlock()
}

// Len returns the number of queued callbacks
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Drain runs every queued callback in posting order on the calling
// goroutine and returns how many ran. Callbacks posted while draining run
// on the next call.
func (in *Inbox) Drain() int {
	in.mu.Lock()
	batch := in.pending
	in.pending = nil
	in.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
