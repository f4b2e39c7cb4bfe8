// Package notice is the single place the rest of the panel observes
// error/success state. Components receive a Notifier instead of reaching
// into ambient globals; the HTTP layer drains the queue per session.
package notice

import "sync"

type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// FallbackMessage is surfaced when an error carries no usable text.
const FallbackMessage = "Something went wrong!"

type Notice struct {
	Kind    Kind   `json:"type"`
	Message string `json:"message"`
}

// Notifier is the write side of the notice channel.
type Notifier interface {
	Error(message string)
	Success(message string)
}

// Center is a bounded FIFO of pending notices. One Center exists per admin
// session; all of that session's controllers and the wizard share it.
type Center struct {
	mu      sync.Mutex
	pending []Notice
}

const maxPending = 64

func NewCenter() *Center {
	return &Center{}
}

func (c *Center) Error(message string) {
	if message == "" {
		message = FallbackMessage
	}
	c.push(Notice{Kind: KindError, Message: message})
}

func (c *Center) Success(message string) {
	if message == "" {
		return
	}
	c.push(Notice{Kind: KindSuccess, Message: message})
}

func (c *Center) push(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) >= maxPending {
		c.pending = c.pending[1:]
	}
	c.pending = append(c.pending, n)
}

// Drain returns all pending notices and empties the queue.
func (c *Center) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.pending
	c.pending = nil
	return out
}
