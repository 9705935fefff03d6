// Package status implements the transient upload status banner.
package status

import (
	"sync"
	"time"
)

// Kind selects the banner style
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// DefaultTTL is how long a message stays visible
const DefaultTTL = 5 * time.Second

// Message is what the banner currently shows. The zero value is an empty banner.
type Message struct {
	Text      string
	Kind      Kind
	ExpiresAt time.Time
}

// Empty reports whether there is nothing to show
func (m Message) Empty() bool {
	return m.Text == ""
}

// Class is the CSS class of the banner
func (m Message) Class() string {
	switch {
	case m.Empty():
		return ""
	case m.Kind == Success:
		return "upload-success"
	default:
		return "upload-error"
	}
}

// Banner holds at most one message and clears it once its own deadline
// passes. A newer message is never cleared by an older message's timer.
type Banner struct {
	mu      sync.Mutex
	ttl     time.Duration
	current Message
	gen     uint64
	timer   *time.Timer
	now     func() time.Time
}

// New creates a banner whose messages expire after ttl
func New(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl, now: time.Now}
}

// Show replaces the current message and restarts the expiry clock
func (b *Banner) Show(text string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gen++
	gen := b.gen
	b.current = Message{Text: text, Kind: kind, ExpiresAt: b.now().Add(b.ttl)}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen == gen {
		b.current = Message{}
	}
}

// Current returns the visible message, or the zero Message once it expired
func (b *Banner) Current() Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.current.Empty() && !b.now().Before(b.current.ExpiresAt) {
		b.current = Message{}
	}
	return b.current
}

// Clear empties the banner immediately
func (b *Banner) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.current = Message{}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
