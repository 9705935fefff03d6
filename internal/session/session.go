// Package session holds the per-browser page state: the status banner, the
// draft of a rejected upload and the upload-in-flight flag.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dconn.dev/projectgrid/internal/status"
)

// Draft holds the text fields of a rejected upload so the form can be shown
// again with them filled in. Files cannot be pre-filled.
type Draft struct {
	Title       string
	Description string
	Type        string
	FileInfo    string
}

// Session is the state of one browser
type Session struct {
	id     string
	banner *status.Banner

	mu       sync.Mutex
	draft    Draft
	lastSeen time.Time

	uploading atomic.Bool
}

// New creates a session with a fresh id whose banner messages last ttl
func New(ttl time.Duration) *Session {
	return &Session{
		id:       uuid.NewString(),
		banner:   status.New(ttl),
		lastSeen: time.Now(),
	}
}

// ID returns the session id carried by the cookie
func (s *Session) ID() string {
	return s.id
}

// Show puts a message on this session's banner
func (s *Session) Show(text string, kind status.Kind) {
	s.banner.Show(text, kind)
}

// Status returns the visible banner message
func (s *Session) Status() status.Message {
	return s.banner.Current()
}

// Draft returns the retained form values
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the retained form values; the zero Draft resets the form
func (s *Session) SetDraft(d Draft) {
	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// BeginUpload marks an upload as in flight. It returns false if one already is.
func (s *Session) BeginUpload() bool {
	return s.uploading.CompareAndSwap(false, true)
}

// EndUpload clears the in-flight flag
func (s *Session) EndUpload() {
	s.uploading.Store(false)
}

// Uploading reports whether an upload is in flight
func (s *Session) Uploading() bool {
	return s.uploading.Load()
}

// Close drops the banner and its pending expiry timer
func (s *Session) Close() {
	s.banner.Clear()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type ctxKey struct{}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
