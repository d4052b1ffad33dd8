// internal/notify/notify.go

// Package notify carries success/failure events out of the ledger engine
// for display. Notifiers are purely observational; nothing feeds back
// into engine state.
package notify

import (
	"log/slog"
	"sync"
)

// Variant distinguishes success events from failures.
type Variant string

const (
	VariantSuccess     Variant = "success"
	VariantDestructive Variant = "destructive"
)

// Event is a single user-facing notification.
type Event struct {
	Variant Variant
	Title   string
	Message string
}

// Notifier receives an event from every mutation outcome.
type Notifier interface {
	Publish(event Event)
}

// SlogNotifier writes events to a structured logger.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a Notifier backed by logger.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Publish(event Event) {
	if event.Variant == VariantDestructive {
		n.logger.Error(event.Title, "message", event.Message)
		return
	}
	n.logger.Info(event.Title, "message", event.Message)
}

// Recorder keeps every published event in memory for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
