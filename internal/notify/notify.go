// Package notify delivers transient user-facing messages.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level is the kind of a notification.
type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

// Notification is one transient message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// WriterNotifier prints one line per notification.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a notifier printing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := "ok"
	switch level {
	case Error:
		prefix = "error"
	case Info:
		prefix = "info"
	}
	_, _ = fmt.Fprintf(n.w, "[%s] %s\n", prefix, message)
}

// LogNotifier sends notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	if level == Error {
		n.Logger.Warn("notification", slog.String("level", string(level)), slog.String("message", message))
		return
	}
	n.Logger.Info("notification", slog.String("level", string(level)), slog.String("message", message))
}

// Recorder keeps every notification. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: message})
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset drops recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		n.Notify(level, message)
	}
}
