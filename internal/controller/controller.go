// Package controller holds the view state of each dashboard screen. A
// controller changes its collection only after the backend acknowledged the
// change, and always with the server's representation.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/observability"
)

// SessionView is the part of the session store controllers read and update.
type SessionView interface {
	Current() (models.User, bool)
	UpdateSession(user models.User)
	ApplyFollow(userID, targetID string, following bool)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, title, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, title, message string) bool {
	return f(ctx, title, message)
}

// AutoConfirm answers every confirmation with answer.
func AutoConfirm(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string, string) bool { return answer })
}

// BusyMessage is shown when a second mutation for the same item is attempted.
const BusyMessage = "Please wait for the current request to finish"

type keyed interface {
	Key() string
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// replaceByKey returns a copy of items with the element sharing item's key
// replaced. Items without a match are returned unchanged.
func replaceByKey[T keyed](items []T, item T) []T {
	i := slices.IndexFunc(items, func(x T) bool { return x.Key() == item.Key() })
	if i < 0 {
		return items
	}
	out := slices.Clone(items)
	out[i] = item
	return out
}

func removeByKey[T keyed](items []T, key string) []T {
	return slices.DeleteFunc(slices.Clone(items), func(x T) bool { return x.Key() == key })
}

func findByKey[T keyed](items []T, key string) (T, bool) {
	i := slices.IndexFunc(items, func(x T) bool { return x.Key() == key })
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

// inflight tracks items with a mutation in progress.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (f *inflight) begin(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = make(map[string]struct{})
	}
	if _, ok := f.keys[key]; ok {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inflight) end(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}

func (f *inflight) busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

// base carries what every controller shares.
type base struct {
	name     string
	notifier notify.Notifier
	logger   *slog.Logger
	flight   inflight
}

func newBase(name string, n notify.Notifier, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.LogNotifier{Logger: logger}
	}
	return base{name: name, notifier: n, logger: logger.With(slog.String("controller", name))}
}

// Busy reports whether a mutation for key is in flight. Hosts use it to
// disable the matching control.
func (b *base) Busy(key string) bool {
	return b.flight.busy(key)
}

// acquire claims key for one mutation. The caller must call the returned
// release when done.
func (b *base) acquire(key string) (release func(), err error) {
	if !b.flight.begin(key) {
		observability.BusyRejectionsTotal.WithLabelValues(b.name).Inc()
		b.notifier.Notify(notify.Error, BusyMessage)
		return nil, models.NewBusyError(key)
	}
	return func() { b.flight.end(key) }, nil
}

func (b *base) success(message string) {
	b.notifier.Notify(notify.Success, message)
}

// fail notifies fallback, or the server message when preferServer is set,
// and returns err. Validation messages are always shown as is.
func (b *base) fail(ctx context.Context, err error, fallback string, preferServer bool) error {
	msg := fallback
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr) && appErr.Code == models.CodeValidation:
		msg = appErr.Message
	case preferServer:
		msg = models.MessageOr(err, fallback)
	}
	b.logger.WarnContext(ctx, fallback, slog.String("error", err.Error()))
	b.notifier.Notify(notify.Error, msg)
	return err
}

// Busy keys. One key per item, shared by every mutation of that item.
const (
	KeyCreatePost = "create:post"
	KeyCreateNote = "create:note"
	KeyProfile    = "profile"
)

func PostKey(id string) string { return "post:" + id }
func NoteKey(id string) string { return "note:" + id }
func UserKey(id string) string { return "user:" + id }
