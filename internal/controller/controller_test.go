package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/observability"
)

func TestCollectionHelpers(t *testing.T) {
	items := []models.Note{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}

	got := prepend(items, models.Note{ID: "c"})
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))

	replaced := replaceByKey(items, models.Note{ID: "b", Title: "B2"})
	assert.Equal(t, "B2", replaced[1].Title)
	assert.Equal(t, "B", items[1].Title, "input is not modified")

	assert.Equal(t, items, replaceByKey(items, models.Note{ID: "zz"}))

	removed := removeByKey(items, "a")
	assert.Equal(t, []string{"b"}, ids(removed))
	assert.Len(t, items, 2)

	n, ok := findByKey(items, "b")
	assert.True(t, ok)
	assert.Equal(t, "B", n.Title)
	_, ok = findByKey(items, "nope")
	assert.False(t, ok)
}

func ids(notes []models.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestAcquire(t *testing.T) {
	rec := &notify.Recorder{}
	b := newBase("test", rec, observability.Discard())

	release, err := b.acquire("k")
	assert.NoError(t, err)
	assert.True(t, b.Busy("k"))

	_, err = b.acquire("k")
	assert.True(t, models.IsCode(err, models.CodeBusy))
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: BusyMessage}}, rec.All())

	_, err = b.acquire("other")
	assert.NoError(t, err, "keys are independent")

	release()
	assert.False(t, b.Busy("k"))
}

func TestFailMessage(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		preferServer bool
		want         string
	}{
		{"validation always shown", models.NewValidationError("Title is required"), false, "Title is required"},
		{"server message ignored", models.NewResponseError(500, "db down"), false, "fallback"},
		{"server message preferred", models.NewResponseError(400, "Post not found"), true, "Post not found"},
		{"no server message", models.NewResponseError(500, ""), true, "fallback"},
		{"network", models.NewNetworkError(errors.New("refused")), true, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &notify.Recorder{}
			b := newBase("test", rec, observability.Discard())
			err := b.fail(context.Background(), tt.err, "fallback", tt.preferServer)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: tt.want}}, rec.All())
		})
	}
}

func TestAutoConfirm(t *testing.T) {
	assert.True(t, AutoConfirm(true).Confirm(context.Background(), "t", "m"))
	assert.False(t, AutoConfirm(false).Confirm(context.Background(), "t", "m"))
}
