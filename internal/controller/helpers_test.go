package controller_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"writex/internal/api"
	"writex/internal/controller"
	"writex/internal/notify"
	"writex/internal/observability"
	"writex/internal/testutil"
)

type fixture struct {
	backend *testutil.Backend
	client  *testutil.Client
	rec     *notify.Recorder
}

func newFixture(t *testing.T, opts ...testutil.Option) *fixture {
	t.Helper()
	b := testutil.StartBackend(t, opts...)
	return &fixture{backend: b, client: b.SignIn(t, "alice"), rec: &notify.Recorder{}}
}

func (f *fixture) posts(confirm bool) *controller.Posts {
	return controller.NewPosts(api.NewPosts(f.client.Transport), f.client.Session, f.rec, controller.AutoConfirm(confirm), observability.Discard())
}

func (f *fixture) notes(confirm bool) *controller.Notes {
	return controller.NewNotes(api.NewNotes(f.client.Transport), f.rec, controller.AutoConfirm(confirm), observability.Discard())
}

func (f *fixture) profile() *controller.Profile {
	return controller.NewProfile(api.NewUsers(f.client.Transport), f.client.Session, f.rec, observability.Discard())
}

func (f *fixture) users() *controller.Users {
	return controller.NewUsers(api.NewUsers(f.client.Transport), f.client.Session, f.rec, observability.Discard())
}

func lastMessage(t *testing.T, rec *notify.Recorder) notify.Notification {
	t.Helper()
	n, ok := rec.Last()
	require.True(t, ok, "expected a notification")
	return n
}
