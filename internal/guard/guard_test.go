package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writex/internal/api"
	"writex/internal/credential"
	"writex/internal/observability"
	"writex/internal/session"
	"writex/internal/testutil"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    []State
		to      State
		wantErr bool
	}{
		{"Loading to Authenticated", nil, Authenticated, false},
		{"Loading to Anonymous", nil, Anonymous, false},
		{"Loading to Loading", nil, Loading, true},
		{"Authenticated to Anonymous", []State{Authenticated}, Anonymous, false},
		{"Authenticated to Loading", []State{Authenticated}, Loading, true},
		{"Authenticated to Authenticated", []State{Authenticated}, Authenticated, true},
		{"Anonymous to Authenticated", []State{Anonymous}, Authenticated, false},
		{"Anonymous to Loading", []State{Anonymous}, Loading, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(observability.Discard())
			for _, s := range tt.from {
				require.NoError(t, g.Transition(s))
			}
			before := g.State()
			err := g.Transition(tt.to)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, before, g.State(), "rejected transition leaves state unchanged")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, g.State())
			}
		})
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		state State
		path  string
		want  Decision
	}{
		{Loading, ScreenDashboard, Decision{Action: Placeholder}},
		{Loading, ScreenLogin, Decision{Action: Placeholder}},
		{Anonymous, ScreenHome, Decision{Action: Redirect, Target: ScreenLogin}},
		{Authenticated, ScreenHome, Decision{Action: Redirect, Target: ScreenDashboard}},
		{Anonymous, ScreenLogin, Decision{Action: Render}},
		{Anonymous, ScreenRegister, Decision{Action: Render}},
		{Authenticated, ScreenLogin, Decision{Action: Redirect, Target: ScreenDashboard}},
		{Authenticated, ScreenRegister, Decision{Action: Redirect, Target: ScreenDashboard}},
		{Anonymous, ScreenDashboard, Decision{Action: Redirect, Target: ScreenLogin}},
		{Anonymous, ScreenNotes, Decision{Action: Redirect, Target: ScreenLogin}},
		{Anonymous, ScreenProfile + "/", Decision{Action: Redirect, Target: ScreenLogin}},
		{Authenticated, ScreenUsers, Decision{Action: Render}},
		{Authenticated, ScreenNotes + "?q=x", Decision{Action: Render}},
		{Authenticated, "/elsewhere", Decision{Action: NotFound}},
		{Authenticated, "/dashboardx", Decision{Action: NotFound}},
	}
	for _, tt := range tests {
		t.Run(tt.state.String()+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.path))
		})
	}
}

func TestFollow(t *testing.T) {
	b := testutil.StartBackend(t)
	b.CreateUser(t, "user")

	tr := b.NewTransport()
	store := session.New(tr, api.NewAuth(tr), credential.NewMemoryStore(), observability.Discard())
	g := New(observability.Discard())
	stop := g.Follow(store)
	defer stop()

	assert.Equal(t, Decision{Action: Placeholder}, g.Decide(ScreenDashboard))

	store.Initialize(context.Background())
	assert.Equal(t, Anonymous, g.State())
	assert.Equal(t, ScreenLogin, g.Decide(ScreenDashboard).Target)

	res := store.Login(context.Background(), "user@x.com", "secret")
	require.True(t, res.Success)
	assert.Equal(t, Authenticated, g.State())
	assert.Equal(t, Render, g.Decide(ScreenNotes).Action)

	// Replacing the user is not a transition.
	current, _ := store.Current()
	store.UpdateSession(current)
	assert.Equal(t, Authenticated, g.State())

	store.Logout(context.Background())
	assert.Equal(t, Anonymous, g.State())
}

func TestFollow_CatchesUp(t *testing.T) {
	b := testutil.StartBackend(t)
	c := b.SignIn(t, "alice")

	g := New(observability.Discard())
	stop := g.Follow(c.Session)
	defer stop()
	assert.Equal(t, Authenticated, g.State())
}
