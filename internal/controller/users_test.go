package controller_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writex/internal/notify"
	"writex/internal/testutil"
)

func TestUsers_LoadExcludesSelfAndFilters(t *testing.T) {
	f := newFixture(t)
	f.backend.CreateUser(t, "bob")
	f.backend.CreateUser(t, "carol")
	users := f.users()
	require.NoError(t, users.Load(context.Background()))

	names := func() []string {
		out := []string{}
		for _, u := range users.Filtered() {
			out = append(out, u.Username)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names())

	users.SetSearch("BO")
	assert.Equal(t, []string{"bob"}, names())
	users.SetSearch("carol@x.com")
	assert.Equal(t, []string{"carol"}, names())
	users.SetSearch("")
	assert.Len(t, users.All(), 2)
}

func TestUsers_ToggleFollowUpdatesSessionAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.backend.CreateUser(t, "bob")
	users := f.users()
	require.NoError(t, users.Load(ctx))
	assert.False(t, users.IsFollowing(bob.ID))

	res, err := users.ToggleFollow(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.IsFollowing)
	assert.True(t, users.IsFollowing(bob.ID))
	assert.Equal(t, notify.Notification{Level: notify.Success, Message: "User followed successfully"}, lastMessage(t, f.rec))

	me, _ := f.client.Session.Current()
	assert.Contains(t, me.Following, bob.ID)
	assert.Equal(t, []string{f.client.User.ID}, users.All()[0].Followers)

	_, err = users.ToggleFollow(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, users.IsFollowing(bob.ID))
	assert.Empty(t, users.All()[0].Followers)
	assert.Equal(t, "User unfollowed successfully", lastMessage(t, f.rec).Message)
}

func TestUsers_ToggleFollowFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.backend.CreateUser(t, "bob")
	users := f.users()
	require.NoError(t, users.Load(ctx))

	f.backend.FailNext(http.MethodPost, "/api/users/"+bob.ID+"/follow", http.StatusBadRequest, "Try again later")
	_, err := users.ToggleFollow(ctx, bob.ID)
	require.Error(t, err)
	assert.Equal(t, notify.Notification{Level: notify.Error, Message: "Try again later"}, lastMessage(t, f.rec))
	assert.False(t, users.IsFollowing(bob.ID))

	f.backend.FailNext(http.MethodPost, "/api/users/"+bob.ID+"/follow", http.StatusInternalServerError, "")
	_, err = users.ToggleFollow(ctx, bob.ID)
	require.Error(t, err)
	assert.Equal(t, "Failed to follow/unfollow user", lastMessage(t, f.rec).Message)
}

func TestUsers_OverlappingFollowsBothLand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.backend.CreateUser(t, "bob")
	carol := f.backend.CreateUser(t, "carol")
	users := f.users()
	require.NoError(t, users.Load(ctx))

	entered, release := f.backend.Hold(http.MethodPost, "/api/users/"+bob.ID+"/follow")
	defer release()
	done := make(chan error, 1)
	go func() {
		_, err := users.ToggleFollow(ctx, bob.ID)
		done <- err
	}()
	<-entered

	_, err := users.ToggleFollow(ctx, carol.ID)
	require.NoError(t, err)
	release()
	require.NoError(t, <-done)

	me, _ := f.client.Session.Current()
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, me.Following)
	assert.True(t, users.IsFollowing(bob.ID))
	assert.True(t, users.IsFollowing(carol.ID))
}

func TestUsers_FollowAfterAccountSwitchIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.backend.CreateUser(t, "bob")
	f.backend.CreateUser(t, "dave")
	users := f.users()
	require.NoError(t, users.Load(ctx))

	entered, release := f.backend.Hold(http.MethodPost, "/api/users/"+bob.ID+"/follow")
	defer release()
	done := make(chan error, 1)
	go func() {
		_, err := users.ToggleFollow(ctx, bob.ID)
		done <- err
	}()
	<-entered

	f.client.Session.Logout(ctx)
	require.True(t, f.client.Session.Login(ctx, "dave@x.com", testutil.Password).Success)
	release()
	<-done

	me, ok := f.client.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "dave", me.Username)
	assert.Empty(t, me.Following)
}
