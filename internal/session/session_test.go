package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writex/internal/api"
	"writex/internal/credential"
	"writex/internal/models"
	"writex/internal/observability"
	"writex/internal/session"
	"writex/internal/testutil"
	"writex/internal/transport"
)

func newStore(b *testutil.Backend, creds *credential.MemoryStore) (*session.Store, *transport.Transport) {
	tr := b.NewTransport()
	return session.New(tr, api.NewAuth(tr), creds, observability.Discard()), tr
}

// assertConsistent checks that a credential is attached exactly when a user is present.
func assertConsistent(t *testing.T, s *session.Store) {
	t.Helper()
	_, hasUser := s.Current()
	assert.Equal(t, hasUser, s.Token() != "", "credential present iff session present")
	assert.Equal(t, hasUser, s.Status() == session.StatusAuthenticated)
}

func TestInitialize_NoCredential(t *testing.T) {
	b := testutil.StartBackend(t)
	s, _ := newStore(b, credential.NewMemoryStore())
	assert.Equal(t, session.StatusLoading, s.Status())

	s.Initialize(context.Background())
	assert.Equal(t, session.StatusAnonymous, s.Status())
	assertConsistent(t, s)
	assert.Zero(t, b.Requests(http.MethodGet, "/api/auth/me"))
}

func TestInitialize_ValidCredential(t *testing.T) {
	b := testutil.StartBackend(t)
	user := b.CreateUser(t, "alice")
	token, err := b.IssueToken(user.ID)
	require.NoError(t, err)

	creds := credential.NewMemoryStore()
	require.NoError(t, creds.Save(context.Background(), token))

	s, _ := newStore(b, creds)
	s.Initialize(context.Background())

	assert.Equal(t, session.StatusAuthenticated, s.Status())
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", current.Username)
	assert.Equal(t, token, s.Token())
	assertConsistent(t, s)
}

func TestInitialize_RejectedCredentialIsDiscarded(t *testing.T) {
	b := testutil.StartBackend(t)
	creds := credential.NewMemoryStore()
	require.NoError(t, creds.Save(context.Background(), "stale-token"))

	s, tr := newStore(b, creds)
	s.Initialize(context.Background())

	assert.Equal(t, session.StatusAnonymous, s.Status())
	assert.False(t, tr.HasCredential())
	persisted, err := creds.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
	assertConsistent(t, s)
}

func TestInitialize_NetworkFailureKeepsPersistedCredential(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	creds := credential.NewMemoryStore()
	require.NoError(t, creds.Save(context.Background(), "tok"))

	tr := transport.New(url, nil, observability.Discard())
	s := session.New(tr, api.NewAuth(tr), creds, observability.Discard())
	s.Initialize(context.Background())

	assert.Equal(t, session.StatusAnonymous, s.Status())
	assert.False(t, tr.HasCredential())
	persisted, _ := creds.Load(context.Background())
	assert.Equal(t, "tok", persisted, "only a backend rejection discards the credential")
}

func TestLogin_Success(t *testing.T) {
	b := testutil.StartBackend(t)
	b.CreateUser(t, "user")
	creds := credential.NewMemoryStore()
	s, _ := newStore(b, creds)
	s.Initialize(context.Background())

	res := s.Login(context.Background(), "user@x.com", "secret")
	require.True(t, res.Success, res.Message)
	assert.Empty(t, res.Message)

	assert.Equal(t, session.StatusAuthenticated, s.Status())
	current, _ := s.Current()
	assert.Equal(t, "user", current.Username)
	persisted, _ := creds.Load(context.Background())
	assert.Equal(t, s.Token(), persisted)
	assertConsistent(t, s)

	// The credential reaches later requests.
	me, err := api.NewAuth(transportWith(b, s.Token())).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, current.ID, me.ID)
}

func transportWith(b *testutil.Backend, token string) *transport.Transport {
	tr := b.NewTransport()
	tr.SetCredential(token)
	return tr
}

func TestLogin_Failures(t *testing.T) {
	b := testutil.StartBackend(t)
	b.CreateUser(t, "user")
	s, _ := newStore(b, credential.NewMemoryStore())
	s.Initialize(context.Background())

	res := s.Login(context.Background(), "user@x.com", "wrong")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)
	assertConsistent(t, s)

	b.FailNext(http.MethodPost, "/api/auth/login", http.StatusInternalServerError, "")
	res = s.Login(context.Background(), "user@x.com", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, "Login failed", res.Message)
	assert.Equal(t, session.StatusAnonymous, s.Status())
}

func TestLogin_ValidationSendsNothing(t *testing.T) {
	b := testutil.StartBackend(t)
	s, _ := newStore(b, credential.NewMemoryStore())
	s.Initialize(context.Background())

	res := s.Login(context.Background(), "  ", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, "Email is required", res.Message)
	assert.Zero(t, b.Requests(http.MethodPost, "/api/auth/login"))
}

func TestLogin_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := transport.New(url, nil, observability.Discard())
	s := session.New(tr, api.NewAuth(tr), credential.NewMemoryStore(), observability.Discard())
	s.Initialize(context.Background())

	res := s.Login(context.Background(), "user@x.com", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, "Login failed", res.Message)
}

func TestRegister(t *testing.T) {
	b := testutil.StartBackend(t)
	s, _ := newStore(b, credential.NewMemoryStore())
	s.Initialize(context.Background())

	res := s.Register(context.Background(), "carol", "carol@x.com", "secret")
	require.True(t, res.Success, res.Message)
	current, _ := s.Current()
	assert.Equal(t, "carol", current.Username)
	assertConsistent(t, s)

	s.Logout(context.Background())
	res = s.Register(context.Background(), "carol", "carol@x.com", "secret")
	assert.False(t, res.Success)
	assert.Equal(t, "User already exists", res.Message)

	res = s.RegisterForm(context.Background(), models.RegisterForm{
		Username: "dave", Email: "dave@x.com", Password: "secret", ConfirmPassword: "secret!",
	})
	assert.False(t, res.Success)
	assert.Equal(t, "Passwords do not match", res.Message)
	assert.Equal(t, 2, b.Requests(http.MethodPost, "/api/auth/register"), "mismatch never reaches the backend")
}

func TestLogout(t *testing.T) {
	b := testutil.StartBackend(t)
	c := b.SignIn(t, "alice")

	before := b.Requests(http.MethodGet, "/api/auth/me")
	c.Session.Logout(context.Background())

	assert.Equal(t, session.StatusAnonymous, c.Session.Status())
	assert.False(t, c.Transport.HasCredential())
	persisted, _ := c.Credentials.Load(context.Background())
	assert.Empty(t, persisted)
	assert.Equal(t, before, b.Requests(http.MethodGet, "/api/auth/me"))
	assertConsistent(t, c.Session)
}

func TestUpdateSession_ReplacesUser(t *testing.T) {
	b := testutil.StartBackend(t)
	c := b.SignIn(t, "alice")

	c.Session.UpdateSession(models.User{ID: c.User.ID, Username: "alice", Bio: "new bio"})
	current, _ := c.Session.Current()
	assert.Equal(t, "new bio", current.Bio)
	assert.Empty(t, current.Email, "fields are replaced, not merged")

	c.Session.Logout(context.Background())
	c.Session.UpdateSession(models.User{ID: "x"})
	_, ok := c.Session.Current()
	assert.False(t, ok, "no update without a session")
}

func TestSubscribe(t *testing.T) {
	b := testutil.StartBackend(t)
	b.CreateUser(t, "user")
	s, _ := newStore(b, credential.NewMemoryStore())

	var mu sync.Mutex
	var events []session.Event
	unsubscribe := s.Subscribe(func(ev session.Event) {
		// Readers observe the credential and the user together.
		assert.Equal(t, ev.User != nil, s.Token() != "")
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	s.Initialize(context.Background())
	s.Login(context.Background(), "user@x.com", "secret")
	s.Logout(context.Background())
	unsubscribe()
	s.Login(context.Background(), "user@x.com", "secret")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, session.StatusAnonymous, events[0].Status)
	assert.Equal(t, session.StatusAuthenticated, events[1].Status)
	assert.True(t, events[1].Changed)
	assert.Equal(t, session.StatusAnonymous, events[2].Status)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "loading", session.StatusLoading.String())
	assert.Equal(t, "authenticated", session.StatusAuthenticated.String())
	assert.Equal(t, "anonymous", session.StatusAnonymous.String())
}

func TestApplyFollow(t *testing.T) {
	b := testutil.StartBackend(t)
	c := b.SignIn(t, "alice")

	c.Session.ApplyFollow(c.User.ID, "bob-id", true)
	c.Session.ApplyFollow(c.User.ID, "carol-id", true)
	current, _ := c.Session.Current()
	assert.ElementsMatch(t, []string{"bob-id", "carol-id"}, current.Following)

	c.Session.ApplyFollow(c.User.ID, "bob-id", false)
	current, _ = c.Session.Current()
	assert.Equal(t, []string{"carol-id"}, current.Following)

	c.Session.ApplyFollow("someone-else", "dave-id", true)
	current, _ = c.Session.Current()
	assert.Equal(t, []string{"carol-id"}, current.Following, "update for another account is dropped")

	c.Session.Logout(context.Background())
	c.Session.ApplyFollow(c.User.ID, "dave-id", true)
	_, ok := c.Session.Current()
	assert.False(t, ok)
}

func TestInitialize_NoTokenReportedWhileValidating(t *testing.T) {
	b := testutil.StartBackend(t)
	user := b.CreateUser(t, "alice")
	token, err := b.IssueToken(user.ID)
	require.NoError(t, err)

	creds := credential.NewMemoryStore()
	require.NoError(t, creds.Save(context.Background(), token))
	s, tr := newStore(b, creds)

	entered, release := b.Hold(http.MethodGet, "/api/auth/me")
	defer release()
	done := make(chan struct{})
	go func() {
		s.Initialize(context.Background())
		close(done)
	}()
	<-entered

	assert.Equal(t, session.StatusLoading, s.Status())
	assert.Equal(t, token, tr.Credential(), "validation request carries the credential")
	assert.Empty(t, s.Token())
	_, ok := s.Current()
	assert.False(t, ok)

	release()
	<-done
	assert.Equal(t, session.StatusAuthenticated, s.Status())
	assert.Equal(t, token, s.Token())
	assertConsistent(t, s)
}
