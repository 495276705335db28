// Package testutil provides shared fixtures for client tests: a fake backend
// on a loopback port and signed-in sessions against it.
package testutil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"writex/internal/api"
	"writex/internal/credential"
	"writex/internal/fakeapi"
	"writex/internal/models"
	"writex/internal/observability"
	"writex/internal/session"
	"writex/internal/transport"
)

// Password is used for every account created through Backend.
const Password = "secret"

// Backend is a running fake backend.
type Backend struct {
	*fakeapi.Server
	URL string
}

// Option adjusts the fake backend options.
type Option func(*fakeapi.Options)

// WithCommentDeleteMessageOnly makes comment deletion answer without a post.
func WithCommentDeleteMessageOnly() Option {
	return func(o *fakeapi.Options) { o.CommentDeleteMessageOnly = true }
}

// StartBackend serves a fresh fake backend on 127.0.0.1 and stops it when the
// test ends.
func StartBackend(t testing.TB, opts ...Option) *Backend {
	t.Helper()

	o := fakeapi.Options{Logger: observability.Discard(), BcryptCost: bcrypt.MinCost}
	for _, opt := range opts {
		opt(&o)
	}
	srv := fakeapi.New(o)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		if err := <-done; err != nil && !errors.Is(err, net.ErrClosed) {
			t.Logf("fake backend stopped: %v", err)
		}
	})

	return &Backend{Server: srv, URL: "http://" + ln.Addr().String()}
}

// NewTransport returns a transport pointed at the backend with no credential.
func (b *Backend) NewTransport() *transport.Transport {
	return transport.New(b.URL, &http.Client{Timeout: 5 * time.Second}, observability.Discard())
}

// CreateUser registers username directly on the backend.
func (b *Backend) CreateUser(t testing.TB, username string) models.User {
	t.Helper()
	u, err := b.Server.CreateUser(username, username+"@x.com", Password)
	require.NoError(t, err)
	return u
}

// Client is a signed-in client wired like the real app.
type Client struct {
	Transport   *transport.Transport
	Credentials *credential.MemoryStore
	Session     *session.Store
	User        models.User
}

// SignIn creates username on the backend and logs in through the session store.
func (b *Backend) SignIn(t testing.TB, username string) *Client {
	t.Helper()
	b.CreateUser(t, username)

	tr := b.NewTransport()
	creds := credential.NewMemoryStore()
	store := session.New(tr, api.NewAuth(tr), creds, observability.Discard())
	store.Initialize(context.Background())

	res := store.Login(context.Background(), username+"@x.com", Password)
	require.True(t, res.Success, res.Message)

	user, ok := store.Current()
	require.True(t, ok)
	return &Client{Transport: tr, Credentials: creds, Session: store, User: user}
}
