package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writex/internal/config"
	"writex/internal/testutil"
)

type harness struct {
	t       *testing.T
	backend *testutil.Backend
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	b := testutil.StartBackend(t)
	return &harness{t: t, backend: b, cfg: &config.Config{
		APIBaseURL:         b.URL,
		Env:                "test",
		HTTPTimeoutSeconds: 5,
		CredentialStore:    config.CredentialStoreFile,
		CredentialPath:     filepath.Join(t.TempDir(), "credentials.json"),
		LogLevel:           "error",
	}}
}

func (h *harness) run(stdin string, args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errw bytes.Buffer
	code = run(context.Background(), h.cfg, args, streams{in: strings.NewReader(stdin), out: &out, err: &errw})
	return code, out.String(), errw.String()
}

func TestCLI_LoginPersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)
	h.backend.CreateUser(t, "alice")

	code, out, _ := h.run("", "whoami")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Not signed in\n", out)

	code, out, _ = h.run("", "login", "alice@x.com", testutil.Password)
	require.Equal(t, 0, code)
	assert.Equal(t, "Signed in as alice\n", out)

	code, out, _ = h.run("", "whoami")
	assert.Equal(t, 0, code)
	assert.Equal(t, "alice <alice@x.com>\n", out)

	code, out, _ = h.run("", "login", "alice@x.com", testutil.Password)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Already signed in as alice\n", out)
	assert.Equal(t, 1, h.backend.Requests("POST", "/api/auth/login"))

	code, out, _ = h.run("", "logout")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Signed out\n", out)

	code, _, errOut := h.run("", "posts", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Not signed in")
}

func TestCLI_LoginFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.CreateUser(t, "alice")

	code, _, errOut := h.run("", "login", "alice@x.com", "wrong-password")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Invalid credentials\n", errOut)
}

func TestCLI_RegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run("", "register", "bob", "bob@x.com", "secret1", "secret2")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Passwords do not match\n", errOut)
	assert.Zero(t, h.backend.Requests("POST", "/api/auth/register"))

	code, out, _ := h.run("", "register", "bob", "bob@x.com", "secret1")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Signed in as bob\n", out)
}

func TestCLI_PostsFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.CreateUser(t, "alice")
	code, _, _ := h.run("", "login", "alice@x.com", testutil.Password)
	require.Equal(t, 0, code)

	code, out, _ := h.run("", "posts", "create", "hello", "world")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "[ok] Post created successfully!")
	assert.Contains(t, out, "hello world")
	id := strings.Fields(strings.SplitN(out, "\n", 3)[1])[0]

	code, out, _ = h.run("", "posts", "like", id)
	assert.Equal(t, 0, code)
	assert.Equal(t, "liked "+id+" (1 likes)\n", out)

	// Declined at the prompt: nothing is sent.
	code, out, _ = h.run("n\n", "posts", "delete", id)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Are you sure you want to delete this post?")
	assert.Zero(t, h.backend.Requests("DELETE", "/api/posts/"+id))

	code, out, _ = h.run("", "-yes", "posts", "delete", id)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[ok] Post deleted successfully!\n", out)

	code, out, _ = h.run("", "posts", "list")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
}

func TestCLI_NotesFilterAndFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.CreateUser(t, "alice")
	code, _, _ := h.run("", "login", "alice@x.com", testutil.Password)
	require.Equal(t, 0, code)

	code, _, _ = h.run("", "notes", "create", "Groceries", "milk", "home")
	require.Equal(t, 0, code)
	code, _, _ = h.run("", "notes", "create", "Work", "ship it")
	require.Equal(t, 0, code)

	code, out, _ := h.run("", "-q", "milk", "notes", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Groceries  [home]")
	assert.NotContains(t, out, "Work")

	h.backend.FailNext("POST", "/api/notes", 500, "")
	code, out, _ = h.run("", "notes", "create", "Later", "body")
	assert.Equal(t, 1, code)
	assert.Equal(t, "[error] Failed to create note\n", out)
}

func TestCLI_Route(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("", "route", "/dashboard/notes")
	assert.Equal(t, 0, code)
	assert.Equal(t, "redirect /login\n", out)

	code, out, _ = h.run("", "route", "/nowhere")
	assert.Equal(t, 0, code)
	assert.Equal(t, "not-found\n", out)
}

func TestCLI_Usage(t *testing.T) {
	h := newHarness(t)

	code, _, errOut := h.run("")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: writex")

	code, _, _ = h.run("", "bogus")
	assert.Equal(t, 2, code)
}
