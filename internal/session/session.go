// Package session owns the authenticated identity of the client process and
// the credential attached to the shared transport.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"writex/internal/models"
	"writex/internal/observability"
	"writex/internal/validation"
)

// Status is the lifecycle state of the session.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after every change. User is nil unless
// Status is StatusAuthenticated.
type Event struct {
	Status Status
	User   *models.User
	// Changed is false when only the user was replaced.
	Changed bool
}

// Result is the outcome of Login and Register.
type Result struct {
	Success bool
	Message string
}

// AuthAPI is the subset of the auth resource client the store calls.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// CredentialStore persists the token between runs.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Transport is the credential surface of the shared transport.
type Transport interface {
	SetCredential(token string)
	ClearCredential()
	Credential() string
}

// Store is the single owner of the session. The transport credential is only
// changed while mu is held together with the session fields, so a reader never
// sees a user without a credential or the reverse once loading is over.
type Store struct {
	transport Transport
	auth      AuthAPI
	creds     CredentialStore
	logger    *slog.Logger

	mu     sync.Mutex
	status Status
	user   *models.User

	subMu     sync.Mutex
	subs      map[int]func(Event)
	nextSubID int
}

// New returns a store in StatusLoading. Call Initialize before use.
func New(t Transport, auth AuthAPI, creds CredentialStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		transport: t,
		auth:      auth,
		creds:     creds,
		logger:    logger.With(slog.String("component", "session")),
		status:    StatusLoading,
		subs:      make(map[int]func(Event)),
	}
}

// Initialize restores a persisted credential and validates it against the
// backend. It always leaves the store Authenticated or Anonymous.
func (s *Store) Initialize(ctx context.Context) {
	if s.Status() != StatusLoading {
		s.logger.WarnContext(ctx, "session already initialized")
		return
	}

	token, err := s.creds.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load persisted credential", slog.String("error", err.Error()))
	}
	if token == "" {
		s.setAnonymous(ctx)
		return
	}

	s.attach(token)
	user, err := s.auth.Me(ctx)
	if err != nil {
		if models.IsUnauthorized(err) {
			s.logger.InfoContext(ctx, "persisted credential rejected, discarding")
			if clearErr := s.creds.Clear(ctx); clearErr != nil {
				s.logger.ErrorContext(ctx, "failed to clear persisted credential", slog.String("error", clearErr.Error()))
			}
		} else {
			s.logger.WarnContext(ctx, "could not validate persisted credential", slog.String("error", err.Error()))
		}
		s.setAnonymous(ctx)
		return
	}

	s.setAuthenticated(ctx, token, *user)
}

// Login authenticates with email and password. Failures are reported in the
// Result, never as an error.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	const fallback = "Login failed"

	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(req); err != nil {
		return Result{Message: models.MessageOr(err, fallback)}
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "login failed", slog.String("error", err.Error()))
		return Result{Message: models.MessageOr(err, fallback)}
	}
	return s.accept(ctx, resp, fallback)
}

// Register creates an account and signs in as it.
func (s *Store) Register(ctx context.Context, username, email, password string) Result {
	const fallback = "Registration failed"

	req := models.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validation.Struct(req); err != nil {
		return Result{Message: models.MessageOr(err, fallback)}
	}
	return s.register(ctx, req, fallback)
}

// RegisterForm is Register with the password confirmation check of the
// registration screen.
func (s *Store) RegisterForm(ctx context.Context, form models.RegisterForm) Result {
	const fallback = "Registration failed"

	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Struct(form); err != nil {
		return Result{Message: models.MessageOr(err, fallback)}
	}
	return s.register(ctx, form.Request(), fallback)
}

func (s *Store) register(ctx context.Context, req models.RegisterRequest, fallback string) Result {
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "registration failed", slog.String("error", err.Error()))
		return Result{Message: models.MessageOr(err, fallback)}
	}
	return s.accept(ctx, resp, fallback)
}

func (s *Store) accept(ctx context.Context, resp *models.AuthResponse, fallback string) Result {
	if resp.Token == "" || resp.User.ID == "" {
		s.logger.WarnContext(ctx, "auth response without token or user")
		return Result{Message: fallback}
	}
	// The session still works for this process if persisting fails.
	if err := s.creds.Save(ctx, resp.Token); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist credential", slog.String("error", err.Error()))
	}
	s.setAuthenticated(ctx, resp.Token, resp.User)
	return Result{Success: true}
}

// Logout forgets the credential and the session. No request is sent.
func (s *Store) Logout(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear persisted credential", slog.String("error", err.Error()))
	}
	s.setAnonymous(ctx)
}

// UpdateSession replaces the session user with user. Fields are not merged.
// It is ignored unless the store is Authenticated.
func (s *Store) UpdateSession(user models.User) {
	s.mu.Lock()
	if s.status != StatusAuthenticated {
		s.mu.Unlock()
		s.logger.Warn("ignoring session update without an authenticated session")
		return
	}
	u := user
	s.user = &u
	ev := s.eventLocked(false)
	s.mu.Unlock()

	s.publish(ev)
}

// ApplyFollow records in the session user's following set whether they follow
// targetID. The change is made under the store lock on the live user, and is
// dropped when the session no longer belongs to userID.
func (s *Store) ApplyFollow(userID, targetID string, following bool) {
	s.mu.Lock()
	if s.status != StatusAuthenticated || s.user == nil || s.user.ID != userID {
		s.mu.Unlock()
		s.logger.Info("dropping follow update for a session that changed", slog.String("user_id", userID))
		return
	}
	u := s.user.WithFollowing(targetID, following)
	s.user = &u
	ev := s.eventLocked(false)
	s.mu.Unlock()

	s.publish(ev)
}

// Current returns a copy of the session user.
func (s *Store) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Status returns the lifecycle state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Token returns the credential of the session. It is "" unless the store is
// Authenticated, even while Initialize is validating a persisted credential.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAuthenticated {
		return ""
	}
	return s.transport.Credential()
}

// Subscribe registers fn for every subsequent event. Handlers run on the
// goroutine that caused the change and must not call back into Subscribe.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// attach sets the credential for the validation request of Initialize. The
// store stays Loading until setAuthenticated or setAnonymous.
func (s *Store) attach(token string) {
	s.mu.Lock()
	s.transport.SetCredential(token)
	s.mu.Unlock()
}

func (s *Store) setAuthenticated(ctx context.Context, token string, user models.User) {
	s.mu.Lock()
	prev := s.status
	s.transport.SetCredential(token)
	u := user
	s.user = &u
	s.status = StatusAuthenticated
	ev := s.eventLocked(prev != StatusAuthenticated)
	s.mu.Unlock()

	s.logger.InfoContext(observability.WithUserID(ctx, user.ID), "session authenticated")
	s.transitioned(ev)
}

func (s *Store) setAnonymous(ctx context.Context) {
	s.mu.Lock()
	prev := s.status
	s.transport.ClearCredential()
	s.user = nil
	s.status = StatusAnonymous
	ev := s.eventLocked(prev != StatusAnonymous)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session anonymous")
	s.transitioned(ev)
}

func (s *Store) transitioned(ev Event) {
	if ev.Changed {
		observability.SessionTransitionsTotal.WithLabelValues(ev.Status.String()).Inc()
	}
	s.publish(ev)
}

func (s *Store) eventLocked(changed bool) Event {
	ev := Event{Status: s.status, Changed: changed}
	if s.user != nil {
		u := *s.user
		ev.User = &u
	}
	return ev
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	handlers := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.subMu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
