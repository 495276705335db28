// Package guard decides which screen may render for the current session state.
package guard

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"writex/internal/session"
)

// State mirrors the session lifecycle as seen by routing.
type State int

const (
	Loading State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Screens known to the client.
const (
	ScreenHome      = "/"
	ScreenLogin     = "/login"
	ScreenRegister  = "/register"
	ScreenDashboard = "/dashboard"
	ScreenNotes     = "/dashboard/notes"
	ScreenProfile   = "/dashboard/profile"
	ScreenUsers     = "/dashboard/users"
)

// Action is what the host should do for a screen request.
type Action int

const (
	Render Action = iota
	Redirect
	Placeholder
	NotFound
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Placeholder:
		return "placeholder"
	default:
		return "not-found"
	}
}

// Decision is the routing outcome. Target is set for Redirect only.
type Decision struct {
	Action Action
	Target string
}

// ErrInvalidTransition is returned for transitions outside the lifecycle.
var ErrInvalidTransition = errors.New("invalid guard transition")

var allowed = map[State][]State{
	Loading:       {Authenticated, Anonymous},
	Authenticated: {Anonymous},
	Anonymous:     {Authenticated},
}

// Guard holds the routing state. It starts in Loading.
type Guard struct {
	mu     sync.RWMutex
	state  State
	logger *slog.Logger
}

// New returns a guard in Loading.
func New(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{state: Loading, logger: logger.With(slog.String("component", "guard"))}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Transition moves the guard to next. Transitions not in the lifecycle are
// rejected, logged, and leave the state unchanged.
func (g *Guard) Transition(next State) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, s := range allowed[g.state] {
		if s == next {
			g.logger.Debug("guard transition", slog.String("from", g.state.String()), slog.String("to", next.String()))
			g.state = next
			return nil
		}
	}
	g.logger.Warn("rejected guard transition", slog.String("from", g.state.String()), slog.String("to", next.String()))
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.state, next)
}

// Follow keeps the guard in step with store. The returned function stops following.
func (g *Guard) Follow(store *session.Store) (stop func()) {
	stop = store.Subscribe(func(ev session.Event) {
		if !ev.Changed {
			return
		}
		_ = g.Transition(fromStatus(ev.Status))
	})
	// Catch up if the store already left Loading.
	if st := fromStatus(store.Status()); st != Loading && g.State() != st {
		_ = g.Transition(st)
	}
	return stop
}

func fromStatus(s session.Status) State {
	switch s {
	case session.StatusAuthenticated:
		return Authenticated
	case session.StatusAnonymous:
		return Anonymous
	default:
		return Loading
	}
}

// Decide applies the routing policy to path in the current state.
func (g *Guard) Decide(path string) Decision {
	return Decide(g.State(), path)
}

// Decide applies the routing policy to path in state.
func Decide(state State, path string) Decision {
	if state == Loading {
		return Decision{Action: Placeholder}
	}
	path = normalize(path)
	authed := state == Authenticated

	switch {
	case path == ScreenHome:
		if authed {
			return Decision{Action: Redirect, Target: ScreenDashboard}
		}
		return Decision{Action: Redirect, Target: ScreenLogin}
	case path == ScreenLogin, path == ScreenRegister:
		if authed {
			return Decision{Action: Redirect, Target: ScreenDashboard}
		}
		return Decision{Action: Render}
	case IsProtected(path):
		if !authed {
			return Decision{Action: Redirect, Target: ScreenLogin}
		}
		return Decision{Action: Render}
	default:
		return Decision{Action: NotFound}
	}
}

// IsProtected reports whether path requires an authenticated session.
func IsProtected(path string) bool {
	path = normalize(path)
	return path == ScreenDashboard || strings.HasPrefix(path, ScreenDashboard+"/")
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return ScreenHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
