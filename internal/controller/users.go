package controller

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"writex/internal/models"
	"writex/internal/notify"
)

// UsersAPI is the users resource client.
type UsersAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.UserProfile, error)
	ToggleFollow(ctx context.Context, id string) (*models.FollowResult, error)
}

// Users is the people directory.
type Users struct {
	base
	api     UsersAPI
	session SessionView

	mu     sync.RWMutex
	users  []models.User
	search string
}

func NewUsers(api UsersAPI, sess SessionView, n notify.Notifier, logger *slog.Logger) *Users {
	return &Users{
		base:    newBase("users", n, logger),
		api:     api,
		session: sess,
	}
}

// Load fetches every user except the current one.
func (c *Users) Load(ctx context.Context) error {
	users, err := c.api.List(ctx)
	if err != nil {
		return c.fail(ctx, err, "Failed to fetch users", false)
	}
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return nil
}

func (c *Users) All() []models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.users)
}

func (c *Users) SetSearch(term string) {
	c.mu.Lock()
	c.search = term
	c.mu.Unlock()
}

// Filtered returns the users whose username, email, or bio contains the
// search term, ignoring case.
func (c *Users) Filtered() []models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	term := strings.ToLower(c.search)
	out := make([]models.User, 0, len(c.users))
	for _, u := range c.users {
		if term == "" ||
			strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(u.Bio), term) {
			out = append(out, u)
		}
	}
	return out
}

// IsFollowing reports whether the session user follows id.
func (c *Users) IsFollowing(id string) bool {
	me, ok := c.session.Current()
	return ok && me.IsFollowing(id)
}

// ToggleFollow follows or unfollows id. The session takes the membership the
// server decided, applied to the live session user so overlapping toggles
// of different users all land. The user is then re-read so follower counts
// match.
func (c *Users) ToggleFollow(ctx context.Context, id string) (*models.FollowResult, error) {
	const fallback = "Failed to follow/unfollow user"

	me, ok := c.session.Current()
	if !ok {
		return nil, c.fail(ctx, models.ErrNotSignedIn, fallback, false)
	}
	release, err := c.acquire(UserKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := c.api.ToggleFollow(ctx, id)
	if err != nil {
		return nil, c.fail(ctx, err, fallback, true)
	}
	c.session.ApplyFollow(me.ID, id, res.IsFollowing)

	if p, err := c.api.Get(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "Failed to refresh user", slog.String("user_id", id), slog.String("error", err.Error()))
	} else {
		c.mu.Lock()
		c.users = replaceByKey(c.users, p.User)
		c.mu.Unlock()
	}

	msg := res.Message
	if msg == "" {
		msg = "User unfollowed successfully"
		if res.IsFollowing {
			msg = "User followed successfully"
		}
	}
	c.success(msg)
	return res, nil
}
