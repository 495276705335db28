package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/validation"
)

// ProfileAPI is the part of the users resource client the profile screen uses.
type ProfileAPI interface {
	Get(ctx context.Context, id string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error)
	FollowLists(ctx context.Context) (*models.FollowLists, error)
}

// Profile is the current user's profile screen.
type Profile struct {
	base
	api     ProfileAPI
	session SessionView

	mu      sync.RWMutex
	stats   models.ProfileStats
	follows models.FollowLists
	editing bool
	draft   models.ProfileUpdate
}

func NewProfile(api ProfileAPI, sess SessionView, n notify.Notifier, logger *slog.Logger) *Profile {
	return &Profile{
		base:    newBase("profile", n, logger),
		api:     api,
		session: sess,
	}
}

// Load fetches the stats and follow lists concurrently. Failures are logged
// and leave the previous values in place; the first one is returned.
func (c *Profile) Load(ctx context.Context) error {
	user, ok := c.session.Current()
	if !ok {
		return models.ErrNotSignedIn
	}

	var g errgroup.Group
	g.Go(func() error {
		p, err := c.api.Get(ctx, user.ID)
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to fetch profile stats", slog.String("error", err.Error()))
			return err
		}
		c.mu.Lock()
		c.stats = p.Stats()
		c.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		lists, err := c.api.FollowLists(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to fetch follow lists", slog.String("error", err.Error()))
			return err
		}
		c.mu.Lock()
		c.follows = *lists
		c.mu.Unlock()
		return nil
	})
	return g.Wait()
}

func (c *Profile) Stats() models.ProfileStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Profile) Followers() []models.UserSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.UserSummary(nil), c.follows.Followers...)
}

func (c *Profile) Following() []models.UserSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.UserSummary(nil), c.follows.Following...)
}

// StartEdit opens the editor prefilled from the session user.
func (c *Profile) StartEdit() {
	user, _ := c.session.Current()
	c.mu.Lock()
	c.editing = true
	c.draft = models.ProfileUpdate{Bio: user.Bio, Avatar: user.Avatar}
	c.mu.Unlock()
}

func (c *Profile) SetBio(bio string) {
	c.mu.Lock()
	c.draft.Bio = bio
	c.mu.Unlock()
}

func (c *Profile) SetAvatar(avatar string) {
	c.mu.Lock()
	c.draft.Avatar = avatar
	c.mu.Unlock()
}

// Cancel closes the editor and discards the draft.
func (c *Profile) Cancel() {
	c.mu.Lock()
	c.editing = false
	c.draft = models.ProfileUpdate{}
	c.mu.Unlock()
}

func (c *Profile) Editing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editing
}

func (c *Profile) Draft() models.ProfileUpdate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// Save submits the draft and replaces the session user with the result.
func (c *Profile) Save(ctx context.Context) (*models.User, error) {
	const fallback = "Failed to update profile"

	in := c.Draft()
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := validation.Struct(in); err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	release, err := c.acquire(KeyProfile)
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := c.api.UpdateProfile(ctx, in)
	if err != nil {
		return nil, c.fail(ctx, err, fallback, false)
	}
	c.session.UpdateSession(*user)
	c.mu.Lock()
	c.editing = false
	c.draft = models.ProfileUpdate{}
	c.mu.Unlock()
	c.success("Profile updated successfully!")
	return user, nil
}
