// Package models contains data structures for the client's domain models.
package models

import (
	"slices"
	"time"
)

// UserSummary is the author shape embedded in posts and comments.
type UserSummary struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// User represents a user as returned by the backend.
// Followers and Following hold user ids.
type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Followers []string  `json:"followers"`
	Following []string  `json:"following"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key returns the identity used for in-place collection updates.
func (u User) Key() string { return u.ID }

// Summary returns the embedded author form of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// IsFollowing reports whether userID is in the user's following set.
func (u User) IsFollowing(userID string) bool {
	return slices.Contains(u.Following, userID)
}

// WithFollowing returns a copy of the user whose following set contains or omits
// userID according to following. The receiver is not modified.
func (u User) WithFollowing(userID string, following bool) User {
	out := u
	out.Following = make([]string, 0, len(u.Following)+1)
	for _, id := range u.Following {
		if id != userID {
			out.Following = append(out.Following, id)
		}
	}
	if following {
		out.Following = append(out.Following, userID)
	}
	return out
}

// Session is the authenticated identity bound to the client process.
type Session struct {
	User  User
	Token string
}

// UserProfile is the payload of GET /api/users/:id.
type UserProfile struct {
	User  User   `json:"user"`
	Posts []Post `json:"posts"`
}

// ProfileStats are the counters shown on the profile screen.
type ProfileStats struct {
	PostsCount     int
	FollowersCount int
	FollowingCount int
}

// Stats derives the profile counters from a profile payload.
func (p UserProfile) Stats() ProfileStats {
	return ProfileStats{
		PostsCount:     len(p.Posts),
		FollowersCount: len(p.User.Followers),
		FollowingCount: len(p.User.Following),
	}
}

// FollowResult is the payload of POST /api/users/:id/follow.
type FollowResult struct {
	IsFollowing bool   `json:"isFollowing"`
	Message     string `json:"message"`
}

// FollowLists is the payload of GET /api/users/me/follow.
type FollowLists struct {
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
}

// ProfileUpdate is the body of PUT /api/users/profile.
type ProfileUpdate struct {
	Bio    string `json:"bio" validate:"max=500"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}
