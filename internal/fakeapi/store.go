package fakeapi

import (
	"slices"
	"strings"
	"sync"

	"writex/internal/models"
)

type account struct {
	user models.User
	hash []byte
}

// store is the in-memory state of the fake backend. Every accessor returns
// copies so handlers can serialize without holding the lock.
type store struct {
	mu       sync.RWMutex
	accounts map[string]*account
	order    []string
	posts    []*models.Post // newest first
	notes    map[string][]*models.Note
}

func newStore() *store {
	return &store{
		accounts: make(map[string]*account),
		notes:    make(map[string][]*models.Note),
	}
}

func cloneUser(u models.User) models.User {
	u.Followers = append([]string{}, u.Followers...)
	u.Following = append([]string{}, u.Following...)
	return u
}

func clonePost(p *models.Post) models.Post {
	out := *p
	out.Likes = append([]models.Like{}, p.Likes...)
	out.Comments = append([]models.Comment{}, p.Comments...)
	return out
}

func cloneNote(n *models.Note) models.Note {
	out := *n
	out.Tags = append([]string{}, n.Tags...)
	return out
}

func (s *store) addAccount(u models.User, hash []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.ID] = &account{user: cloneUser(u), hash: hash}
	s.order = append(s.order, u.ID)
}

// taken reports whether email or username is already registered.
func (s *store) taken(email, username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) || strings.EqualFold(a.user.Username, username) {
			return true
		}
	}
	return false
}

func (s *store) accountByEmail(email string) (models.User, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return cloneUser(a.user), a.hash, true
		}
	}
	return models.User{}, nil, false
}

func (s *store) user(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return cloneUser(a.user), true
}

func (s *store) usersExcept(id string) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.order))
	for _, uid := range s.order {
		if uid == id {
			continue
		}
		out = append(out, cloneUser(s.accounts[uid].user))
	}
	return out
}

func (s *store) summaries(ids []string) []models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out = append(out, a.user.Summary())
		}
	}
	return out
}

func (s *store) updateProfile(id string, in models.ProfileUpdate) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	a.user.Bio = in.Bio
	a.user.Avatar = in.Avatar
	for _, p := range s.posts {
		if p.Author.ID == id {
			p.Author = a.user.Summary()
		}
	}
	return cloneUser(a.user), true
}

// toggleFollow flips the follow edge from -> to and reports the new state.
func (s *store) toggleFollow(from, to string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok1 := s.accounts[from]
	dst, ok2 := s.accounts[to]
	if !ok1 || !ok2 {
		return false, false
	}
	if slices.Contains(src.user.Following, to) {
		src.user.Following = slices.DeleteFunc(src.user.Following, func(id string) bool { return id == to })
		dst.user.Followers = slices.DeleteFunc(dst.user.Followers, func(id string) bool { return id == from })
		return false, true
	}
	src.user.Following = append(src.user.Following, to)
	dst.user.Followers = append(dst.user.Followers, from)
	return true, true
}

func (s *store) listPosts(authorID string) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if authorID == "" || p.Author.ID == authorID {
			out = append(out, clonePost(p))
		}
	}
	return out
}

func (s *store) post(id string) (*models.Post, int) {
	for i, p := range s.posts {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *store) addPost(p models.Post) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clonePost(&p)
	s.posts = append([]*models.Post{&stored}, s.posts...)
	return clonePost(&stored)
}

// mutatePost runs fn on the stored post under the write lock and returns a
// copy of the result. fn returns a status code other than 0 to abort.
func (s *store) mutatePost(id string, fn func(p *models.Post) (int, string)) (models.Post, int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.post(id)
	if p == nil {
		return models.Post{}, 404, "Post not found"
	}
	if status, msg := fn(p); status != 0 {
		return models.Post{}, status, msg
	}
	return clonePost(p), 0, ""
}

func (s *store) deletePost(id, userID string) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.post(id)
	if p == nil {
		return 404, "Post not found"
	}
	if p.Author.ID != userID {
		return 403, "Not authorized"
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	return 0, ""
}

func (s *store) listNotes(owner string) []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := s.notes[owner]
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, cloneNote(n))
	}
	slices.SortStableFunc(out, func(a, b models.Note) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

func (s *store) addNote(owner string, n models.Note) models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneNote(&n)
	s.notes[owner] = append([]*models.Note{&stored}, s.notes[owner]...)
	return cloneNote(&stored)
}

func (s *store) updateNote(owner, id string, fn func(n *models.Note)) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes[owner] {
		if n.ID == id {
			fn(n)
			return cloneNote(n), true
		}
	}
	return models.Note{}, false
}

func (s *store) deleteNote(owner, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.notes[owner]
	for i, n := range notes {
		if n.ID == id {
			s.notes[owner] = slices.Delete(notes, i, i+1)
			return true
		}
	}
	return false
}
