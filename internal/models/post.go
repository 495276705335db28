package models

import "time"

// Like marks one user's like on a post.
type Like struct {
	User string `json:"user"`
}

// Comment represents a comment on a post. It is owned by its parent Post.
type Comment struct {
	ID        string      `json:"_id"`
	User      UserSummary `json:"user"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Post represents a post in the feed.
type Post struct {
	ID        string      `json:"_id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	Likes     []Like      `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
}

// Key returns the identity used for in-place collection updates.
func (p Post) Key() string { return p.ID }

// LikedBy reports whether userID appears in the post's likes.
func (p Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

// WithoutComment returns a copy of the post without the given comment.
func (p Post) WithoutComment(commentID string) Post {
	out := p
	out.Comments = make([]Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		if c.ID != commentID {
			out.Comments = append(out.Comments, c)
		}
	}
	return out
}

// PostInput is the body of POST /api/posts and PUT /api/posts/:id.
type PostInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CommentInput is the body of POST /api/posts/:id/comment.
type CommentInput struct {
	Content string `json:"content" validate:"required"`
}
