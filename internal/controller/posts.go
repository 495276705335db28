package controller

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/validation"
)

// PostsAPI is the posts resource client.
type PostsAPI interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, in models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id string) (*models.Post, error)
	AddComment(ctx context.Context, id string, in models.CommentInput) (*models.Post, error)
	DeleteComment(ctx context.Context, postID, commentID string) (*models.Post, error)
}

// Posts is the feed screen.
type Posts struct {
	base
	api     PostsAPI
	session SessionView
	confirm Confirmer

	mu     sync.RWMutex
	posts  []models.Post
	drafts map[string]string
}

// NewPosts returns an empty feed controller. Call Load to fetch the feed.
func NewPosts(api PostsAPI, sess SessionView, n notify.Notifier, c Confirmer, logger *slog.Logger) *Posts {
	return &Posts{
		base:    newBase("posts", n, logger),
		api:     api,
		session: sess,
		confirm: c,
		drafts:  make(map[string]string),
	}
}

// Load fetches the feed. On failure the current feed is kept.
func (p *Posts) Load(ctx context.Context) error {
	posts, err := p.api.List(ctx)
	if err != nil {
		return p.fail(ctx, err, "Failed to fetch posts", false)
	}
	p.mu.Lock()
	p.posts = posts
	p.mu.Unlock()
	return nil
}

// Posts returns the feed in server order.
func (p *Posts) Posts() []models.Post {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.posts)
}

// Get returns the post with id from the feed.
func (p *Posts) Get(id string) (models.Post, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return findByKey(p.posts, id)
}

// CanEdit reports whether the current user authored post.
func (p *Posts) CanEdit(post models.Post) bool {
	me, ok := p.session.Current()
	return ok && post.Author.ID == me.ID
}

// IsLiked reports whether the current user likes post.
func (p *Posts) IsLiked(post models.Post) bool {
	me, ok := p.session.Current()
	return ok && post.LikedBy(me.ID)
}

// Create publishes a new post and puts it at the top of the feed.
func (p *Posts) Create(ctx context.Context, content string) (*models.Post, error) {
	const fallback = "Failed to create post"

	in := models.PostInput{Content: strings.TrimSpace(content)}
	if err := validation.Struct(in); err != nil {
		return nil, p.fail(ctx, err, fallback, false)
	}
	release, err := p.acquire(KeyCreatePost)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := p.api.Create(ctx, in)
	if err != nil {
		return nil, p.fail(ctx, err, fallback, false)
	}
	p.mu.Lock()
	p.posts = prepend(p.posts, *post)
	p.mu.Unlock()
	p.success("Post created successfully!")
	return post, nil
}

// Edit replaces the content of one of the current user's posts.
func (p *Posts) Edit(ctx context.Context, id, content string) (*models.Post, error) {
	const fallback = "Failed to update post"

	if err := p.requireOwn(id); err != nil {
		return nil, p.fail(ctx, err, fallback, false)
	}
	in := models.PostInput{Content: strings.TrimSpace(content)}
	if err := validation.Struct(in); err != nil {
		return nil, p.fail(ctx, err, fallback, false)
	}
	release, err := p.acquire(PostKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := p.api.Update(ctx, id, in)
	if err != nil {
		return nil, p.fail(ctx, err, fallback, false)
	}
	p.replace(*post)
	p.success("Post updated successfully!")
	return post, nil
}

// Delete removes one of the current user's posts after confirmation. A
// declined confirmation sends nothing and returns nil.
func (p *Posts) Delete(ctx context.Context, id string) error {
	const fallback = "Failed to delete post"

	if err := p.requireOwn(id); err != nil {
		return p.fail(ctx, err, fallback, false)
	}
	if !p.confirm.Confirm(ctx, "Delete Post", "Are you sure you want to delete this post?") {
		return nil
	}
	release, err := p.acquire(PostKey(id))
	if err != nil {
		return err
	}
	defer release()

	if err := p.api.Delete(ctx, id); err != nil {
		return p.fail(ctx, err, fallback, false)
	}
	p.mu.Lock()
	p.posts = removeByKey(p.posts, id)
	delete(p.drafts, id)
	p.mu.Unlock()
	p.success("Post deleted successfully!")
	return nil
}

// ToggleLike likes or unlikes a post. The feed takes the server's post, so
// repeated toggles never count a like twice.
func (p *Posts) ToggleLike(ctx context.Context, id string) (*models.Post, error) {
	release, err := p.acquire(PostKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := p.api.ToggleLike(ctx, id)
	if err != nil {
		return nil, p.fail(ctx, err, "Failed to like post", true)
	}
	p.replace(*post)
	return post, nil
}

// SetCommentDraft stores the unsent comment text for a post.
func (p *Posts) SetCommentDraft(id, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == "" {
		delete(p.drafts, id)
		return
	}
	p.drafts[id] = text
}

// CommentDraft returns the unsent comment text for a post.
func (p *Posts) CommentDraft(id string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.drafts[id]
}

// Comment sends the post's comment draft. A blank draft is ignored without a
// request. The draft is cleared once the server accepted the comment.
func (p *Posts) Comment(ctx context.Context, id string) (*models.Post, error) {
	content := strings.TrimSpace(p.CommentDraft(id))
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	release, err := p.acquire(PostKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := p.api.AddComment(ctx, id, models.CommentInput{Content: content})
	if err != nil {
		return nil, p.fail(ctx, err, "Failed to add comment", true)
	}
	p.replace(*post)
	p.mu.Lock()
	delete(p.drafts, id)
	p.mu.Unlock()
	p.success("Comment added!")
	return post, nil
}

// DeleteComment removes one of the current user's comments. When the server
// answers without the post, just that comment is dropped locally.
func (p *Posts) DeleteComment(ctx context.Context, postID, commentID string) error {
	const fallback = "Failed to delete comment"

	post, ok := p.Get(postID)
	if !ok {
		return p.fail(ctx, models.NewValidationError("Post not found"), fallback, true)
	}
	i := slices.IndexFunc(post.Comments, func(c models.Comment) bool { return c.ID == commentID })
	me, _ := p.session.Current()
	if i < 0 || post.Comments[i].User.ID != me.ID {
		return p.fail(ctx, models.NewValidationError("You can only delete your own comments"), fallback, true)
	}

	release, err := p.acquire(PostKey(postID))
	if err != nil {
		return err
	}
	defer release()

	updated, err := p.api.DeleteComment(ctx, postID, commentID)
	if err != nil {
		return p.fail(ctx, err, fallback, true)
	}

	p.mu.Lock()
	if updated != nil {
		p.posts = replaceByKey(p.posts, *updated)
	} else if current, ok := findByKey(p.posts, postID); ok {
		p.posts = replaceByKey(p.posts, current.WithoutComment(commentID))
	}
	p.mu.Unlock()
	p.success("Comment deleted")
	return nil
}

func (p *Posts) requireOwn(id string) error {
	post, ok := p.Get(id)
	if !ok {
		return models.NewValidationError("Post not found")
	}
	if !p.CanEdit(post) {
		return models.NewValidationError("You can only change your own posts")
	}
	return nil
}

func (p *Posts) replace(post models.Post) {
	p.mu.Lock()
	p.posts = replaceByKey(p.posts, post)
	p.mu.Unlock()
}
