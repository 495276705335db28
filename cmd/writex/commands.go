package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"writex/internal/controller"
	"writex/internal/models"
)

func (c *cli) posts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	p := c.app.Posts
	if err := p.Load(ctx); err != nil {
		return err
	}

	switch sub, rest := args[0], args[1:]; {
	case sub == "list" && len(rest) == 0:
		for _, post := range p.Posts() {
			c.printPost(post)
		}
		return nil
	case sub == "create" && len(rest) >= 1:
		post, err := p.Create(ctx, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		c.printPost(*post)
		return nil
	case sub == "edit" && len(rest) >= 2:
		post, err := p.Edit(ctx, rest[0], strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		c.printPost(*post)
		return nil
	case sub == "delete" && len(rest) == 1:
		return p.Delete(ctx, rest[0])
	case sub == "like" && len(rest) == 1:
		post, err := p.ToggleLike(ctx, rest[0])
		if err != nil {
			return err
		}
		state := "unliked"
		if p.IsLiked(*post) {
			state = "liked"
		}
		fmt.Fprintf(c.out, "%s %s (%d likes)\n", state, post.ID, len(post.Likes))
		return nil
	case sub == "comment" && len(rest) >= 2:
		p.SetCommentDraft(rest[0], strings.Join(rest[1:], " "))
		post, err := p.Comment(ctx, rest[0])
		if err != nil {
			if models.IsCode(err, models.CodeValidation) {
				fmt.Fprintln(c.errw, models.MessageOr(err, "Comment cannot be empty"))
			}
			return err
		}
		c.printPost(*post)
		return nil
	case sub == "uncomment" && len(rest) == 2:
		return p.DeleteComment(ctx, rest[0], rest[1])
	default:
		return errUsage
	}
}

func (c *cli) printPost(post models.Post) {
	fmt.Fprintf(c.out, "%s  @%s  %d likes  %d comments\n    %s\n",
		post.ID, post.Author.Username, len(post.Likes), len(post.Comments), post.Content)
	for _, cm := range post.Comments {
		fmt.Fprintf(c.out, "    - %s @%s: %s\n", cm.ID, cm.User.Username, cm.Content)
	}
}

func (c *cli) notes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	n := c.app.Notes
	if err := n.Load(ctx); err != nil {
		return err
	}

	switch sub, rest := args[0], args[1:]; {
	case sub == "list" && len(rest) == 0:
		n.SetSearch(c.query)
		pinned, regular := n.Pinned(), n.Regular()
		if len(pinned) > 0 {
			fmt.Fprintln(c.out, "Pinned")
			for _, note := range pinned {
				c.printNote(note)
			}
		}
		if len(pinned) > 0 && len(regular) > 0 {
			fmt.Fprintln(c.out, "Other")
		}
		for _, note := range regular {
			c.printNote(note)
		}
		return nil
	case sub == "create" && len(rest) >= 2:
		draft, err := c.noteDraft(&controller.NoteDraft{}, rest)
		if err != nil {
			return err
		}
		note, err := n.Create(ctx, draft)
		if err != nil {
			return err
		}
		c.printNote(*note)
		return nil
	case sub == "edit" && len(rest) >= 3:
		existing, ok := n.Get(rest[0])
		if !ok {
			fmt.Fprintln(c.errw, "Note not found")
			return models.NewValidationError("Note not found")
		}
		draft, err := c.noteDraft(&controller.NoteDraft{IsPinned: existing.IsPinned}, rest[1:])
		if err != nil {
			return err
		}
		note, err := n.Update(ctx, existing.ID, draft)
		if err != nil {
			return err
		}
		c.printNote(*note)
		return nil
	case sub == "delete" && len(rest) == 1:
		return n.Delete(ctx, rest[0])
	case sub == "pin" && len(rest) == 1:
		_, err := n.TogglePin(ctx, rest[0])
		return err
	default:
		return errUsage
	}
}

// noteDraft fills d from "<title> <content> [tag...]".
func (c *cli) noteDraft(d *controller.NoteDraft, args []string) (*controller.NoteDraft, error) {
	d.Title, d.Content = args[0], args[1]
	for _, tag := range args[2:] {
		if err := d.AddTag(tag); err != nil {
			fmt.Fprintf(c.errw, "Tag %q: %v\n", tag, err)
			return nil, err
		}
	}
	return d, nil
}

func (c *cli) printNote(note models.Note) {
	pin := " "
	if note.IsPinned {
		pin = "*"
	}
	fmt.Fprintf(c.out, "%s %s  %s", pin, note.ID, note.Title)
	if len(note.Tags) > 0 {
		fmt.Fprintf(c.out, "  [%s]", strings.Join(note.Tags, ", "))
	}
	fmt.Fprintf(c.out, "\n    %s\n", note.Content)
}

func (c *cli) profile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	p := c.app.Profile

	switch args[0] {
	case "show":
		// Stats and follow lists are best effort.
		_ = p.Load(ctx)
		user, _ := c.app.Session.Current()
		stats := p.Stats()
		fmt.Fprintf(c.out, "%s <%s>\n", user.Username, user.Email)
		if user.Bio != "" {
			fmt.Fprintf(c.out, "%s\n", user.Bio)
		}
		if user.Avatar != "" {
			fmt.Fprintf(c.out, "avatar: %s\n", user.Avatar)
		}
		fmt.Fprintf(c.out, "%d posts  %d followers  %d following\n", stats.PostsCount, stats.FollowersCount, stats.FollowingCount)
		for _, u := range p.Followers() {
			fmt.Fprintf(c.out, "  follower @%s\n", u.Username)
		}
		for _, u := range p.Following() {
			fmt.Fprintf(c.out, "  following @%s\n", u.Username)
		}
		return nil
	case "edit":
		fs := flag.NewFlagSet("profile edit", flag.ContinueOnError)
		fs.SetOutput(c.errw)
		bio := fs.String("bio", "", "New bio")
		avatar := fs.String("avatar", "", "New avatar URL")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		p.StartEdit()
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bio":
				p.SetBio(*bio)
			case "avatar":
				p.SetAvatar(*avatar)
			}
		})
		_, err := p.Save(ctx)
		return err
	default:
		return errUsage
	}
}

func (c *cli) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	u := c.app.Users
	if err := u.Load(ctx); err != nil {
		return err
	}

	switch sub, rest := args[0], args[1:]; {
	case sub == "list" && len(rest) == 0:
		u.SetSearch(c.query)
		for _, user := range u.Filtered() {
			mark := " "
			if u.IsFollowing(user.ID) {
				mark = "+"
			}
			fmt.Fprintf(c.out, "%s %s  @%s  %d followers\n", mark, user.ID, user.Username, len(user.Followers))
		}
		return nil
	case sub == "follow" && len(rest) == 1:
		_, err := u.ToggleFollow(ctx, rest[0])
		return err
	default:
		return errUsage
	}
}
