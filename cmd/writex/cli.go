package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"writex/internal/app"
	"writex/internal/config"
	"writex/internal/controller"
	"writex/internal/guard"
	"writex/internal/models"
	"writex/internal/notify"
	"writex/internal/session"
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

const usage = `usage: writex [-yes] [-q term] <command> [args]

commands:
  login <email> <password>
  register <username> <email> <password> [confirm]
  logout
  whoami
  route <path>
  posts list|create <content>|edit <id> <content>|delete <id>|like <id>
        comment <id> <text>|uncomment <post-id> <comment-id>
  notes list|create <title> <content> [tag...]|edit <id> <title> <content> [tag...]
        delete <id>|pin <id>
  profile show|edit [-bio text] [-avatar url]
  users list|follow <id>
`

var errUsage = errors.New("usage")

// screens maps each command to the screen it belongs to.
var screens = map[string]string{
	"login":    guard.ScreenLogin,
	"register": guard.ScreenRegister,
	"posts":    guard.ScreenDashboard,
	"notes":    guard.ScreenNotes,
	"profile":  guard.ScreenProfile,
	"users":    guard.ScreenUsers,
}

type cli struct {
	app   *app.App
	out   io.Writer
	errw  io.Writer
	query string
}

func run(ctx context.Context, cfg *config.Config, args []string, s streams) int {
	fs := flag.NewFlagSet("writex", flag.ContinueOnError)
	fs.SetOutput(s.err)
	fs.Usage = func() { fmt.Fprint(s.err, usage) }
	yes := fs.Bool("yes", false, "Answer yes to confirmations")
	query := fs.String("q", "", "Filter term for list commands")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var confirm controller.Confirmer = controller.AutoConfirm(true)
	if !*yes {
		confirm = promptConfirmer(s.in, s.out)
	}

	a, err := app.New(ctx, cfg, app.Options{
		LogOutput: s.err,
		Notifier:  notify.NewWriterNotifier(s.out),
		Confirmer: confirm,
	})
	if err != nil {
		fmt.Fprintf(s.err, "Failed to start: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			a.Logger.Warn("shutdown failed", "error", err)
		}
	}()
	a.Start(ctx)

	c := &cli{app: a, out: s.out, errw: s.err, query: *query}
	if err := c.dispatch(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(s.err, usage)
			return 2
		}
		return 1
	}
	return 0
}

func promptConfirmer(in io.Reader, out io.Writer) controller.Confirmer {
	reader := bufio.NewReader(in)
	return controller.ConfirmFunc(func(_ context.Context, title, message string) bool {
		fmt.Fprintf(out, "%s: %s [y/N] ", title, message)
		line, _ := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

// enter applies the guard to the command's screen. ok reports whether the
// command should run; err is set when refusing it is a failure.
func (c *cli) enter(command string) (ok bool, err error) {
	screen, guarded := screens[command]
	if !guarded {
		return true, nil
	}
	d := c.app.Enter(screen)
	switch {
	case d.Action == guard.Render:
		return true, nil
	case d.Action == guard.Redirect && d.Target == guard.ScreenLogin:
		fmt.Fprintln(c.errw, "Not signed in. Run: writex login <email> <password>")
		return false, models.ErrNotSignedIn
	case d.Action == guard.Redirect:
		user, _ := c.app.Session.Current()
		fmt.Fprintf(c.out, "Already signed in as %s\n", user.Username)
		return false, nil
	default:
		fmt.Fprintf(c.errw, "Cannot open %s\n", screen)
		return false, fmt.Errorf("screen %s: %s", screen, d.Action)
	}
}

func (c *cli) dispatch(ctx context.Context, command string, args []string) error {
	if ok, err := c.enter(command); !ok {
		return err
	}

	switch command {
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		return c.result(c.app.Session.Login(ctx, args[0], args[1]))
	case "register":
		if len(args) < 3 || len(args) > 4 {
			return errUsage
		}
		form := models.RegisterForm{Username: args[0], Email: args[1], Password: args[2], ConfirmPassword: args[2]}
		if len(args) == 4 {
			form.ConfirmPassword = args[3]
		}
		return c.result(c.app.Session.RegisterForm(ctx, form))
	case "logout":
		c.app.Session.Logout(ctx)
		fmt.Fprintln(c.out, "Signed out")
		return nil
	case "whoami":
		user, ok := c.app.Session.Current()
		if !ok {
			fmt.Fprintln(c.out, "Not signed in")
			return nil
		}
		fmt.Fprintf(c.out, "%s <%s>\n", user.Username, user.Email)
		return nil
	case "route":
		if len(args) != 1 {
			return errUsage
		}
		d := c.app.Enter(args[0])
		if d.Target != "" {
			fmt.Fprintf(c.out, "%s %s\n", d.Action, d.Target)
		} else {
			fmt.Fprintln(c.out, d.Action)
		}
		return nil
	case "posts":
		return c.posts(ctx, args)
	case "notes":
		return c.notes(ctx, args)
	case "profile":
		return c.profile(ctx, args)
	case "users":
		return c.users(ctx, args)
	default:
		return errUsage
	}
}

func (c *cli) result(res session.Result) error {
	if !res.Success {
		fmt.Fprintln(c.errw, res.Message)
		return errors.New(res.Message)
	}
	user, _ := c.app.Session.Current()
	fmt.Fprintf(c.out, "Signed in as %s\n", user.Username)
	return nil
}
