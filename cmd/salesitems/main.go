package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/RoGogDBD/salesitems/internal/app"
	"github.com/RoGogDBD/salesitems/internal/auth"
	"github.com/RoGogDBD/salesitems/internal/config"
	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/RoGogDBD/salesitems/internal/repository"
	"github.com/RoGogDBD/salesitems/internal/validation"
)

// errReported означает, что причина ошибки уже выведена пользователю.
var errReported = errors.New("reported")

const usage = `usage: salesitems [-api url] [-v] <command> [flags]

commands:
  list [-keyword k] [-max-price p] [-sort price|description] [-desc]
  get <id>
  add -description d -price p [-picture url] [-phone n]
  delete <id>
  login -email e -password p
  register -email e -password p
  login-google -id-token t
  logout
  whoami
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("salesitems", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	apiURL := config.RegisterAPIFlag(fs)
	verbose := fs.Bool("v", false, "Log requests and repository events to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errReported
	}
	if !*verbose {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.API.Override(apiURL)
	cfg.API.LogRequests = cfg.API.LogRequests || *verbose

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	cmd := newCommands(a, out)
	name, rest := fs.Arg(0), fs.Args()[1:]
	switch name {
	case "list":
		return cmd.list(ctx, rest)
	case "get":
		return cmd.get(ctx, rest)
	case "add":
		return cmd.add(ctx, rest)
	case "delete":
		return cmd.delete(ctx, rest)
	case "login":
		return cmd.login(ctx, rest, false)
	case "register":
		return cmd.login(ctx, rest, true)
	case "login-google":
		return cmd.loginGoogle(ctx, rest)
	case "logout":
		return cmd.logout()
	case "whoami":
		return cmd.whoami()
	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", name, usage)
		return errReported
	}
}

type commands struct {
	app *app.App
	out io.Writer
}

func newCommands(a *app.App, out io.Writer) *commands {
	c := &commands{app: a, out: out}
	a.Session.Subscribe(func(u *auth.User) {
		if u == nil {
			fmt.Fprintln(out, "Signed out")
			return
		}
		fmt.Fprintf(out, "Signed in as %s\n", u.Email)
	})
	return c
}

func (c *commands) problem(msg string) error {
	fmt.Fprintf(c.out, "Problem: %s\n", msg)
	return errReported
}

func (c *commands) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "Case-insensitive description filter")
	maxPrice := fs.String("max-price", "", "Price ceiling; empty or invalid means none")
	sortField := fs.String("sort", "", "Sort by price or description")
	desc := fs.Bool("desc", false, "Sort descending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	criterion, err := repository.ParseCriterion(*sortField, *desc)
	if err != nil {
		return err
	}

	items := c.app.Items
	items.SetKeywordFilter(*keyword)
	items.SetMaxPriceText(*maxPrice)
	items.SetSort(criterion)

	_ = items.Load(ctx).Wait()
	state := items.Snapshot()
	if state.ErrorMessage != "" {
		return c.problem(state.ErrorMessage)
	}
	return renderList(c.out, state, c.app.Session.Email())
}

func (c *commands) get(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	item, err := c.app.Items.Get(ctx, id)
	if err != nil {
		return c.problem(err.Error())
	}
	return renderItem(c.out, item, c.app.Session.Email())
}

func (c *commands) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	description := fs.String("description", "", "Item description")
	price := fs.String("price", "", "Item price")
	picture := fs.String("picture", "", "Picture URL")
	phone := fs.String("phone", "", "Seller phone")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user := c.app.Session.CurrentUser()
	if user == nil {
		return c.problem("sign in to add items")
	}

	draft, fieldErrs := validation.BuildDraft(c.app.Validate, models.DraftInput{
		Description: *description,
		Price:       *price,
		PictureURL:  *picture,
		SellerEmail: user.Email,
		SellerPhone: *phone,
		UserID:      user.UID,
	}, time.Now())
	if len(fieldErrs) > 0 {
		renderFieldErrors(c.out, fieldErrs)
		return errReported
	}

	if err := c.app.Items.Create(ctx, draft).Wait(); err != nil {
		return c.problem(c.app.Items.Snapshot().ErrorMessage)
	}
	fmt.Fprintf(c.out, "Added %q, %d items listed\n", draft.Description, len(c.app.Items.Snapshot().Items))
	return nil
}

func (c *commands) delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	email := c.app.Session.Email()
	if email == "" {
		return c.problem("sign in to delete items")
	}
	item, err := c.app.Items.Get(ctx, id)
	if err != nil {
		return c.problem(err.Error())
	}
	if !item.OwnedBy(email) {
		return c.problem("only the seller can delete this item")
	}

	if err := c.app.Items.Delete(ctx, id).Wait(); err != nil {
		return c.problem(c.app.Items.Snapshot().ErrorMessage)
	}
	fmt.Fprintf(c.out, "Deleted item %d\n", id)
	return nil
}

func (c *commands) login(ctx context.Context, args []string, register bool) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	signIn := c.app.Session.SignInWithPassword
	if register {
		signIn = c.app.Session.Register
	}
	if err := signIn(ctx, *email, *password); err != nil {
		return c.problem(c.app.Session.ErrorMessage())
	}
	return nil
}

func (c *commands) loginGoogle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login-google", flag.ContinueOnError)
	idToken := fs.String("id-token", "", "Google ID token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Session.SignInWithGoogle(ctx, *idToken); err != nil {
		return c.problem(c.app.Session.ErrorMessage())
	}
	return nil
}

func (c *commands) logout() error {
	return c.app.Session.SignOut()
}

func (c *commands) whoami() error {
	if c.app.Session.IsLoggedOut() {
		fmt.Fprintln(c.out, "Not signed in")
		return nil
	}
	fmt.Fprintln(c.out, c.app.Session.Email())
	return nil
}

func parseID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one item id")
	}
	id, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", args[0])
	}
	return id, nil
}
