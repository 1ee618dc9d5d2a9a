package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/firmaboard/firmaboard-go/api"
	"github.com/firmaboard/firmaboard-go/internal/config"
	"github.com/firmaboard/firmaboard-go/session"
	"github.com/firmaboard/firmaboard-go/tenant"
	"github.com/firmaboard/firmaboard-go/tokens"
)

const usage = `firmaboard — terminal client for the Firmaboard dashboard

Usage:
  firmaboard <command> [flags]

Commands:
  login     Sign in with email and password
  google    Sign in with Google
  logout    Sign out and clear stored tokens
  whoami    Show the current session
  onboard   Run the onboarding wizard
  assets    List monitored assets
  upload    Upload data files for import
`

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("FB_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg)
	return app.dispatch(ctx, os.Args[1], os.Args[2:])
}

// app wires the SDK together the way the browser shell does: one token
// store, one shared API client, a tenant resolver feeding it, and a session
// controller on top.
type app struct {
	cfg      config.Config
	store    *tokens.Store
	client   *api.Client
	resolver *tenant.Resolver
	session  *session.Controller
}

func newApp(cfg config.Config) *app {
	store := tokens.NewStore(tokens.NewMemoryArea(), tokens.NewFileArea(cfg.DataDir))
	client := api.New(cfg.BaseURL(), store)
	resolver := tenant.NewResolver(client)

	sess := session.NewController(client, store,
		session.WithNotifier(terminalNotifier{}),
		session.WithNavigator(terminalNavigator{}),
		session.WithPathFunc(resolver.Path),
	)

	return &app{cfg: cfg, store: store, client: client, resolver: resolver, session: sess}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "google":
		return a.cmdGoogle(ctx, args)
	case "logout":
		return a.cmdLogout(ctx, args)
	case "whoami":
		return a.cmdWhoami(ctx, args)
	case "onboard":
		return a.cmdOnboard(ctx, args)
	case "assets":
		return a.cmdAssets(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// enterTenant simulates the navigation that would carry a tenant prefix in
// the browser: the resolver recomputes the slug and pushes it into the API
// client before any request goes out.
func (a *app) enterTenant(slug string) {
	if slug == "" {
		a.resolver.Resolve("/")
		return
	}
	a.resolver.Resolve("/t/" + slug + "/dashboard")
}

func displayBanner() {
	figure.NewFigure("Firmaboard", "cybermedium", true).Print()
	fmt.Println()
}

// terminalNotifier renders toasts as terminal lines.
type terminalNotifier struct{}

func (terminalNotifier) Notify(n session.Notification) {
	prefix := "•"
	if n.Variant == session.VariantError {
		prefix = "✗"
	}
	fmt.Printf("%s %s — %s\n", prefix, n.Title, n.Description)
}

// terminalNavigator reports where the browser shell would navigate.
type terminalNavigator struct{}

func (terminalNavigator) NavigateTo(path string) {
	fmt.Printf("→ %s\n", path)
}
