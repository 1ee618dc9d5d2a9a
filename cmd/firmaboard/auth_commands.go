package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/firmaboard/firmaboard-go/googleauth"
	"github.com/firmaboard/firmaboard-go/guard"
	"github.com/firmaboard/firmaboard-go/session"
	"github.com/firmaboard/firmaboard-go/tokens"
)

// maxLoginAttempts is UX throttling only, reset by process restart or a
// successful login. Server-side rate limiting is independent of it.
const maxLoginAttempts = 5

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	remember := flags.Bool("remember", false, "keep the session across restarts")
	tenantSlug := flags.String("tenant", "", "tenant slug")
	from := flags.String("from", "", "location to return to after signing in")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)
	if *from != "" {
		a.session.SetReturnTo(*from)
	}
	displayBanner()

	reader := bufio.NewReader(os.Stdin)
	for attempts := 0; attempts < maxLoginAttempts; attempts++ {
		email, err := prompt(reader, "Email: ")
		if err != nil {
			return err
		}
		password, err := prompt(reader, "Password: ")
		if err != nil {
			return err
		}

		err = a.session.Login(ctx, session.Credentials{
			Email:      email,
			Password:   password,
			RememberMe: *remember,
		})
		if err == nil {
			return nil
		}

		var failure *session.AuthFailure
		if !errors.As(err, &failure) {
			return err
		}
		// The notification already named the failure; just loop.
	}

	fmt.Println("Too many login attempts. Please try again later or reset your password.")
	return fmt.Errorf("login locked after %d attempts", maxLoginAttempts)
}

func (a *app) cmdGoogle(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("google", flag.ContinueOnError)
	remember := flags.Bool("remember", false, "keep the session across restarts")
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)
	displayBanner()

	google := a.cfg.Google
	if google.ClientID == "" {
		return fmt.Errorf("FB_GOOGLE_CLIENT_ID is not configured")
	}

	authenticator, err := googleauth.New(ctx, google.ClientID, google.ClientSecret, google.RedirectURL, google.IssuerURL)
	if err != nil {
		return err
	}

	credential, err := authenticator.SignIn(ctx)
	if err != nil {
		return err
	}

	return a.session.LoginWithGoogle(ctx, credential, *remember)
}

func (a *app) cmdLogout(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("logout", flag.ContinueOnError)
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)

	a.session.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("whoami", flag.ContinueOnError)
	tenantSlug := flags.String("tenant", "", "tenant slug")
	if err := flags.Parse(args); err != nil {
		return err
	}
	a.enterTenant(*tenantSlug)

	a.session.Boot(ctx)
	state := a.session.State()

	provider, _ := a.store.Provider()
	decision := guard.Evaluate(state, provider, a.resolver.Path, "/dashboard")
	if decision.Action != guard.Render {
		fmt.Printf("Not signed in (→ %s)\n", decision.Target)
		return nil
	}

	user := state.User
	fmt.Printf("Signed in as %s %s <%s> (%s)\n", user.FirstName, user.LastName, user.Email, user.Role)
	if user.Company != nil {
		fmt.Printf("Company: %s\n", user.Company.Name)
	}
	if slug := a.resolver.Slug(); slug != "" {
		fmt.Printf("Tenant:  %s\n", slug)
	}

	if access, ok := a.store.AccessToken(); ok {
		if claims, err := tokens.PeekClaims(access); err == nil && !claims.ExpiresAt.IsZero() {
			fmt.Printf("Token expires: %s\n", claims.ExpiresAt.Format(time.RFC3339))
		}
	}
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
