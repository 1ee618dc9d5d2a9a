// Package session owns the authenticated-user state machine: one-time
// rehydration on boot, credential and Google logins, and logout. It is the
// only component that mutates user-facing auth state; the API client only
// ever touches token storage.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/firmaboard/firmaboard-go/api"
	"github.com/firmaboard/firmaboard-go/tokens"
)

// Internal navigation targets. They pass through the controller's
// tenant-aware path function before reaching the navigator.
const (
	RouteLogin            = "/login"
	RouteDashboard        = "/dashboard"
	RouteOnboarding       = "/onboarding"
	RouteOnboardingGoogle = "/onboarding?google=1"
)

// AuthFailure is a classified login/session failure returned to callers so
// they can render inline form errors on top of the notification already
// surfaced by the controller.
type AuthFailure struct {
	api.AuthError
}

func (f *AuthFailure) Error() string {
	return string(f.Code) + ": " + f.Message
}

// Controller is the auth session controller.
type Controller struct {
	client    *api.Client
	store     *tokens.Store
	notifier  Notifier
	navigator Navigator
	paths     func(string) string

	mu       sync.Mutex
	phase    Phase
	user     *User
	settled  bool
	returnTo string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithNavigator sets the navigation sink.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// WithPathFunc sets the tenant-aware path builder applied to every
// navigation target.
func WithPathFunc(f func(string) string) Option {
	return func(c *Controller) { c.paths = f }
}

// NewController creates a controller in the Booting phase.
func NewController(client *api.Client, store *tokens.Store, options ...Option) *Controller {
	c := &Controller{
		client:    client,
		store:     store,
		notifier:  nopNotifier{},
		navigator: nopNavigator{},
		paths:     func(p string) string { return p },
		phase:     Booting,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SetReturnTo records the attempted location carried by a guard redirect.
// The next fully-onboarded login navigates there instead of the dashboard.
func (c *Controller) SetReturnTo(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.returnTo = path
}

// takeReturnTo pops the recorded location, falling back to the dashboard.
func (c *Controller) takeReturnTo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.returnTo
	c.returnTo = ""
	if target == "" {
		return RouteDashboard
	}
	return target
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Phase: c.phase, User: c.user}
}

type sessionResponse struct {
	IsAuthenticated    bool  `json:"isAuthenticated"`
	User               *User `json:"user"`
	OnboardingRequired bool  `json:"onboarding_required"`
}

type loginResponse struct {
	User               *User       `json:"user"`
	Tokens             tokens.Pair `json:"tokens"`
	OnboardingRequired bool        `json:"onboarding_required"`
}

// Boot performs the one-time session rehydration. With no stored token it
// settles to Unauthenticated without a network call; otherwise it calls the
// session-introspection endpoint. The loading phase ends exactly once per
// controller lifetime regardless of outcome, and repeated calls after the
// first settle are no-ops.
func (c *Controller) Boot(ctx context.Context) bool {
	c.mu.Lock()
	if c.settled {
		state := State{Phase: c.phase, User: c.user}
		c.mu.Unlock()
		return state.IsAuthenticated()
	}
	c.mu.Unlock()

	if _, ok := c.store.AccessToken(); !ok {
		c.settle(Unauthenticated, nil)
		return false
	}

	var resp sessionResponse
	if err := c.client.Get(ctx, api.EndpointSession, &resp); err != nil {
		failure := api.Classify(err)
		if failure.Code == api.KindInvalidCredentials {
			// A 401 here means a stale or corrupt token, not bad credentials.
			failure = api.AuthError{Code: api.KindInvalidToken, Message: "Session expired. Please login again to continue"}
		}
		c.notifier.Notify(Notification{
			Title:       "Authentication Error",
			Description: failure.Message,
			Variant:     VariantError,
		})
		if clearErr := c.store.Clear(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to clear tokens after boot failure")
		}
		c.settle(Unauthenticated, nil)
		return false
	}

	if !resp.IsAuthenticated || resp.User == nil {
		if err := c.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("failed to clear tokens for unauthenticated session")
		}
		c.settle(Unauthenticated, nil)
		return false
	}

	c.settle(authPhase(resp.OnboardingRequired), resp.User)
	return true
}

// Login performs a password login. On failure the classified error is both
// surfaced as a notification and returned as *AuthFailure; user state is
// untouched. Attempt counting and lockout are the caller's responsibility.
func (c *Controller) Login(ctx context.Context, creds Credentials) error {
	var resp loginResponse
	err := c.client.Post(ctx, api.EndpointLogin, map[string]interface{}{
		"email":      creds.Email,
		"password":   creds.Password,
		"rememberMe": creds.RememberMe,
	}, &resp)
	if err != nil {
		return c.failLogin(err)
	}

	if err := c.adoptLogin(resp, creds.RememberMe, tokens.ProviderPassword); err != nil {
		return errors.Wrap(err, "[Controller.Login] adopt")
	}

	c.notifier.Notify(Notification{Title: "Welcome back!", Description: "Successfully logged in", Variant: VariantInfo})
	if resp.OnboardingRequired {
		c.navigator.NavigateTo(c.paths(RouteOnboarding))
	} else {
		c.navigator.NavigateTo(c.paths(c.takeReturnTo()))
	}
	return nil
}

// LoginWithGoogle submits a third-party ID-token credential. The contract
// matches Login except the provider marker is "google" and an onboarding
// redirect selects the variant that tells the wizard identity fields are
// already established.
func (c *Controller) LoginWithGoogle(ctx context.Context, credential string, rememberMe bool) error {
	var resp loginResponse
	err := c.client.Post(ctx, api.EndpointGoogleOAuth, map[string]interface{}{
		"id_token":   credential,
		"rememberMe": rememberMe,
	}, &resp)
	if err != nil {
		return c.failLogin(err)
	}

	if err := c.adoptLogin(resp, rememberMe, tokens.ProviderGoogle); err != nil {
		return errors.Wrap(err, "[Controller.LoginWithGoogle] adopt")
	}

	c.notifier.Notify(Notification{Title: "Welcome!", Description: "Signed in with Google", Variant: VariantInfo})
	if resp.OnboardingRequired {
		c.navigator.NavigateTo(c.paths(RouteOnboardingGoogle))
	} else {
		c.navigator.NavigateTo(c.paths(c.takeReturnTo()))
	}
	return nil
}

// Logout notifies the backend on a best-effort basis, then always clears
// local state and returns to the login page. A backend failure never blocks
// the client-side logout.
func (c *Controller) Logout(ctx context.Context) {
	if refresh, ok := c.store.RefreshToken(); ok {
		err := c.client.Post(ctx, api.EndpointLogout, map[string]interface{}{
			"refresh_token": refresh,
		}, nil)
		if err != nil {
			log.Warn().Err(err).Msg("error during logout")
		}
	}

	if err := c.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear tokens on logout")
	}
	if err := c.store.ClearProvider(); err != nil {
		log.Warn().Err(err).Msg("failed to clear provider marker on logout")
	}

	c.mu.Lock()
	c.phase = Unauthenticated
	c.user = nil
	c.mu.Unlock()

	c.navigator.NavigateTo(c.paths(RouteLogin))
}

// AdoptUser installs a user established outside the login flows (for
// example after onboarding registration completes).
func (c *Controller) AdoptUser(user *User, onboardingRequired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = authPhase(onboardingRequired)
	c.user = user
	c.settled = true
}

func (c *Controller) adoptLogin(resp loginResponse, rememberMe bool, provider string) error {
	if resp.User == nil {
		return errors.New("login response missing user")
	}
	if err := c.store.Save(resp.Tokens, rememberMe); err != nil {
		return errors.Wrap(err, "store tokens")
	}
	if err := c.store.RecordProvider(provider, rememberMe); err != nil {
		return errors.Wrap(err, "record provider")
	}

	c.mu.Lock()
	c.phase = authPhase(resp.OnboardingRequired)
	c.user = resp.User
	c.settled = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) failLogin(err error) error {
	failure := api.Classify(err)
	c.notifier.Notify(Notification{
		Title:       "Authentication Error",
		Description: failure.Message,
		Variant:     VariantError,
	})
	return &AuthFailure{AuthError: failure}
}

// settle ends the Booting phase. Only the first call flips the settled
// flag; the loading state therefore ends exactly once per lifetime.
func (c *Controller) settle(phase Phase, user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settled && c.phase != Booting {
		return
	}
	c.phase = phase
	c.user = user
	c.settled = true
}

func authPhase(onboardingRequired bool) Phase {
	if onboardingRequired {
		return AuthenticatedOnboarding
	}
	return AuthenticatedComplete
}
