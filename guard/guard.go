// Package guard gates protected UI behind the auth session controller. It
// is a pure function of controller state plus the recorded auth-provider
// marker and holds no state of its own.
package guard

import (
	"github.com/firmaboard/firmaboard-go/session"
	"github.com/firmaboard/firmaboard-go/tokens"
)

// Action is what the caller should render or do.
type Action int

const (
	// ShowLoading: the session has not settled; render a spinner, nothing else.
	ShowLoading Action = iota
	// RedirectLogin: unauthenticated; go to the tenant-aware login path.
	RedirectLogin
	// RedirectOnboarding: authenticated but company setup is incomplete.
	RedirectOnboarding
	// Render: authenticated and complete; render the protected content.
	Render
)

// Decision is the guard's verdict for one evaluation.
type Decision struct {
	Action Action
	// Target is the redirect path for the redirect actions, already
	// tenant-aware.
	Target string
	// From carries the attempted location on a login redirect so the
	// post-login flow can return the user there.
	From string
}

// Evaluate decides what to do for an attempted location. tenantPath builds
// tenant-aware paths (tenant.Resolver.Path); provider is the recorded
// last-auth-provider marker, empty when absent.
func Evaluate(state session.State, provider string, tenantPath func(string) string, from string) Decision {
	if tenantPath == nil {
		tenantPath = func(p string) string { return p }
	}

	switch {
	case state.IsLoading():
		return Decision{Action: ShowLoading}
	case !state.IsAuthenticated():
		return Decision{Action: RedirectLogin, Target: tenantPath(session.RouteLogin), From: from}
	case state.OnboardingRequired():
		target := session.RouteOnboarding
		if provider == tokens.ProviderGoogle {
			target = session.RouteOnboardingGoogle
		}
		return Decision{Action: RedirectOnboarding, Target: tenantPath(target)}
	default:
		return Decision{Action: Render}
	}
}
