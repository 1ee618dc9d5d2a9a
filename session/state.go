package session

// Phase is the controller's tagged state. Modeling the lifecycle as a
// variant instead of three booleans makes illegal combinations (such as
// onboarding-required while unauthenticated) unrepresentable.
type Phase int

const (
	// Booting: the one-time session rehydration has not settled yet.
	Booting Phase = iota
	// Unauthenticated: no user; onboarding is by definition not required.
	Unauthenticated
	// AuthenticatedOnboarding: a user is present but the backend reports
	// incomplete company setup, so the dashboard stays gated.
	AuthenticatedOnboarding
	// AuthenticatedComplete: a user is present and fully onboarded.
	AuthenticatedComplete
)

func (p Phase) String() string {
	switch p {
	case Booting:
		return "booting"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedOnboarding:
		return "authenticated-onboarding"
	case AuthenticatedComplete:
		return "authenticated-complete"
	}
	return "unknown"
}

// State is an immutable snapshot of the controller.
type State struct {
	Phase Phase
	User  *User
}

// IsLoading reports whether the initial rehydration has not settled.
func (s State) IsLoading() bool { return s.Phase == Booting }

// IsAuthenticated is the derived view: true iff a user is present.
func (s State) IsAuthenticated() bool {
	return s.Phase == AuthenticatedOnboarding || s.Phase == AuthenticatedComplete
}

// OnboardingRequired reports whether the dashboard is gated behind the
// onboarding wizard.
func (s State) OnboardingRequired() bool { return s.Phase == AuthenticatedOnboarding }
