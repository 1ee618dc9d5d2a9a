package session

// Variant distinguishes informational notifications from failures.
type Variant string

const (
	VariantInfo  Variant = "info"
	VariantError Variant = "destructive"
)

// Notification is a transient user-facing message (the toast equivalent).
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Navigator receives navigation requests. Paths handed to it are already
// tenant-aware.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type nopNavigator struct{}

func (nopNavigator) NavigateTo(string) {}
