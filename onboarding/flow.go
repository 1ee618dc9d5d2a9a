// Package onboarding implements the 3-step registration wizard: profile,
// output goal, data connection. The flow gates each step behind validation,
// submits either a fresh registration or a company-profile completion, and
// runs the optional file uploads.
package onboarding

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/firmaboard/firmaboard-go/api"
	clienterrors "github.com/firmaboard/firmaboard-go/internal/errors"
	"github.com/firmaboard/firmaboard-go/session"
	"github.com/firmaboard/firmaboard-go/tokens"
)

// Flow is the onboarding wizard controller.
type Flow struct {
	client    *api.Client
	store     *tokens.Store
	session   *session.Controller
	notifier  session.Notifier
	navigator session.Navigator
	paths     func(string) string
	now       func() time.Time
	sleep     func(time.Duration)

	// OnProgress, when set, receives per-file upload progress.
	OnProgress func(name string, pct int)

	// Draft holds the wizard's field values. Mutated freely between steps;
	// Back never discards it.
	Draft Draft

	step           int
	googleIdentity bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithNotifier sets the notification sink.
func WithNotifier(n session.Notifier) Option {
	return func(f *Flow) { f.notifier = n }
}

// WithNavigator sets the navigation sink.
func WithNavigator(n session.Navigator) Option {
	return func(f *Flow) { f.navigator = n }
}

// WithPathFunc sets the tenant-aware path builder.
func WithPathFunc(fn func(string) string) Option {
	return func(f *Flow) { f.paths = fn }
}

// WithGoogleIdentity marks the identity as already established by a
// third-party sign-in: email and password become optional/prefilled.
func WithGoogleIdentity() Option {
	return func(f *Flow) { f.googleIdentity = true }
}

// WithInitialStep starts the wizard at a later step.
func WithInitialStep(step int) Option {
	return func(f *Flow) {
		if step >= StepProfile && step <= StepDataConnection {
			f.step = step
		}
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithRedirectDelay overrides the pause before post-submit navigation.
// Tests pass zero.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) {
		f.sleep = func(time.Duration) {
			if d > 0 {
				time.Sleep(d)
			}
		}
	}
}

// NewFlow creates a wizard at step 1.
func NewFlow(client *api.Client, store *tokens.Store, sess *session.Controller, options ...Option) *Flow {
	f := &Flow{
		client:    client,
		store:     store,
		session:   sess,
		notifier:  session.NotifierFunc(func(session.Notification) {}),
		navigator: session.NavigatorFunc(func(string) {}),
		paths:     func(p string) string { return p },
		now:       time.Now,
		sleep:     time.Sleep,
		step:      StepProfile,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Step returns the current step, 1..3.
func (f *Flow) Step() int { return f.step }

// GoogleIdentity reports whether the wizard runs in established-identity
// mode.
func (f *Flow) GoogleIdentity() bool { return f.googleIdentity }

// Next advances to the following step iff the current step validates.
// A failing field is surfaced as a notification and the step is unchanged.
func (f *Flow) Next() bool {
	if err := f.Draft.validateStep(f.step, f.googleIdentity); err != nil {
		f.notifyStepFailure(err)
		return false
	}
	if f.step < StepDataConnection {
		f.step++
	}
	return true
}

// Back returns to the previous step. Field values are preserved.
func (f *Flow) Back() {
	if f.step > StepProfile {
		f.step--
	}
}

// AttachFile adds a pending attachment to the draft.
func (f *Flow) AttachFile(file api.File) {
	f.Draft.Files = append(f.Draft.Files, file)
}

// ClearFiles discards the pending file list. Purely local: nothing has been
// sent yet.
func (f *Flow) ClearFiles() {
	f.Draft.Files = nil
}

type registerRequest struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	PhoneNumber string         `json:"phone_number"`
	Address     string         `json:"address"`
	Role        string         `json:"role"`
	Company     companyPayload `json:"company"`
}

type companyPayload struct {
	Name               string   `json:"name"`
	RegistrationNumber string   `json:"registration_number"`
	Address            string   `json:"address"`
	ContactEmail       string   `json:"contact_email"`
	ContactPhone       string   `json:"contact_phone"`
	Definitions        []string `json:"definitions"`
}

type profileRequest struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	PhoneNumber string         `json:"phone_number"`
	Address     string         `json:"address"`
	Role        string         `json:"role"`
	MainOutput  string         `json:"main_output"`
	Company     companyPayload `json:"company"`
}

type registerResponse struct {
	Message string        `json:"message"`
	User    *session.User `json:"user"`
	Tokens  *tokens.Pair  `json:"tokens"`
}

type profileResponse struct {
	User *session.User `json:"user"`
}

// Submit is the terminal action from step 3. It re-validates the whole
// draft, then either registers a fresh account with its company or, for an
// already-authenticated identity, completes the company profile.
func (f *Flow) Submit(ctx context.Context) error {
	if f.step != StepDataConnection {
		return clienterrors.ErrSubmitFromMidway
	}
	if err := f.Draft.validateAll(f.googleIdentity); err != nil {
		f.notifier.Notify(session.Notification{
			Title:       "Validation Error",
			Description: err.Error(),
			Variant:     session.VariantError,
		})
		return clienterrors.Wrapf(clienterrors.ErrStepInvalid, "%s", err.Error())
	}

	if f.session.State().IsAuthenticated() {
		return f.submitCompletion(ctx)
	}
	return f.submitRegistration(ctx)
}

func (f *Flow) submitRegistration(ctx context.Context) error {
	var resp registerResponse
	if err := f.client.Post(ctx, api.EndpointRegister, f.registrationPayload(), &resp); err != nil {
		return f.failSubmit(err)
	}
	if resp.Tokens == nil || resp.User == nil {
		return errors.New("[Flow.submitRegistration] no authentication tokens received")
	}

	// Registration always persists the session.
	if err := f.store.Save(*resp.Tokens, true); err != nil {
		return errors.Wrap(err, "[Flow.submitRegistration] store tokens")
	}
	f.session.AdoptUser(resp.User, false)

	f.notifier.Notify(session.Notification{
		Title:       "Registration successful",
		Description: "Welcome to Firmaboard! Redirecting to dashboard...",
		Variant:     session.VariantInfo,
	})

	f.finish(ctx)
	return nil
}

func (f *Flow) submitCompletion(ctx context.Context) error {
	var resp profileResponse
	if err := f.client.Post(ctx, api.EndpointSetupCompanyProfile, f.profilePayload(), &resp); err != nil {
		return f.failSubmit(err)
	}
	if resp.User != nil {
		f.session.AdoptUser(resp.User, false)
	}

	f.notifier.Notify(session.Notification{
		Title:       "Company profile completed",
		Description: "Redirecting to dashboard...",
		Variant:     session.VariantInfo,
	})

	f.finish(ctx)
	return nil
}

// finish runs the conditional uploads and performs the delayed navigation to
// the tenant-aware dashboard, leaving time for the success notification.
func (f *Flow) finish(ctx context.Context) {
	if f.Draft.DataConnection == ConnectionFileUpload && len(f.Draft.Files) > 0 {
		f.uploadAll(ctx)
	}
	f.sleep(time.Second)
	f.navigator.NavigateTo(f.paths(session.RouteDashboard))
}

// uploadAll runs the attached uploads concurrently and independently.
// Success and failure are reported as an aggregate count, never as an
// all-or-nothing transaction.
func (f *Flow) uploadAll(ctx context.Context) (succeeded, total int) {
	files := f.Draft.Files
	total = len(files)

	var successCount atomic.Int64
	var group errgroup.Group
	for _, file := range files {
		file := file
		group.Go(func() error {
			progress := func(pct int) {
				if f.OnProgress != nil {
					f.OnProgress(file.Name, pct)
				}
			}
			if err := f.client.Upload(ctx, api.EndpointUploads, file, f.Draft.TargetTable, progress); err != nil {
				log.Warn().Err(err).Str("file", file.Name).Msg("upload failed")
				return nil // individual failures never abort the batch
			}
			successCount.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	succeeded = int(successCount.Load())
	f.notifier.Notify(session.Notification{
		Title:       "Upload complete",
		Description: strconv.Itoa(succeeded) + " of " + strconv.Itoa(total) + " file(s) uploaded.",
		Variant:     session.VariantInfo,
	})
	f.Draft.Files = nil
	return succeeded, total
}

// failSubmit classifies a registration failure. An account-already-exists
// conflict gets its own notification and a delayed redirect to login; the
// rest surface as generic registration failures.
func (f *Flow) failSubmit(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "already exists") {
		f.notifier.Notify(session.Notification{
			Title:       "Account Already Exists",
			Description: "This email is already registered. Please try logging in instead.",
			Variant:     session.VariantError,
		})
		f.sleep(2 * time.Second)
		f.navigator.NavigateTo(f.paths(session.RouteLogin))
		return clienterrors.Wrapf(clienterrors.ErrAccountConflict, "%s", apiErr.Message)
	}

	message := "An unexpected error occurred"
	if apiErr != nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	f.notifier.Notify(session.Notification{
		Title:       "Registration failed",
		Description: message,
		Variant:     session.VariantError,
	})
	return errors.Wrap(err, "[Flow.Submit] register")
}

func (f *Flow) notifyStepFailure(err error) {
	title := "Please complete all required fields"
	switch f.step {
	case StepGoal:
		title = "Please select an output goal"
	case StepDataConnection:
		title = "Please select a data connection"
	}
	f.notifier.Notify(session.Notification{
		Title:       title,
		Description: err.Error(),
		Variant:     session.VariantError,
	})
}

func (f *Flow) registrationPayload() registerRequest {
	phone, _ := NormalizePhone(f.Draft.PhoneNumber)
	return registerRequest{
		Email:       strings.TrimSpace(f.Draft.Email),
		Password:    f.Draft.Password,
		FirstName:   strings.TrimSpace(f.Draft.FirstName),
		LastName:    strings.TrimSpace(f.Draft.LastName),
		PhoneNumber: phone,
		Address:     strings.TrimSpace(f.Draft.Address),
		Role:        strings.TrimSpace(f.Draft.Role),
		Company:     f.companyPayload(phone),
	}
}

func (f *Flow) profilePayload() profileRequest {
	phone, _ := NormalizePhone(f.Draft.PhoneNumber)
	return profileRequest{
		FirstName:   strings.TrimSpace(f.Draft.FirstName),
		LastName:    strings.TrimSpace(f.Draft.LastName),
		PhoneNumber: phone,
		Address:     strings.TrimSpace(f.Draft.Address),
		Role:        strings.TrimSpace(f.Draft.Role),
		MainOutput:  f.Draft.MainOutput,
		Company:     f.companyPayload(phone),
	}
}

func (f *Flow) companyPayload(phone string) companyPayload {
	return companyPayload{
		Name:               strings.TrimSpace(f.Draft.CompanyName),
		RegistrationNumber: "FB" + strconv.FormatInt(f.now().UnixMilli(), 10),
		Address:            strings.TrimSpace(f.Draft.Address),
		ContactEmail:       strings.TrimSpace(f.Draft.Email),
		ContactPhone:       phone,
		Definitions:        f.Draft.CompanyDefinitions,
	}
}
