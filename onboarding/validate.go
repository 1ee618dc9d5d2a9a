package onboarding

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
	nonPhonePattern = regexp.MustCompile(`[^+\d]`)
)

// ValidateEmail checks presence and basic format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("Invalid email address")
	}
	return nil
}

// ValidatePassword checks presence. Password policy beyond presence is
// enforced server-side.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("Password is required")
	}
	return nil
}

// NormalizePhone strips everything but digits and a leading plus. The
// normalized form must start with a country code and carry at least 11
// characters in total.
func NormalizePhone(phone string) (string, error) {
	normalized := nonPhonePattern.ReplaceAllString(strings.TrimSpace(phone), "")
	if !strings.HasPrefix(normalized, "+") {
		return "", fmt.Errorf("Phone number must start with a country code (e.g. +1)")
	}
	if len(normalized) < 11 {
		return "", fmt.Errorf("Phone number must have a country code and at least 10 digits")
	}
	return normalized, nil
}

// validateStep returns the first failing field's message for the given step.
// googleIdentity skips the credential fields: a third-party sign-in already
// established them.
func (d Draft) validateStep(step int, googleIdentity bool) error {
	switch step {
	case StepProfile:
		return d.validateProfile(googleIdentity)
	case StepGoal:
		if d.MainOutput == "" {
			return fmt.Errorf("Please select an output goal")
		}
		if !contains(ValidGoals, d.MainOutput) {
			return fmt.Errorf("Please select a valid output goal")
		}
		return nil
	case StepDataConnection:
		return d.validateDataConnection()
	default:
		return fmt.Errorf("unknown step %d", step)
	}
}

func (d Draft) validateProfile(googleIdentity bool) error {
	if !googleIdentity {
		if err := ValidateEmail(d.Email); err != nil {
			return err
		}
		if err := ValidatePassword(d.Password); err != nil {
			return err
		}
	}
	if _, err := NormalizePhone(d.PhoneNumber); err != nil {
		return err
	}
	if len(strings.TrimSpace(d.Address)) < 5 {
		return fmt.Errorf("Please enter a complete address")
	}
	if d.Role == "" {
		return fmt.Errorf("Please select your role")
	}
	if !contains(ValidRoles, d.Role) {
		return fmt.Errorf("Please select a valid role")
	}
	if len(strings.TrimSpace(d.CompanyName)) < 2 {
		return fmt.Errorf("Company name must be at least 2 characters")
	}
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("All fields marked with * are required")
	}
	return nil
}

func (d Draft) validateDataConnection() error {
	if d.DataConnection == "" {
		return fmt.Errorf("Please select a data connection")
	}
	if d.DataConnection != ConnectionLiveData && d.DataConnection != ConnectionFileUpload {
		return fmt.Errorf("Please select a valid data connection")
	}
	if d.DataConnection == ConnectionFileUpload {
		if !contains(ValidTargetTables, d.TargetTable) {
			return fmt.Errorf("Please select a target data table")
		}
		if len(d.Files) == 0 {
			return fmt.Errorf("Please choose one or more files to upload")
		}
	}
	return nil
}

// validateAll re-validates the full draft ahead of submission.
func (d Draft) validateAll(googleIdentity bool) error {
	for step := StepProfile; step <= StepDataConnection; step++ {
		if err := d.validateStep(step, googleIdentity); err != nil {
			return err
		}
	}
	return nil
}
