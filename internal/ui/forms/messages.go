package forms

import (
	"fmt"
	"strings"
)

// Messages holds the user-facing wording for validation and submit failures.
// Wording belongs to the presentation layer, so every entry can be replaced
// through configuration.
type Messages struct {
	EmailRequired    string `json:"email_required" yaml:"email_required"`
	PasswordRequired string `json:"password_required" yaml:"password_required"`
	EmailInvalid     string `json:"email_invalid" yaml:"email_invalid"`
	// PasswordTooShort may contain a single %d verb for the minimum length.
	PasswordTooShort string `json:"password_too_short" yaml:"password_too_short"`
	FormInvalid      string `json:"form_invalid" yaml:"form_invalid"`
	SubmitFailed     string `json:"submit_failed" yaml:"submit_failed"`
}

// DefaultMessages returns the built-in wording.
func DefaultMessages() Messages {
	return Messages{
		EmailRequired:    "email is required",
		PasswordRequired: "password is required",
		EmailInvalid:     "invalid email format",
		PasswordTooShort: "password must be at least %d characters",
		FormInvalid:      "please correct the highlighted fields",
		SubmitFailed:     "login failed",
	}
}

// WithDefaults fills blank entries from DefaultMessages.
func (m Messages) WithDefaults() Messages {
	def := DefaultMessages()
	fill := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}
	fill(&m.EmailRequired, def.EmailRequired)
	fill(&m.PasswordRequired, def.PasswordRequired)
	fill(&m.EmailInvalid, def.EmailInvalid)
	fill(&m.PasswordTooShort, def.PasswordTooShort)
	fill(&m.FormInvalid, def.FormInvalid)
	fill(&m.SubmitFailed, def.SubmitFailed)
	return m
}

func (m Messages) passwordTooShort(min int) string {
	if strings.Contains(m.PasswordTooShort, "%d") {
		return fmt.Sprintf(m.PasswordTooShort, min)
	}
	return m.PasswordTooShort
}
