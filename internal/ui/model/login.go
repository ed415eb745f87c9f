package model

// Field names a login form input.
type Field string

const (
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
)

// ErrorKind classifies a field-level validation failure.
type ErrorKind string

const (
	ErrorRequired ErrorKind = "required"
	ErrorFormat   ErrorKind = "format"
	ErrorLength   ErrorKind = "length"
)

// FieldError is the validation message attached to a single input.
type FieldError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Credentials carries the values handed to a submit handler.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginFormState holds the reactive state for the login form.
type LoginFormState struct {
	Email      string
	Password   string
	Errors     map[Field]FieldError
	FormError  string
	Submitting bool
}

// ValidationResult is produced fresh on every validation pass.
type ValidationResult struct {
	Valid       bool                 `json:"valid"`
	FieldErrors map[Field]FieldError `json:"fieldErrors,omitempty"`
}

// Outcome is the resolution of a single submit attempt.
type Outcome struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Success reports an accepted submission.
func Success() Outcome {
	return Outcome{OK: true}
}

// Failure reports a rejected submission with the collaborator's reason.
func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Phase is the coarse state of the login form.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

// LoginView is the snapshot consumed by rendering layers.
type LoginView struct {
	Phase         Phase  `json:"phase"`
	Email         string `json:"email"`
	Password      string `json:"-"`
	Submitting    bool   `json:"submitting"`
	EmailError    string `json:"emailError,omitempty"`
	PasswordError string `json:"passwordError,omitempty"`
	FormError     string `json:"formError,omitempty"`
	CanSubmit     bool   `json:"canSubmit"`
}

// HasErrors reports whether any field or form level error text is present.
func (v LoginView) HasErrors() bool {
	return v.EmailError != "" || v.PasswordError != "" || v.FormError != ""
}
