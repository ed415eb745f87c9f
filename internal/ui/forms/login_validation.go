package forms

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Its-donkey/loginform/internal/ui/model"
)

// Rule checks a single aspect of one field.
type Rule interface {
	Field() model.Field
	Check(creds model.Credentials) (model.FieldError, bool)
}

type requiredRule struct {
	field   model.Field
	message string
}

// RequiredRule flags the field when its value is empty.
func RequiredRule(field model.Field, message string) Rule {
	return requiredRule{field: field, message: message}
}

func (r requiredRule) Field() model.Field { return r.field }

func (r requiredRule) Check(creds model.Credentials) (model.FieldError, bool) {
	if fieldValue(creds, r.field) != "" {
		return model.FieldError{}, false
	}
	return model.FieldError{Kind: model.ErrorRequired, Message: r.message}, true
}

type emailFormatRule struct {
	message string
}

// EmailFormatRule flags an email that does not hold exactly one "@" with at
// least one character on each side. Whitespace is never accepted.
func EmailFormatRule(message string) Rule {
	return emailFormatRule{message: message}
}

func (r emailFormatRule) Field() model.Field { return model.FieldEmail }

func (r emailFormatRule) Check(creds model.Credentials) (model.FieldError, bool) {
	if LooksLikeEmail(creds.Email) {
		return model.FieldError{}, false
	}
	return model.FieldError{Kind: model.ErrorFormat, Message: r.message}, true
}

type minLengthRule struct {
	field   model.Field
	min     int
	message string
}

// MinLengthRule flags values shorter than min characters.
func MinLengthRule(field model.Field, min int, message string) Rule {
	return minLengthRule{field: field, min: min, message: message}
}

func (r minLengthRule) Field() model.Field { return r.field }

func (r minLengthRule) Check(creds model.Credentials) (model.FieldError, bool) {
	if utf8.RuneCountInString(fieldValue(creds, r.field)) >= r.min {
		return model.FieldError{}, false
	}
	return model.FieldError{Kind: model.ErrorLength, Message: r.message}, true
}

// LooksLikeEmail reports whether value splits on its only "@" into a
// non-empty local part and domain.
func LooksLikeEmail(value string) bool {
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.Count(value, "@") != 1 {
		return false
	}
	at := strings.Index(value, "@")
	return at > 0 && at < len(value)-1
}

func fieldValue(creds model.Credentials, field model.Field) string {
	switch field {
	case model.FieldEmail:
		return creds.Email
	case model.FieldPassword:
		return creds.Password
	default:
		return ""
	}
}

// Validator runs rules in stages. A stage only runs when every earlier stage
// passed, and the first failing rule for a field wins.
type Validator struct {
	stages [][]Rule
}

// NewValidator builds a Validator from explicit stages.
func NewValidator(stages ...[]Rule) *Validator {
	return &Validator{stages: stages}
}

// DefaultValidator wires the presence stage followed by the shape stage.
// minPasswordLength <= 0 disables the length rule.
func DefaultValidator(msgs Messages, minPasswordLength int) *Validator {
	msgs = msgs.WithDefaults()
	presence := []Rule{
		RequiredRule(model.FieldEmail, msgs.EmailRequired),
		RequiredRule(model.FieldPassword, msgs.PasswordRequired),
	}
	shape := []Rule{EmailFormatRule(msgs.EmailInvalid)}
	if minPasswordLength > 0 {
		shape = append(shape, MinLengthRule(model.FieldPassword, minPasswordLength, msgs.passwordTooShort(minPasswordLength)))
	}
	return NewValidator(presence, shape)
}

// Validate checks creds against every stage.
func (v *Validator) Validate(creds model.Credentials) model.ValidationResult {
	errs := make(map[model.Field]model.FieldError)
	for _, stage := range v.stages {
		for _, rule := range stage {
			if _, seen := errs[rule.Field()]; seen {
				continue
			}
			if fe, failed := rule.Check(creds); failed {
				errs[rule.Field()] = fe
			}
		}
		if len(errs) > 0 {
			break
		}
	}
	result := model.ValidationResult{Valid: len(errs) == 0}
	if !result.Valid {
		result.FieldErrors = errs
	}
	return result
}

// ValidateField runs only the rules that target field, in stage order.
func (v *Validator) ValidateField(field model.Field, creds model.Credentials) (model.FieldError, bool) {
	for _, stage := range v.stages {
		for _, rule := range stage {
			if rule.Field() != field {
				continue
			}
			if fe, failed := rule.Check(creds); failed {
				return fe, true
			}
		}
	}
	return model.FieldError{}, false
}
