package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Its-donkey/loginform/internal/ui/model"
)

func TestLooksLikeEmail(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{name: "blank", in: "", want: false},
		{name: "no at", in: "bad-email", want: false},
		{name: "nothing before", in: "@example.com", want: false},
		{name: "nothing after", in: "user@", want: false},
		{name: "lone at", in: "@", want: false},
		{name: "whitespace", in: "a b@c.com", want: false},
		{name: "minimal", in: "a@b", want: true},
		{name: "typical", in: "test@example.com", want: true},
		{name: "several at signs", in: "a@b@c.com", want: false},
		{name: "doubled at", in: "a@@b.com", want: false},
	}
	for _, tc := range cases {
		if got := LooksLikeEmail(tc.in); got != tc.want {
			t.Fatalf("%s: LooksLikeEmail(%q) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestValidateBothEmpty(t *testing.T) {
	v := DefaultValidator(DefaultMessages(), 0)
	got := v.Validate(model.Credentials{})
	want := model.ValidationResult{
		Valid: false,
		FieldErrors: map[model.Field]model.FieldError{
			model.FieldEmail:    {Kind: model.ErrorRequired, Message: "email is required"},
			model.FieldPassword: {Kind: model.ErrorRequired, Message: "password is required"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected validation result (-want +got):\n%s", diff)
	}
}

func TestValidateShapeOnlyRunsOncePresent(t *testing.T) {
	v := DefaultValidator(DefaultMessages(), 0)

	got := v.Validate(model.Credentials{Email: "bad-email"})
	if len(got.FieldErrors) != 1 {
		t.Fatalf("expected only the password presence error, got %+v", got.FieldErrors)
	}
	if got.FieldErrors[model.FieldPassword].Kind != model.ErrorRequired {
		t.Fatalf("expected password required, got %+v", got.FieldErrors)
	}

	got = v.Validate(model.Credentials{Email: "bad-email", Password: "secret1"})
	want := map[model.Field]model.FieldError{
		model.FieldEmail: {Kind: model.ErrorFormat, Message: "invalid email format"},
	}
	if diff := cmp.Diff(want, got.FieldErrors); diff != "" {
		t.Fatalf("unexpected field errors (-want +got):\n%s", diff)
	}
}

func TestValidateMinPasswordLength(t *testing.T) {
	v := DefaultValidator(DefaultMessages(), 8)

	got := v.Validate(model.Credentials{Email: "a@b.com", Password: "short"})
	fe, ok := got.FieldErrors[model.FieldPassword]
	if !ok || fe.Kind != model.ErrorLength {
		t.Fatalf("expected length error, got %+v", got)
	}
	if fe.Message != "password must be at least 8 characters" {
		t.Fatalf("unexpected message %q", fe.Message)
	}

	if res := v.Validate(model.Credentials{Email: "a@b.com", Password: "longenough"}); !res.Valid {
		t.Fatalf("expected valid, got %+v", res)
	}
}

func TestValidatePassesWithoutErrors(t *testing.T) {
	res := DefaultValidator(DefaultMessages(), 0).Validate(model.Credentials{Email: "a@b.com", Password: "secret1"})
	if !res.Valid || res.FieldErrors != nil {
		t.Fatalf("expected a clean result, got %+v", res)
	}
}

func TestValidateFieldStopsAtFirstFailure(t *testing.T) {
	v := DefaultValidator(DefaultMessages(), 4)
	fe, failed := v.ValidateField(model.FieldEmail, model.Credentials{})
	if !failed || fe.Kind != model.ErrorRequired {
		t.Fatalf("expected required error, got %+v failed=%v", fe, failed)
	}
	fe, failed = v.ValidateField(model.FieldEmail, model.Credentials{Email: "nope"})
	if !failed || fe.Kind != model.ErrorFormat {
		t.Fatalf("expected format error, got %+v failed=%v", fe, failed)
	}
	if _, failed = v.ValidateField(model.FieldPassword, model.Credentials{Password: "abcd"}); failed {
		t.Fatalf("expected password to pass")
	}
}

func TestCustomStages(t *testing.T) {
	v := NewValidator([]Rule{RequiredRule(model.FieldPassword, "need it")})
	res := v.Validate(model.Credentials{Email: "anything"})
	if res.Valid || res.FieldErrors[model.FieldPassword].Message != "need it" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestMessagesWithDefaults(t *testing.T) {
	msgs := Messages{EmailRequired: "Email is required."}.WithDefaults()
	if msgs.EmailRequired != "Email is required." {
		t.Fatalf("override lost: %q", msgs.EmailRequired)
	}
	if msgs.PasswordRequired != DefaultMessages().PasswordRequired {
		t.Fatalf("default not applied: %q", msgs.PasswordRequired)
	}
	if got := (Messages{PasswordTooShort: "too short"}).passwordTooShort(6); got != "too short" {
		t.Fatalf("expected verbatim message, got %q", got)
	}
}
