package forms

import "github.com/Its-donkey/loginform/internal/ui/model"

// NewLoginFormState returns the empty state a form starts in.
func NewLoginFormState() model.LoginFormState {
	return model.LoginFormState{Errors: make(map[model.Field]model.FieldError)}
}

// ClearFormFields empties both inputs and drops every error.
func ClearFormFields(state *model.LoginFormState) {
	state.Email = ""
	state.Password = ""
	state.Errors = make(map[model.Field]model.FieldError)
	state.FormError = ""
}

// ResetFormState clears the fields and ends any in-flight submission.
func ResetFormState(state *model.LoginFormState) {
	ClearFormFields(state)
	state.Submitting = false
}

// CanSubmit reports whether the submit action is currently permitted.
func CanSubmit(state model.LoginFormState) bool {
	return !state.Submitting && state.Email != "" && state.Password != ""
}

// BuildView projects state onto the presentational contract.
func BuildView(state model.LoginFormState) model.LoginView {
	view := model.LoginView{
		Phase:         model.PhaseIdle,
		Email:         state.Email,
		Password:      state.Password,
		Submitting:    state.Submitting,
		EmailError:    state.Errors[model.FieldEmail].Message,
		PasswordError: state.Errors[model.FieldPassword].Message,
		FormError:     state.FormError,
		CanSubmit:     CanSubmit(state),
	}
	if state.Submitting {
		view.Phase = model.PhaseSubmitting
	}
	return view
}

func copyErrors(errs map[model.Field]model.FieldError) map[model.Field]model.FieldError {
	out := make(map[model.Field]model.FieldError, len(errs))
	for field, fe := range errs {
		out[field] = fe
	}
	return out
}
