package screen

import "github.com/yndnr/sessiongate/internal/form"

var labels = map[string]string{
	form.FieldIdentifier:      "User ID or email",
	form.FieldPassword:        "Password",
	form.FieldDisplayName:     "Full name",
	form.FieldEmail:           "Email",
	form.FieldConfirmPassword: "Confirm password",
	form.FieldToken:           "Reset token",
}

// Label returns the prompt label for a form field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}
