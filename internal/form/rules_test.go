package form

import (
	"testing"
)

func TestValidate(t *testing.T) {
	rules := []Rule{
		Required("email", "Email is required"),
		Email("email", ""),
		Required("password", "Password is required"),
		MinLength("password", "Password", 6),
		MaxLength("password", "Password", 10),
		Matches("confirm", "password", "Passwords do not match."),
	}

	tests := []struct {
		name   string
		fields map[string]string
		want   map[string]string
	}{
		{
			name:   "all valid",
			fields: map[string]string{"email": "a@b.com", "password": "secret1", "confirm": "secret1"},
			want:   map[string]string{},
		},
		{
			name:   "first failure per field wins",
			fields: map[string]string{"email": "", "password": "", "confirm": ""},
			want: map[string]string{
				"email":    "Email is required",
				"password": "Password is required",
			},
		},
		{
			name:   "short password",
			fields: map[string]string{"email": "a@b.com", "password": "ab", "confirm": "ab"},
			want:   map[string]string{"password": "Password must be at least 6 characters long"},
		},
		{
			name:   "long password",
			fields: map[string]string{"email": "a@b.com", "password": "abcdefghijk", "confirm": "abcdefghijk"},
			want:   map[string]string{"password": "Password must be at most 10 characters long"},
		},
		{
			name:   "mismatch",
			fields: map[string]string{"email": "a@b.com", "password": "secret1", "confirm": "secret2"},
			want:   map[string]string{"confirm": "Passwords do not match."},
		},
		{
			name:   "whitespace is not a value",
			fields: map[string]string{"email": "a@b.com", "password": "   ", "confirm": "   "},
			want:   map[string]string{"password": "Password is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(rules, tt.fields)
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("error[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestEmailRule(t *testing.T) {
	r := Email("email", "")
	valid := []string{"a@b.com", "first.last@example.co.uk", "x+tag@y.io", ""}
	invalid := []string{"plain", "a@b", "@b.com", "a@.com", "a b@c.com", "a@b c.com", "a@@b.com"}

	for _, v := range valid {
		if !r.check(map[string]string{"email": v}) {
			t.Errorf("email %q should pass", v)
		}
	}
	for _, v := range invalid {
		if r.check(map[string]string{"email": v}) {
			t.Errorf("email %q should fail", v)
		}
	}
	if r.Message != "Please enter a valid email address." {
		t.Errorf("default message = %q", r.Message)
	}
}

func TestMinLength_CountsCharacters(t *testing.T) {
	r := MinLength("password", "Password", 4)
	if !r.check(map[string]string{"password": "ñañá"}) {
		t.Error("four multibyte characters should satisfy length 4")
	}
}

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		fn   Normalizer
		in   string
		want string
	}{
		{"trim", Trim, "  Ada  ", "Ada"},
		{"fold email", FoldEmail, " Ada@Example.COM ", "ada@example.com"},
		{"fold identifier email", FoldIdentifier, "Ada@Example.com", "ada@example.com"},
		{"identifier keeps case", FoldIdentifier, " AdaL ", "AdaL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
