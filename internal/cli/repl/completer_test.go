package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter(pageNames())
	fields := []string{"identifier", "password"}

	tests := []struct {
		name string
		line string
		want []string
	}{
		{"command prefix", "s", []string{"set", "show", "status", "submit"}},
		{"exact command", "logout", []string{"logout"}},
		{"exit and quit", "ex", []string{"exit"}},
		{"quit", "q", []string{"quit"}},
		{"no match", "xyz", nil},
		{"page names", "go ", []string{"go forgot-password", "go home", "go login", "go reset-password", "go signup"}},
		{"page prefix", "go s", []string{"go signup"}},
		{"reset page", "go r", []string{"go reset-password"}},
		{"field names", "set p", []string{"set password"}},
		{"all fields", "set ", []string{"set identifier", "set password"}},
		{"no argument completion", "show x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Complete(tt.line, fields)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
