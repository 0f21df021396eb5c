package form

import "maps"

// Status is the controller state.
type Status int

const (
	Idle Status = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a form for display.
type State struct {
	Fields        map[string]string `json:"fields"`
	FieldErrors   map[string]string `json:"fieldErrors,omitempty"`
	Status        Status            `json:"-"`
	TopLevelError string            `json:"error,omitempty"`
	Confirmation  string            `json:"confirmation,omitempty"`
}

// clone returns a deep copy safe to hand out.
func (s State) clone() State {
	out := s
	out.Fields = maps.Clone(s.Fields)
	out.FieldErrors = maps.Clone(s.FieldErrors)
	if out.FieldErrors == nil {
		out.FieldErrors = map[string]string{}
	}
	return out
}

// HasErrors reports whether any field error is set.
func (s State) HasErrors() bool {
	return len(s.FieldErrors) > 0
}
