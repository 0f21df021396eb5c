package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type level int

func (l level) String() string { return [...]string{"low", "high"}[l] }

type fieldErrorRow struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Level   level  `json:"level" table:"wide"`
}

func TestTableFormatter_Table(t *testing.T) {
	table := &Table{Headers: []string{"NAME", "VALUE"}}
	table.AddRow("key1", "value1")
	table.AddRow("key2", "value2")

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[1], "value1") {
		t.Errorf("unexpected table: %q", buf.String())
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	table := Table{Headers: []string{"COL"}, Rows: [][]string{{"x"}}}

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, table); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "COL") {
		t.Error("header should be omitted")
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	view := &profileView{SubjectID: "u-1", CreatedAt: created, Token: "secret"}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, view); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "FIELD") || !strings.Contains(out, "subjectId") {
		t.Errorf("missing labels: %q", out)
	}
	if !strings.Contains(out, "email") || !strings.Contains(out, "-") {
		t.Errorf("empty email should render as '-': %q", out)
	}
	if strings.Contains(out, "createdAt") {
		t.Error("wide field shown without Wide")
	}
	if strings.Contains(out, "secret") {
		t.Error("table:\"-\" field must be hidden")
	}

	buf.Reset()
	if err := (&TableFormatter{Wide: true}).Format(&buf, view); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "2025-03-01 12:00:00") {
		t.Errorf("wide output missing createdAt: %q", buf.String())
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	rows := []fieldErrorRow{
		{Field: "email", Message: "Email is required", Level: 1},
		{Field: "password", Message: "Password is required"},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{Wide: true}).Format(&buf, rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "FIELD") || !strings.Contains(out, "MESSAGE") {
		t.Errorf("missing headers: %q", out)
	}
	if !strings.Contains(out, "high") || !strings.Contains(out, "low") {
		t.Errorf("Stringer values not used: %q", out)
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]string{"b": "2", "a": "1", "c": "3"}
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Index(out, "a ") > strings.Index(out, "b ") || strings.Index(out, "b ") > strings.Index(out, "c ") {
		t.Errorf("rows not sorted: %q", out)
	}
}

func TestTableFormatter_FallbackJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty string", "", "-"},
		{"string", "x", "x"},
		{"bool true", true, "yes"},
		{"bool false", false, "no"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"duration", 90*time.Minute + 500*time.Millisecond, "1h30m0s"},
		{"zero duration", time.Duration(0), "-"},
		{"zero time", time.Time{}, "-"},
		{"nil pointer", (*string)(nil), "-"},
		{"strings", []string{"a", "b"}, "a, b"},
		{"empty slice", []string{}, "-"},
		{"stringer", level(1), "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valueOf(tt.in)
			if got := formatValue(v); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"subjectId": "subject_Id",
		"expiresAt": "expires_At",
		"field":     "field",
		"":          "",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func valueOf(v any) reflect.Value {
	return reflect.ValueOf(v)
}
