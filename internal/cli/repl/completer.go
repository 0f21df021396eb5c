package repl

import (
	"sort"
	"strings"
)

// Completer suggests commands, page names and form fields.
type Completer struct {
	commands []string
	pages    []string
}

// NewCompleter creates a completer for the given page names.
func NewCompleter(pages []string) *Completer {
	commands := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		commands = append(commands, name)
	}
	commands = append(commands, "quit")
	sort.Strings(commands)

	p := append([]string(nil), pages...)
	sort.Strings(p)
	return &Completer{commands: commands, pages: p}
}

// Complete returns full-line suggestions for line. fields are the fields
// of the form currently shown.
func (c *Completer) Complete(line string, fields []string) []string {
	cmd, rest, hasArg := strings.Cut(line, " ")
	if !hasArg {
		return withPrefix(c.commands, "", cmd)
	}

	switch cmd {
	case "go":
		return withPrefix(c.pages, "go ", rest)
	case "set":
		return withPrefix(fields, "set ", rest)
	default:
		return nil
	}
}

func withPrefix(words []string, lead, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, lead+w)
		}
	}
	return out
}
