package repl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yndnr/sessiongate/internal/cli/output"
	"github.com/yndnr/sessiongate/internal/cli/screen"
	"github.com/yndnr/sessiongate/internal/form"
	"github.com/yndnr/sessiongate/internal/guard"
)

var commandHelp = map[string]string{
	"go":       "go PAGE             show login, signup, forgot-password, reset-password or home",
	"set":      "set FIELD [VALUE]   edit a form field (secrets are read from the next line)",
	"show":     "show                print the current form",
	"submit":   "submit              submit the current form",
	"profile":  "profile             show the signed-in account",
	"logout":   "logout              forget the session and return to login",
	"status":   "status              show the local session",
	"complete": "complete PREFIX     list completions",
	"help":     "help                show this help",
	"exit":     "exit                leave (also quit, Ctrl-D)",
}

var pages = map[string]string{
	"login":           guard.PathLogin,
	"signup":          guard.PathSignup,
	"forgot-password": guard.PathForgotPassword,
	"reset-password":  guard.PathResetPassword,
	"home":            guard.PathHome,
}

func pageNames() []string {
	names := make([]string, 0, len(pages))
	for n := range pages {
		names = append(names, n)
	}
	return names
}

func (r *REPL) printHelp() {
	names := make([]string, 0, len(commandHelp))
	for n := range commandHelp {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(r.output, "  %s\n", commandHelp[n])
	}
}

func (r *REPL) navigate(ctx context.Context, path string) error {
	shown, err := r.screens.Navigate(ctx, path)
	if err != nil {
		return err
	}
	if shown != path {
		fmt.Fprintf(r.output, "→ %s\n", shown)
	}
	return nil
}

func (r *REPL) cmdGo(ctx context.Context, args string) error {
	path, ok := pages[strings.TrimPrefix(args, "/")]
	if !ok {
		return fmt.Errorf("unknown page %q", args)
	}
	return r.navigate(ctx, path)
}

func (r *REPL) cmdSet(args string) error {
	f := r.screens.Form()
	if f == nil {
		return screen.ErrNoForm
	}

	field, value, hasValue := strings.Cut(args, " ")
	if field == "" {
		return fmt.Errorf("usage: set FIELD [VALUE] (fields: %s)", strings.Join(f.Fields(), ", "))
	}
	if !hasValue && f.IsSensitive(field) {
		r.pending = field
		return nil
	}
	return f.Edit(field, value)
}

func (r *REPL) cmdShow() error {
	f := r.screens.Form()
	if f == nil {
		fmt.Fprintf(r.output, "%s has no form\n", r.screens.Current())
		return nil
	}

	st := f.State()
	fmt.Fprintf(r.output, "%s (%s)\n", f.Name(), st.Status)
	for _, field := range f.Fields() {
		value := st.Fields[field]
		if f.IsSensitive(field) && value != "" {
			value = strings.Repeat("*", 8)
		}
		fmt.Fprintf(r.output, "  %-18s %s\n", screen.Label(field)+":", value)
		if msg, ok := st.FieldErrors[field]; ok {
			fmt.Fprintf(r.output, "  %-18s ! %s\n", "", msg)
		}
	}
	r.printOutcome(st)
	return nil
}

func (r *REPL) printOutcome(st form.State) {
	if st.TopLevelError != "" {
		fmt.Fprintf(r.output, "✗ %s\n", st.TopLevelError)
	}
	if st.Confirmation != "" {
		fmt.Fprintf(r.output, "✓ %s\n", st.Confirmation)
	}
}

func (r *REPL) cmdSubmit(ctx context.Context) error {
	f := r.screens.Form()
	if f == nil {
		return screen.ErrNoForm
	}
	before := r.screens.Current()

	spin := output.NewSpinner(r.output, "Submitting...")
	spin.Start()
	st, err := f.Submit(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	if st.HasErrors() {
		for _, field := range f.Fields() {
			if msg, ok := st.FieldErrors[field]; ok {
				fmt.Fprintf(r.output, "! %s: %s\n", screen.Label(field), msg)
			}
		}
		return nil
	}
	r.printOutcome(st)

	if now := r.screens.Current(); now != before {
		fmt.Fprintf(r.output, "→ %s\n", now)
	}
	return nil
}

func (r *REPL) cmdProfile(ctx context.Context) error {
	if r.screens.Current() != guard.PathHome {
		if err := r.navigate(ctx, guard.PathHome); err != nil {
			return err
		}
		if r.screens.Current() != guard.PathHome {
			return nil
		}
	}

	p, err := r.screens.Profile(ctx)
	if err != nil {
		if now := r.screens.Current(); now != guard.PathHome {
			fmt.Fprintf(r.output, "→ %s\n", now)
		}
		return err
	}

	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("subjectId", p.SubjectID)
	t.AddRow("email", p.Email)
	if !p.CreatedAt.IsZero() {
		t.AddRow("createdAt", p.CreatedAt.Local().Format(time.DateTime))
	}
	return t.Render(r.output)
}

func (r *REPL) cmdLogout(ctx context.Context) error {
	if err := r.screens.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.output, "Signed out")
	return nil
}

func (r *REPL) cmdStatus() error {
	sess, ok := r.session.Get()
	if !ok {
		fmt.Fprintln(r.output, "Not signed in")
		return nil
	}

	subject := sess.SubjectID
	if subject == "" {
		subject = "(unknown subject)"
	}
	fmt.Fprintf(r.output, "Signed in as %s\n", subject)
	return output.NewMeter(r.output, "Session").Render(
		sess.TTLAt(time.Now()),
		sess.ExpiresAt.Sub(sess.IssuedAt),
	)
}
