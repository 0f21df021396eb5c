package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/cli/output"
	"github.com/yndnr/sessiongate/internal/cli/screen"
	"github.com/yndnr/sessiongate/internal/form"
	"github.com/yndnr/sessiongate/internal/guard"
)

var (
	errAlreadySignedIn = errors.New("already signed in; run 'sessiongate logout' first")
	errInvalidFields   = errors.New("please correct the fields above")
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:    "login",
		Aliases: []string{"signin"},
		Usage:   "Sign in with a user ID or email",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User ID or email",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
				EnvVars: []string{"SESSIONGATE_PASSWORD"},
			},
		},
		Action: func(c *cli.Context) error {
			return runForm(c, guard.PathLogin, map[string]string{
				form.FieldIdentifier: c.String("user"),
				form.FieldPassword:   c.String("password"),
			})
		},
	}
}

// SignupCommand returns the signup command.
func SignupCommand() *cli.Command {
	return &cli.Command{
		Name:    "signup",
		Aliases: []string{"register"},
		Usage:   "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Full name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
			&cli.StringFlag{Name: "confirm-password", Usage: "Password again (prompted when omitted)"},
		},
		Action: func(c *cli.Context) error {
			return runForm(c, guard.PathSignup, map[string]string{
				form.FieldDisplayName:     c.String("name"),
				form.FieldEmail:           c.String("email"),
				form.FieldPassword:        c.String("password"),
				form.FieldConfirmPassword: c.String("confirm-password"),
			})
		},
	}
}

// ForgotPasswordCommand returns the forgot-password command.
func ForgotPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "forgot-password",
		Usage: "Request a password reset link",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
		},
		Action: func(c *cli.Context) error {
			return runForm(c, guard.PathForgotPassword, map[string]string{
				form.FieldEmail: c.String("email"),
			})
		},
	}
}

// ResetPasswordCommand returns the reset-password command.
func ResetPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-password",
		Usage: "Set a new password with an emailed reset token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "Reset token from the email link"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password (prompted when omitted)"},
			&cli.StringFlag{Name: "confirm-password", Usage: "New password again (prompted when omitted)"},
		},
		Action: func(c *cli.Context) error {
			return runForm(c, guard.PathResetPassword, map[string]string{
				form.FieldToken:           c.String("token"),
				form.FieldPassword:        c.String("password"),
				form.FieldConfirmPassword: c.String("confirm-password"),
			})
		},
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Aliases: []string{"signout"},
		Usage:   "Forget the stored session",
		Action:  logoutAction,
	}
}

func logoutAction(c *cli.Context) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}

	wasSignedIn := env.Store.IsAuthenticated()
	if err := env.Screens.Logout(c.Context); err != nil {
		return err
	}

	if wasSignedIn {
		fmt.Fprintln(stdout(c), "Signed out")
	} else {
		fmt.Fprintln(stdout(c), "Not signed in")
	}
	return nil
}

// formResult is the machine-readable outcome of a form submission.
type formResult struct {
	Flow         string            `json:"flow" yaml:"flow"`
	Status       string            `json:"status" yaml:"status"`
	Confirmation string            `json:"confirmation,omitempty" yaml:"confirmation,omitempty"`
	Error        string            `json:"error,omitempty" yaml:"error,omitempty"`
	FieldErrors  map[string]string `json:"fieldErrors,omitempty" yaml:"fieldErrors,omitempty"`
}

type fieldErrorRow struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// runForm shows the page at path, fills its form from values (prompting
// for missing ones unless --no-input) and submits it.
func runForm(c *cli.Context, path string, values map[string]string) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}
	f, format, err := formatter(c, env)
	if err != nil {
		return err
	}

	shown, err := env.Screens.Navigate(c.Context, path)
	if err != nil {
		return err
	}
	if shown != path {
		return errAlreadySignedIn
	}

	ctrl := env.Screens.Form()
	if ctrl == nil {
		return screen.ErrNoForm
	}

	noInput := c.Bool("no-input")
	for _, field := range ctrl.Fields() {
		v := values[field]
		if v == "" && !noInput {
			if v, err = prompt(env.Input(), stderr(c), screen.Label(field)); err != nil {
				return err
			}
		}
		if err := ctrl.Edit(field, v); err != nil {
			return err
		}
	}

	var spin *output.Spinner
	if format == output.FormatTable {
		spin = output.NewSpinner(stderr(c), "Submitting...")
		spin.Start()
	}
	st, err := ctrl.Submit(c.Context)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	return renderForm(c, f, format, ctrl.Name(), ctrl.Fields(), st)
}

func renderForm(c *cli.Context, f output.Formatter, format output.Format, flow string, fields []string, st form.State) error {
	w := stdout(c)

	if format != output.FormatTable {
		res := formResult{
			Flow:         flow,
			Status:       st.Status.String(),
			Confirmation: st.Confirmation,
			Error:        st.TopLevelError,
			FieldErrors:  st.FieldErrors,
		}
		if err := f.Format(w, res); err != nil {
			return err
		}
	}

	switch {
	case st.HasErrors():
		if format == output.FormatTable {
			var rows []fieldErrorRow
			for _, field := range fields {
				if msg, ok := st.FieldErrors[field]; ok {
					rows = append(rows, fieldErrorRow{Field: screen.Label(field), Message: msg})
				}
			}
			if err := f.Format(w, rows); err != nil {
				return err
			}
		}
		return errInvalidFields
	case st.Status == form.Failed:
		return errors.New(st.TopLevelError)
	case st.Status == form.Succeeded:
		if format == output.FormatTable {
			fmt.Fprintf(w, "✓ %s\n", st.Confirmation)
		}
		return nil
	default:
		return fmt.Errorf("form ended in state %s", st.Status)
	}
}

// prompt reads one line for label. End of input yields an empty value.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
