package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/cli/output"
	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/guard"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the locally stored session",
		Action: statusAction,
	}
}

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Ask the server whether the stored session is still valid",
		Action: verifyAction,
	}
}

// ProfileCommand returns the profile command.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"whoami"},
		Usage:   "Show the signed-in account",
		Action:  profileAction,
	}
}

// statusView is the local session as shown to the user. The token itself
// is never printed.
type statusView struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	SubjectID     string     `json:"subjectId,omitempty" yaml:"subjectId,omitempty"`
	IssuedAt      *time.Time `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Remaining     string     `json:"remaining,omitempty" yaml:"remaining,omitempty"`
	Backend       string     `json:"backend" yaml:"backend" table:"wide"`
	Degraded      bool       `json:"storageDegraded" yaml:"storageDegraded" table:"wide"`
	APIURL        string     `json:"apiUrl" yaml:"apiUrl" table:"wide"`
}

func statusAction(c *cli.Context) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}
	f, format, err := formatter(c, env)
	if err != nil {
		return err
	}

	view := statusView{
		Backend:  env.Config.Session.Backend,
		Degraded: env.Store.Degraded(),
		APIURL:   env.Gateway.BaseURL(),
	}

	sess, ok := env.Store.Get()
	var remaining, lifetime time.Duration
	if ok {
		now := time.Now()
		remaining = sess.TTLAt(now)
		lifetime = sess.ExpiresAt.Sub(sess.IssuedAt)

		view.Authenticated = true
		view.SubjectID = sess.SubjectID
		view.IssuedAt = &sess.IssuedAt
		view.ExpiresAt = &sess.ExpiresAt
		view.Remaining = remaining.Truncate(time.Second).String()
	}

	w := stdout(c)
	if err := f.Format(w, view); err != nil {
		return err
	}
	if ok && format == output.FormatTable {
		fmt.Fprintln(w)
		return output.NewMeter(w, "Session").Render(remaining, lifetime)
	}
	return nil
}

type verifyView struct {
	Valid     bool   `json:"valid" yaml:"valid"`
	SubjectID string `json:"subjectId,omitempty" yaml:"subjectId,omitempty"`
}

func verifyAction(c *cli.Context) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}
	f, format, err := formatter(c, env)
	if err != nil {
		return err
	}

	subject, err := env.Gateway.VerifySession(c.Context)
	if err != nil {
		return err
	}

	w := stdout(c)
	if format == output.FormatTable {
		if subject == "" {
			fmt.Fprintln(w, "✓ Session is valid")
		} else {
			fmt.Fprintf(w, "✓ Session is valid for %s\n", subject)
		}
		return nil
	}
	return f.Format(w, verifyView{Valid: true, SubjectID: subject})
}

type profileView struct {
	SubjectID string    `json:"subjectId" yaml:"subjectId"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func profileAction(c *cli.Context) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}
	f, _, err := formatter(c, env)
	if err != nil {
		return err
	}

	shown, err := env.Screens.Navigate(c.Context, guard.PathHome)
	if err != nil {
		return err
	}
	if shown != guard.PathHome {
		return errors.New(domain.MessageNoSession)
	}

	p, err := env.Screens.Profile(c.Context)
	if err != nil {
		return err
	}
	return f.Format(stdout(c), profileView(p))
}
