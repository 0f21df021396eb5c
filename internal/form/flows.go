package form

import (
	"context"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/guard"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// Flow names.
const (
	FlowLogin          = "login"
	FlowSignup         = "signup"
	FlowForgotPassword = "forgot-password"
	FlowResetPassword  = "reset-password"
)

// Field names.
const (
	FieldIdentifier      = "identifier"
	FieldPassword        = "password"
	FieldDisplayName     = "displayName"
	FieldEmail           = "email"
	FieldConfirmPassword = "confirmPassword"
	FieldToken           = "token"
)

// DefaultMinPasswordLength is the signup and reset password minimum.
const DefaultMinPasswordLength = 8

// MaxPasswordLength is the longest password the API accepts.
const MaxPasswordLength = 128

// Confirmation messages.
const (
	MessageLoggedIn = "Login successful! Redirecting..."
	MessageSignedUp = "Account created successfully. Redirecting to sign in…"
)

// Gateway is the auth API surface the flows call.
type Gateway interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) (domain.Confirmation, error)
	RequestPasswordReset(ctx context.Context, email string) (domain.Confirmation, error)
	ResetPassword(ctx context.Context, token, newPassword string) (domain.Confirmation, error)
}

// SessionWriter stores a new session.
type SessionWriter interface {
	Set(sess domain.Session) error
}

// Navigator moves to another screen.
type Navigator interface {
	Navigate(ctx context.Context, path string) (string, error)
}

// LoginFlow signs in with a user ID or email, stores the session and
// navigates home. nav may be nil.
func LoginFlow(gw Gateway, store SessionWriter, nav Navigator) Flow {
	return Flow{
		Name:   FlowLogin,
		Fields: []string{FieldIdentifier, FieldPassword},
		Rules: []Rule{
			Required(FieldIdentifier, "User ID or email is required"),
			Required(FieldPassword, "Password is required"),
		},
		Normalizers: map[string]Normalizer{FieldIdentifier: FoldIdentifier},
		Sensitive:   []string{FieldPassword},
		Submit: func(ctx context.Context, f map[string]string) (Result, error) {
			sess, err := gw.Login(ctx, domain.Credentials{
				Identifier: f[FieldIdentifier],
				Password:   f[FieldPassword],
			})
			if err != nil {
				return Result{}, err
			}
			return Result{Session: &sess, Confirmation: MessageLoggedIn}, nil
		},
		Commit: func(res Result) error {
			return store.Set(*res.Session)
		},
		Then: navigateTo(nav, guard.PathHome),
	}
}

// SignupFlow registers an account and navigates to login. minPassword <= 0
// uses DefaultMinPasswordLength.
func SignupFlow(gw Gateway, nav Navigator, minPassword int) Flow {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	return Flow{
		Name:   FlowSignup,
		Fields: []string{FieldDisplayName, FieldEmail, FieldPassword, FieldConfirmPassword},
		Rules: []Rule{
			Required(FieldDisplayName, "Full name is required"),
			MaxLength(FieldDisplayName, "Full name", 255),
			Required(FieldEmail, "Email is required"),
			Email(FieldEmail, ""),
			Required(FieldPassword, "Password is required"),
			MinLength(FieldPassword, "Password", minPassword),
			MaxLength(FieldPassword, "Password", MaxPasswordLength),
			Required(FieldConfirmPassword, "Please confirm your password"),
			Matches(FieldConfirmPassword, FieldPassword, "Passwords do not match."),
		},
		Normalizers: map[string]Normalizer{
			FieldDisplayName: Trim,
			FieldEmail:       FoldEmail,
		},
		Sensitive: []string{FieldPassword, FieldConfirmPassword},
		Submit: func(ctx context.Context, f map[string]string) (Result, error) {
			_, err := gw.Register(ctx, domain.Registration{
				DisplayName: f[FieldDisplayName],
				Email:       f[FieldEmail],
				Password:    f[FieldPassword],
			})
			if err != nil {
				return Result{}, err
			}
			return Result{Confirmation: MessageSignedUp}, nil
		},
		Then: navigateTo(nav, guard.PathLogin),
	}
}

// ForgotPasswordFlow requests a reset link and stays on the screen.
func ForgotPasswordFlow(gw Gateway) Flow {
	return Flow{
		Name:   FlowForgotPassword,
		Fields: []string{FieldEmail},
		Rules: []Rule{
			Required(FieldEmail, "Email is required"),
			Email(FieldEmail, ""),
		},
		Normalizers: map[string]Normalizer{FieldEmail: FoldEmail},
		Submit: func(ctx context.Context, f map[string]string) (Result, error) {
			conf, err := gw.RequestPasswordReset(ctx, f[FieldEmail])
			if err != nil {
				return Result{}, err
			}
			return Result{Confirmation: conf.Message}, nil
		},
	}
}

// ResetPasswordFlow redeems an emailed reset token for a new password and
// navigates to login. minPassword <= 0 uses DefaultMinPasswordLength.
func ResetPasswordFlow(gw Gateway, nav Navigator, minPassword int) Flow {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	return Flow{
		Name:   FlowResetPassword,
		Fields: []string{FieldToken, FieldPassword, FieldConfirmPassword},
		Rules: []Rule{
			Required(FieldToken, "Reset token is required"),
			Required(FieldPassword, "Password is required"),
			MinLength(FieldPassword, "Password", minPassword),
			MaxLength(FieldPassword, "Password", MaxPasswordLength),
			Required(FieldConfirmPassword, "Please confirm your password"),
			Matches(FieldConfirmPassword, FieldPassword, "Passwords do not match."),
		},
		Normalizers: map[string]Normalizer{FieldToken: Trim},
		Sensitive:   []string{FieldToken, FieldPassword, FieldConfirmPassword},
		Submit: func(ctx context.Context, f map[string]string) (Result, error) {
			conf, err := gw.ResetPassword(ctx, f[FieldToken], f[FieldPassword])
			if err != nil {
				return Result{}, err
			}
			return Result{Confirmation: conf.Message}, nil
		},
		Then: navigateTo(nav, guard.PathLogin),
	}
}

func navigateTo(nav Navigator, path string) func(context.Context, Result) {
	if nav == nil {
		return nil
	}
	return func(ctx context.Context, _ Result) {
		if _, err := nav.Navigate(ctx, path); err != nil {
			logger.L(ctx).Warn("navigation after submit failed", "path", path, "error", err)
		}
	}
}
