package command

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/cli/config"
	"github.com/yndnr/sessiongate/internal/cli/output"
	"github.com/yndnr/sessiongate/internal/infra/buildinfo"
)

const envKey = "env"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sessiongate",
		Usage:   "Sign in, sign up and manage your session with an auth API",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			SignupCommand(),
			ForgotPasswordCommand(),
			ResetPasswordCommand(),
			LogoutCommand(),
			StatusCommand(),
			VerifyCommand(),
			ProfileCommand(),
			ConfigCommand(),
			ReplCommand(),
			VersionCommand(),
		},
		After: teardown,
	}
}

// globalFlags returns the global CLI flags. Flags left empty defer to the
// config file and SESSIONGATE_* environment variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.sessiongate/cli.yaml)",
			EnvVars: []string{"SESSIONGATE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"s"},
			Usage:   "Auth API base URL (e.g., http://localhost:8000)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more fields)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostics level on stderr: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "session-backend",
			Usage: "Session storage: badger, bbolt, memory",
		},
		&cli.StringFlag{
			Name:  "session-dir",
			Usage: "Session storage directory",
		},
		&cli.BoolFlag{
			Name:  "verify",
			Usage: "Confirm the session with the server before protected screens",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file on exit",
		},
		&cli.BoolFlag{
			Name:  "no-input",
			Usage: "Never prompt; missing fields are submitted empty",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigPath     string
	APIURL         string
	Output         string
	Wide           bool
	LogLevel       string
	SessionBackend string
	SessionDir     string
	Verify         bool
	VerifySet      bool
	MetricsFile    string
	NoInput        bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigPath:     c.String("config"),
		APIURL:         c.String("api-url"),
		Output:         c.String("output"),
		Wide:           c.Bool("wide"),
		LogLevel:       c.String("log-level"),
		SessionBackend: c.String("session-backend"),
		SessionDir:     c.String("session-dir"),
		Verify:         c.Bool("verify"),
		VerifySet:      c.IsSet("verify"),
		MetricsFile:    c.String("metrics-file"),
		NoInput:        c.Bool("no-input"),
	}
}

// overrides maps flags onto config keys.
func (f *GlobalFlags) overrides() map[string]any {
	m := map[string]any{
		"api.url":         f.APIURL,
		"output.format":   f.Output,
		"log.level":       f.LogLevel,
		"session.backend": f.SessionBackend,
		"session.dir":     f.SessionDir,
	}
	if f.VerifySet {
		m["session.verify"] = f.Verify
	}
	return m
}

// loadConfig loads the layered configuration for c.
func loadConfig(c *cli.Context) (*config.Config, error) {
	flags := ParseGlobalFlags(c)
	return config.Load(flags.ConfigPath, flags.overrides())
}

// mustEnv returns the Env for c, building it on first use. Commands that
// only read configuration never open session storage.
func mustEnv(c *cli.Context) (*Env, error) {
	if env := GetEnv(c); env != nil {
		return env, nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	flags := ParseGlobalFlags(c)
	env, err := NewEnv(cfg, EnvOptions{
		ConfigPath:  flags.ConfigPath,
		MetricsFile: flags.MetricsFile,
		Input:       c.App.Reader,
		LogOutput:   c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[envKey] = env
	return env, nil
}

// teardown closes the Env if a command built one.
func teardown(c *cli.Context) error {
	env := GetEnv(c)
	if env == nil {
		return nil
	}
	delete(c.App.Metadata, envKey)
	return env.Close()
}

// GetEnv retrieves the Env built by mustEnv, or nil.
func GetEnv(c *cli.Context) *Env {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env
	}
	return nil
}

// formatter returns the formatter for the configured output format.
func formatter(c *cli.Context, env *Env) (output.Formatter, output.Format, error) {
	format, err := output.ParseFormat(env.Config.Output.Format)
	if err != nil {
		return nil, "", err
	}
	return output.NewFormatter(format, c.Bool("wide")), format, nil
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
