package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/cli/config"
	"github.com/yndnr/sessiongate/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a config file with default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: configValidate,
			},
		},
	}
}

func resolvedConfigPath(c *cli.Context) string {
	if p := ParseGlobalFlags(c).ConfigPath; p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	// Nested sections read better as YAML than as a two-column table.
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(stdout(c), cfg)
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(stdout(c), resolvedConfigPath(c))
	return nil
}

func configInit(c *cli.Context) error {
	path := resolvedConfigPath(c)

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "✓ Wrote default configuration to %s\n", path)
	return nil
}

func configValidate(c *cli.Context) error {
	path := resolvedConfigPath(c)

	if _, err := loadConfig(c); err != nil {
		return fmt.Errorf("✗ %s: %w", path, err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stdout(c), "No configuration file at %s; defaults are valid.\n", path)
		return nil
	}
	fmt.Fprintf(stdout(c), "✓ Configuration is valid: %s\n", path)
	return nil
}
