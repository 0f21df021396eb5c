package command

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/cli/config"
	"github.com/yndnr/sessiongate/internal/cli/repl"
	"github.com/yndnr/sessiongate/internal/infra/confloader"
	"github.com/yndnr/sessiongate/internal/infra/shutdown"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start interactive mode",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the config file when it changes",
			},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	env, err := mustEnv(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sh := shutdown.NewHandler(5*time.Second, env.Logger)
	go func() {
		sh.Wait(ctx)
		cancel()
	}()

	if !c.Bool("no-watch") {
		if w := watchConfig(c, env); w != nil {
			sh.OnShutdown("config-watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	r := repl.New(repl.Config{
		Screens: env.Screens,
		Session: env.Store,
		Input:   env.Input(),
		Output:  stdout(c),
		History: repl.NewHistory(filepath.Join(filepath.Dir(resolvedConfigPath(c)), "history"), 0),
		Logger:  env.Logger,
	})
	err = r.Run(ctx)

	sh.Trigger()
	<-sh.Done()
	return err
}

// watchConfig reloads the API URL and log level when the config file
// changes. It returns nil when the file's directory cannot be watched.
func watchConfig(c *cli.Context, env *Env) *confloader.Watcher {
	path := resolvedConfigPath(c)
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		env.Logger.Debug("config directory missing, not watching", "path", path)
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(env.Logger))
	if err != nil {
		env.Logger.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil
	}

	flags := ParseGlobalFlags(c)
	w.OnChange(func(string) {
		applyConfig(env, flags)
	})
	w.StartAsync()
	return w
}

// applyConfig reloads configuration and applies the settings that can
// change while running. Invalid files are reported and ignored.
func applyConfig(env *Env, flags *GlobalFlags) {
	cfg, err := config.Load(flags.ConfigPath, flags.overrides())
	if err != nil {
		env.Logger.Warn("ignoring invalid configuration change", "error", err)
		return
	}

	if err := env.Gateway.SetBaseURL(cfg.API.URL); err != nil {
		env.Logger.Warn("ignoring invalid api.url", "url", cfg.API.URL, "error", err)
	}
	logger.SetLevel(cfg.Log.Level)

	env.Logger.Info("configuration reloaded", "api_url", env.Gateway.BaseURL())
}
