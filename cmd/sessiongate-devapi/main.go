package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessiongate/internal/devapi"
	"github.com/yndnr/sessiongate/internal/infra/buildinfo"
	"github.com/yndnr/sessiongate/internal/infra/shutdown"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
	"github.com/yndnr/sessiongate/internal/telemetry/metric"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	def := devapi.DefaultConfig()

	return &cli.App{
		Name:    "sessiongate-devapi",
		Usage:   "In-memory auth API for local development",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   def.Addr,
				EnvVars: []string{"SESSIONGATE_DEVAPI_ADDR"},
			},
			&cli.StringFlag{
				Name:    "secret",
				Usage:   "Token signing key (random per process when empty)",
				EnvVars: []string{"SESSIONGATE_DEVAPI_SECRET"},
			},
			&cli.DurationFlag{
				Name:  "token-ttl",
				Usage: "Lifetime of issued tokens",
				Value: def.TokenTTL,
			},
			&cli.IntFlag{
				Name:  "min-password",
				Usage: "Minimum password length on registration",
				Value: def.MinPasswordLength,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text, json",
				Value: "text",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	log, err := logger.New(logger.Config{
		Level:  c.String("log-level"),
		Format: c.String("log-format"),
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	cfg := devapi.DefaultConfig()
	cfg.Addr = c.String("addr")
	cfg.TokenTTL = c.Duration("token-ttl")
	cfg.MinPasswordLength = c.Int("min-password")
	if s := c.String("secret"); s != "" {
		cfg.Secret = []byte(s)
	}

	srv, err := devapi.New(cfg,
		devapi.WithLogger(log),
		devapi.WithMetrics(metric.Global()),
	)
	if err != nil {
		return err
	}

	sh := shutdown.NewHandler(10*time.Second, log)
	sh.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- sh.Wait(c.Context)
	}()

	select {
	case err := <-errCh:
		// Listener failed before any shutdown was requested.
		sh.Trigger()
		<-sh.Done()
		return err
	case err := <-waitErr:
		if err != nil {
			return err
		}
	}

	log.Info("dev api stopped")
	return nil
}
