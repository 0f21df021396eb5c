package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/sessiongate/internal/cli/config"
	"github.com/yndnr/sessiongate/internal/cli/screen"
	"github.com/yndnr/sessiongate/internal/gateway"
	"github.com/yndnr/sessiongate/internal/guard"
	"github.com/yndnr/sessiongate/internal/infra/buildinfo"
	"github.com/yndnr/sessiongate/internal/infra/tlsroots"
	"github.com/yndnr/sessiongate/internal/session"
	"github.com/yndnr/sessiongate/internal/storage"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
	"github.com/yndnr/sessiongate/internal/telemetry/metric"
)

// Env is everything a command needs, built once per process from the
// loaded configuration.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Logger     logger.Logger
	Metrics    *metric.Registry
	Store      *session.Store
	Gateway    *gateway.Gateway
	Screens    *screen.App

	kv          storage.KVEngine
	metricsFile string
	input       *bufio.Reader
}

// EnvOptions carries process-level settings that are not configuration.
type EnvOptions struct {
	ConfigPath  string
	MetricsFile string
	Input       io.Reader
	LogOutput   io.Writer
}

// NewEnv opens session storage and wires the gateway, guard and screens.
//
// A storage backend that cannot be opened is not fatal: the session is then
// kept in memory for this process only.
func NewEnv(cfg *config.Config, opts EnvOptions) (*Env, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.LogOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	kv, err := storage.Open(cfg.KVConfig(), log)
	if err != nil {
		log.Warn("session storage unavailable, keeping session in memory",
			"backend", cfg.Session.Backend,
			"dir", cfg.Session.Dir,
			"error", err,
		)
	}

	store := session.NewStore(kv,
		session.WithTTL(cfg.Session.TTL),
		session.WithLogger(log),
	)

	reg := metric.NewRegistry()
	if err := reg.Register(metric.NewCollector(store)); err != nil {
		closeKV(kv)
		return nil, fmt.Errorf("register session collector: %w", err)
	}

	gcfg := cfg.GatewayConfig()
	gcfg.UserAgent = buildinfo.UserAgent("sessiongate")
	gwOpts := []gateway.Option{
		gateway.WithMetrics(reg),
		gateway.WithLogger(log),
	}
	if cfg.API.CAFile != "" {
		roots, err := tlsroots.LoadFile(cfg.API.CAFile)
		if err != nil {
			closeKV(kv)
			return nil, fmt.Errorf("api.cafile: %w", err)
		}
		gwOpts = append(gwOpts, gateway.WithTLSConfig(roots.TLSConfig()))
	}
	gw, err := gateway.New(gcfg, store, gwOpts...)
	if err != nil {
		closeKV(kv)
		return nil, err
	}

	guardOpts := []guard.Option{guard.WithLogger(log)}
	if cfg.Session.Verify {
		guardOpts = append(guardOpts, guard.WithVerifier(gw))
	}

	screens, err := screen.New(screen.Config{
		Store:       store,
		Gateway:     gw,
		Guard:       guard.New(store, guardOpts...),
		MinPassword: cfg.Form.MinPassword,
		Observer:    reg,
		Logger:      log,
	})
	if err != nil {
		closeKV(kv)
		return nil, err
	}

	input := opts.Input
	if input == nil {
		input = strings.NewReader("")
	}

	return &Env{
		Config:      cfg,
		ConfigPath:  opts.ConfigPath,
		Logger:      log,
		Metrics:     reg,
		Store:       store,
		Gateway:     gw,
		Screens:     screens,
		kv:          kv,
		metricsFile: opts.MetricsFile,
		input:       bufio.NewReader(input),
	}, nil
}

// Close unmounts the current screen, writes the metrics textfile if one
// was requested and closes storage.
func (e *Env) Close() error {
	e.Screens.Close()

	var errs []error
	if e.metricsFile != "" {
		if err := e.Metrics.WriteToTextfile(e.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if e.kv != nil {
		if err := e.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Input returns the shared line reader for prompts.
func (e *Env) Input() *bufio.Reader {
	return e.input
}

func closeKV(kv storage.KVEngine) {
	if kv != nil {
		kv.Close()
	}
}
