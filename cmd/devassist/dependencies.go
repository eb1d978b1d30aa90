package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Cyclone1070/devassist/internal/capability"
	"github.com/Cyclone1070/devassist/internal/capability/builtin"
	"github.com/Cyclone1070/devassist/internal/config"
	"github.com/Cyclone1070/devassist/internal/dispatch"
	"github.com/Cyclone1070/devassist/internal/provider"
	"github.com/Cyclone1070/devassist/internal/provider/models"
	"github.com/Cyclone1070/devassist/internal/ui"
	"github.com/Cyclone1070/devassist/internal/workflow"
	"github.com/Cyclone1070/devassist/internal/workflow/turn"
)

// options are the command-line overrides applied on top of the config file.
type options struct {
	configPath string
	provider   string
	model      string
	logLevel   string
	noSpinner  bool
}

type turnRunner interface {
	Run(ctx context.Context, input string) (dispatch.Result, error)
}

type configLoader interface {
	Load() (*config.Config, error)
	LoadFile(path string) (*config.Config, error)
	LoadDotEnv(path string) (map[string]string, error)
}

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Provider models.Provider
	Registry *capability.Registry
	Runner   turnRunner
	Console  *ui.Console

	events    chan workflow.Event
	watchDone <-chan struct{}
	logFile   io.Closer
	closeOnce sync.Once
}

func buildDependencies(
	ctx context.Context,
	opts options,
	env config.Environment,
	loader configLoader,
	in io.Reader,
	out, errOut io.Writer,
) (*Dependencies, error) {
	cfg, err := loadConfig(loader, opts)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg.Log, errOut)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Config: cfg, Logger: logger, logFile: logFile}

	dotenv, err := loader.LoadDotEnv(config.DotEnvFile)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("read %s: %w", config.DotEnvFile, err)
	}
	apiKey, err := config.ResolveAPIKey(cfg.Provider, env, dotenv)
	if err != nil {
		deps.Close()
		return nil, err
	}

	llm, err := provider.New(ctx, cfg.Provider, apiKey, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Provider = llm

	temperature := models.Float32(cfg.Provider.Temperature)
	caps, err := builtin.Capabilities(llm, temperature)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("build capabilities: %w", err)
	}
	registry := capability.NewRegistry(
		capability.WithStrict(cfg.Dispatch.StrictRegistry),
		capability.WithLogger(logger),
	)
	if err := registry.Register(caps...); err != nil {
		deps.Close()
		return nil, err
	}
	deps.Registry = registry

	// Buffered so a turn never waits on the spinner.
	deps.events = make(chan workflow.Event, 16)

	dispatcher := dispatch.New(registry,
		dispatch.WithEvents(deps.events),
		dispatch.WithLogger(logger),
		dispatch.WithMaxScanBytes(cfg.Dispatch.MaxPayloadBytes),
	)
	deps.Runner = turn.NewRunner(llm, registry, dispatcher, deps.events, turn.Config{
		SystemPrompt: cfg.Provider.SystemPrompt,
		Temperature:  temperature,
		Timeout:      time.Duration(cfg.Provider.RequestTimeoutSeconds) * time.Second,
	}, logger)

	renderer, err := ui.NewGlamourRenderer(cfg.UI.GlamourStyle, cfg.UI.WordWrap)
	if err != nil {
		deps.Close()
		return nil, err
	}
	styles := ui.NewStyles(cfg.UI)
	var status ui.StatusIndicator = ui.NoopStatus{}
	if cfg.UI.Spinner && !opts.noSpinner {
		status = ui.NewSpinnerStatus(errOut, ui.DefaultSpinner, styles.Status)
	}
	deps.Console = ui.NewConsole(in, out, renderer, styles, status)

	deps.watchDone = deps.Console.StartWatch(deps.events)

	logger.Info("agent ready",
		"provider", cfg.Provider.Name,
		"model", llm.GetModel(),
		"capabilities", registry.Names(),
	)
	return deps, nil
}

// Close stops the status watcher and closes the log file.
func (d *Dependencies) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.events != nil {
			close(d.events)
			if d.watchDone != nil {
				<-d.watchDone
			}
		}
		if d.logFile != nil {
			err = d.logFile.Close()
		}
	})
	return err
}

func loadConfig(loader configLoader, opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = loader.LoadFile(opts.configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.provider != "" && opts.provider != cfg.Provider.Name {
		cfg.Provider.Name = opts.provider
		// A model name from the file belongs to the other provider.
		cfg.Provider.Model = ""
	}
	if opts.model != "" {
		cfg.Provider.Model = opts.model
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes text logs to the configured file, or to errOut.
func newLogger(cfg config.LogConfig, errOut io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	w := errOut
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
