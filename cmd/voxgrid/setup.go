package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/voxgrid/internal/audio"
	"github.com/san-kum/voxgrid/internal/automation"
	"github.com/san-kum/voxgrid/internal/backend"
	"github.com/san-kum/voxgrid/internal/config"
	"github.com/san-kum/voxgrid/internal/logging"
	"github.com/san-kum/voxgrid/internal/storage"
	"github.com/san-kum/voxgrid/internal/viz"
)

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	log    zerolog.Logger
}

// setup loads the config, applies the preset and flag overrides and opens
// the logger.
func setup(cmd *cobra.Command) (*app, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if presetName != "" && !cfg.ApplyPreset(presetName) {
		return nil, fmt.Errorf("unknown preset %q (see voxgrid presets)", presetName)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("bands") {
		cfg.Visualizer.Bands = bandCount
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("backend") {
		cfg.Backend.URL = backendURL
	}
	if flags.Changed("source") {
		cfg.Source.Kind = sourceKind
	}
	if flags.Changed("session") {
		cfg.Source.Session = sessionID
	}
	if flags.Changed("script") {
		cfg.Agent.ScenarioFile = scriptFile
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, log: logger.Component("cli")}, nil
}

func (a *app) close() {
	a.logger.Close()
}

func (a *app) store() (*storage.Store, error) {
	st := storage.New(a.cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("init data dir: %w", err)
	}
	return st, nil
}

func (a *app) client() *backend.Client {
	return backend.New(a.cfg.Backend.URL,
		backend.WithTimeout(a.cfg.Backend.Timeout),
		backend.WithLogger(a.logger.Zerolog()))
}

// source opens the configured band source. The returned cleanup releases
// any audio device.
func (a *app) source() (audio.Source, viz.StateSource, func(), error) {
	bands := a.cfg.Visualizer.Bands
	switch a.cfg.Source.Kind {
	case config.SourceMic:
		capture := audio.NewCapture(bands, a.logger.Zerolog())
		if err := capture.Start(); err != nil {
			return nil, nil, nil, err
		}
		return capture, nil, func() { capture.Close() }, nil
	case config.SourceReplay:
		st, err := a.store()
		if err != nil {
			return nil, nil, nil, err
		}
		frames, err := st.LoadFrames(a.cfg.Source.Session)
		if err != nil {
			return nil, nil, nil, err
		}
		replay := storage.NewReplay(frames, a.cfg.Source.Loop)
		return replay, replay, func() {}, nil
	default:
		return audio.NewSynthetic(bands), nil, func() {}, nil
	}
}

// feed builds the agent state feed and starts its scenario loop on ctx.
func (a *app) feed(ctx context.Context) (*automation.Feed, error) {
	var scenario *automation.Scenario
	switch {
	case noScript:
	case a.cfg.Agent.ScenarioFile != "":
		s, err := automation.LoadScenario(a.cfg.Agent.ScenarioFile)
		if err != nil {
			return nil, err
		}
		scenario = s
	default:
		scenario = automation.DefaultScenario()
	}

	f := automation.NewFeed(scenario, a.cfg.InitialState(), a.logger.Zerolog())
	go func() {
		if err := f.Run(ctx, 0); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("agent feed stopped")
		}
	}()
	if scenario != nil && a.cfg.Agent.ScenarioFile != "" {
		go func() {
			if err := f.Watch(ctx, a.cfg.Agent.ScenarioFile); err != nil && ctx.Err() == nil {
				a.log.Warn().Err(err).Msg("scenario watch stopped")
			}
		}()
	}
	return f, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
