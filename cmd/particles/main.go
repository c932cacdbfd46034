package main

import (
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-particles/common"
	"github.com/Carmen-Shannon/oxy-particles/config"
	"github.com/Carmen-Shannon/oxy-particles/engine"
	"github.com/Carmen-Shannon/oxy-particles/engine/metrics"
	"github.com/Carmen-Shannon/oxy-particles/engine/renderer"
	"github.com/Carmen-Shannon/oxy-particles/engine/window"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// configEnv names an optional YAML file layered over the built-in defaults.
const configEnv = "PARTICLES_CONFIG"

func init() {
	// GLFW and the surface must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	cfg, cfgErr := loadConfig()

	log, err := common.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Fatal("invalid configuration", zap.Error(cfgErr))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("particles exited with error", zap.Error(err))
	}
}

func loadConfig() (config.Config, error) {
	path := os.Getenv(configEnv)
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func run(cfg config.Config, log *zap.Logger) (err error) {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Title),
		window.WithWidth(cfg.ScreenWidth),
		window.WithHeight(cfg.ScreenHeight),
	)
	if err != nil {
		return err
	}

	presentMode := renderer.PresentModeVSync
	if !cfg.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	rend, err := renderer.NewRenderer(win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.SoftwareRenderer),
		renderer.WithClearColor(cfg.ClearColor),
		renderer.WithComputeWorkgroupSize(uint32(cfg.WorkGroupSize)),
		renderer.WithLogger(log.Named("renderer")),
	)
	if err != nil {
		return multierr.Append(err, win.Close())
	}

	m := metrics.NewFrameMetrics()
	if cfg.MetricsAddr != "" {
		stop := m.Serve(cfg.MetricsAddr, log.Named("metrics"))
		defer stop()
	}

	eng := engine.NewEngine(cfg, win, rend,
		engine.WithLogger(log.Named("engine")),
		engine.WithMetrics(m),
		engine.WithProfiling(cfg.Profiling),
	)
	defer func() {
		err = multierr.Append(err, eng.Close())
	}()

	if err := eng.Init(); err != nil {
		return err
	}
	return eng.Run()
}
