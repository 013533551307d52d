// cmd/orrery/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/health"
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/metrics"
	"github.com/opd-ai/go-orrery/pkg/render"
	orreryengo "github.com/opd-ai/go-orrery/pkg/render/engo"
	"github.com/opd-ai/go-orrery/pkg/resource"
	"github.com/opd-ai/go-orrery/pkg/tui"
)

// Renderers selectable with -renderer.
const (
	rendererTerminal = "terminal"
	rendererWindow   = "engo"
	rendererHeadless = "headless"
)

// stallAfter is how long the simulation may go without a tick before the
// readiness probe fails.
const stallAfter = 5 * time.Second

type options struct {
	configPath    string
	createDefault bool
	renderer      string
	ticks         int
	debugAddr     string
	logLevel      string
	logFile       string
	fetchAssets   bool
	noColor       bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("orrery", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON session file; defaults are used when empty")
	fs.BoolVar(&opts.createDefault, "default", false, "Write the default session file to -config and exit")
	fs.StringVar(&opts.renderer, "renderer", rendererTerminal, "Front end: terminal, engo or headless")
	fs.IntVar(&opts.ticks, "ticks", 0, "Headless only: stop after this many ticks (0 runs until interrupted)")
	fs.StringVar(&opts.debugAddr, "debug-addr", "", "Address for /metrics, /healthz and /readyz (overrides ORRERY_DEBUG_ADDR)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides ORRERY_LOG_LEVEL)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.BoolVar(&opts.fetchAssets, "fetch-assets", false, "Fetch textures from assets.baseURL to colour bodies")
	fs.BoolVar(&opts.noColor, "no-color", false, "Terminal only: disable colour")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.renderer {
	case rendererTerminal, rendererWindow, rendererHeadless:
	default:
		return opts, fmt.Errorf("unknown renderer %q", opts.renderer)
	}
	if opts.ticks < 0 {
		return opts, fmt.Errorf("ticks must not be negative")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the session together and blocks until the front end exits or
// ctx is cancelled.
func run(ctx context.Context, opts options, stderr io.Writer) error {
	if opts.createDefault {
		if opts.configPath == "" {
			return fmt.Errorf("-default needs -config")
		}
		return config.SaveConfig(config.DefaultConfig(), opts.configPath)
	}

	env, err := config.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		env.LogLevel = opts.logLevel
	}
	if opts.debugAddr != "" {
		env.DebugAddr = opts.debugAddr
	}

	logger, closeLog, err := newLogger(opts, env, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx = logging.WithCorrelationID(ctx, logging.GenerateCorrelationID())

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		logger.Error(ctx, "failed to load configuration", err, "config_path", opts.configPath)
		return err
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	manager := resource.NewManager(env, logger)
	if err := manager.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "resource shutdown incomplete", "error", err)
		}
	}()

	breaker := resource.NewBreaker("assets", env, logger)
	var fetcher resource.Fetcher
	if opts.fetchAssets && cfg.Assets.BaseURL != "" {
		fetcher = resource.NewHTTPFetcher(cfg.Assets.BaseURL, env, breaker, collector)
	}
	palette := resource.NewRegistry(cfg.Assets.DefaultTint, fetcher, manager, logger)
	if fetcher != nil {
		if err := palette.Load(ctx, resource.TextureKeys(cfg)...); err != nil {
			logger.Warn(ctx, "some textures were not scheduled", "error", err)
		}
	}

	game := engine.NewGame(cfg,
		engine.WithLogger(logger),
		engine.WithMetrics(collector),
		engine.WithContext(ctx),
	)

	checker := health.NewChecker(health.DefaultTimeout)
	checker.Register(
		health.NewSimulationCheck(game.IsRunning, game.LastTickTime, stallAfter),
		manager.HealthCheck(),
		breaker.HealthCheck(),
		health.MemoryCheck(env.MaxMemoryMB, manager.MemoryUsage),
	)

	if env.DebugAddr != "" {
		srv, err := startDebugServer(ctx, env.DebugAddr, collector, checker, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	buffer := input.NewBuffer()
	logger.Info(ctx, "session starting",
		"renderer", opts.renderer,
		"planets", len(cfg.Planets),
		"fetch_assets", fetcher != nil,
	)

	switch opts.renderer {
	case rendererWindow:
		scene := orreryengo.NewGameScene(game, buffer, palette, logger)
		game.Start()
		orreryengo.Run(scene, "Orrery", orreryengo.DefaultWidth, orreryengo.DefaultHeight)
		return nil
	case rendererHeadless:
		return runHeadless(ctx, game, buffer, opts.ticks, logger)
	default:
		model := tui.New(game, buffer, palette, logger)
		model.SetStyled(!opts.noColor)
		return tui.Run(model)
	}
}

// newLogger builds the session logger. The terminal front end owns the
// screen, so it logs only to a file.
func newLogger(opts options, env *config.EnvironmentConfig, stderr io.Writer) (*logging.Logger, func(), error) {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return logging.NewLoggerWithWriter(f, env.LogLevel), func() { f.Close() }, nil
	}
	if opts.renderer == rendererTerminal {
		return logging.Nop(), func() {}, nil
	}
	return logging.NewConsoleLogger(stderr, env.LogLevel), func() {}, nil
}

func debugHandler(collector *metrics.Collector, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", checker.LiveHandler)
	mux.HandleFunc("/readyz", checker.ReadyHandler)
	return mux
}

// startDebugServer serves metrics and health probes until it is shut down.
func startDebugServer(ctx context.Context, addr string, collector *metrics.Collector, checker *health.Checker, logger *logging.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug server: %w", err)
	}

	srv := &http.Server{
		Handler:      debugHandler(collector, checker),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(ctx, "debug server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "debug server failed", err)
		}
	}()
	return srv, nil
}

// runHeadless ticks the game at the configured rate with no display. It
// returns after ticks steps, or when ctx is cancelled if ticks is zero.
func runHeadless(ctx context.Context, game *engine.Game, buffer *input.Buffer, ticks int, logger *logging.Logger) error {
	rate := game.Config.Simulation.TickRate
	interval := time.Second / time.Duration(rate)
	renderer := render.NewNullRenderer(logger)

	game.Start()
	defer game.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastToast := ""
	for n := 0; ticks == 0 || n < ticks; n++ {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "interrupted", "ticks", game.Ticks())
			return nil
		case <-ticker.C:
		}

		frame := game.Tick(interval.Seconds(), buffer.Snapshot())
		game.Render(renderer)
		if toast := frame.HUD.Toast; toast != "" && toast != lastToast {
			logger.Info(ctx, toast, "score", frame.HUD.Score)
		}
		lastToast = frame.HUD.Toast
	}

	hud := game.HUD()
	logger.Info(ctx, "headless run finished",
		"ticks", game.Ticks(),
		"frames", renderer.Frames,
		"score", hud.Score,
		"collected", hud.Collected,
	)
	return nil
}
