// Command toonforge is the main entry point for the ToonForge MCP tool
// server. It speaks MCP over stdio and optionally exposes a metrics/health
// HTTP sidecar.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/toonforge/internal/config"
	"github.com/MrWong99/toonforge/internal/health"
	"github.com/MrWong99/toonforge/internal/mcpserver"
	"github.com/MrWong99/toonforge/internal/observe"
	"github.com/MrWong99/toonforge/internal/respond"
	"github.com/MrWong99/toonforge/internal/tools"
	"github.com/MrWong99/toonforge/internal/tools/codereview"
	"github.com/MrWong99/toonforge/internal/tools/logo"
	"github.com/MrWong99/toonforge/internal/tools/multiply"
)

const (
	serverName    = "toonforge"
	serverVersion = "1.0.0"

	defaultConfigPath = "config.yaml"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", defaultConfigPath, "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	// A missing file at the default path is fine: the server runs on built-in
	// defaults plus environment overrides. An explicitly named file must exist.
	cfg, err := config.Load(*configPath)
	haveConfigFile := err == nil
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || *configPath != defaultConfigPath {
			fmt.Fprintf(os.Stderr, "toonforge: %v\n", err)
			return 1
		}
		cfg = config.Default()
		config.ApplyEnvOverrides(cfg)
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so a config reload can change it without
	// restarting.
	logger, logLevel := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("toonforge starting",
		"config", *configPath,
		"config_file_found", haveConfigFile,
		"log_level", cfg.Server.LogLevel,
		"toon_format", cfg.Format.EnableTOON,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry providers ───────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    serverName,
		ServiceVersion: serverVersion,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Tool registry ─────────────────────────────────────────────────────────
	formatter := respond.NewFormatter(cfg.Format.EnableTOON, respond.WithMetrics(metrics))

	registry := tools.NewRegistry()
	if err := registry.Register(multiply.NewTools(logger, formatter)...); err != nil {
		slog.Error("failed to register tools", "err", err)
		return 1
	}
	if err := registry.Register(codereview.NewTools(logger, formatter)...); err != nil {
		slog.Error("failed to register tools", "err", err)
		return 1
	}
	if err := registry.Register(logo.NewTools(logger, formatter, cfg.Assets.Dir)...); err != nil {
		slog.Error("failed to register tools", "err", err)
		return 1
	}

	selected, err := registry.Select(cfg.Tools.Enabled)
	if err != nil {
		slog.Error("failed to select tools", "err", err)
		return 1
	}

	srv := mcpserver.New(serverName, serverVersion, logger, metrics, selected)

	// ── Config watcher ────────────────────────────────────────────────────────
	// Only the log level is applied live. The TOON flag, assets directory, and
	// tool selection stay fixed until restart.
	if haveConfigFile {
		watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
			d := config.Diff(old, new)
			// A formatting-only file edit reparses to an identical config.
			if !d.Any() {
				return
			}
			if d.LogLevelChanged {
				logLevel.Set(slogLevel(d.NewLogLevel))
				slog.Info("log level changed", "level", d.NewLogLevel)
			}
			if d.TOONFormatChanged || d.AssetsDirChanged || d.ToolsChanged {
				slog.Warn("config change requires restart to take effect",
					"toon_format", d.TOONFormatChanged,
					"assets_dir", d.AssetsDirChanged,
					"tools", d.ToolsChanged,
				)
			}
		})
		if err != nil {
			slog.Error("failed to start config watcher", "err", err)
			return 1
		}
		defer watcher.Stop()
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, srv.ToolNames())

	// ── Serve ─────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.RunStdio(gctx)
	})

	if cfg.Server.HTTPAddr != "" {
		g.Go(func() error {
			return runSidecar(gctx, cfg, metrics)
		})
	}

	slog.Info("server ready, speaking MCP over stdio")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── HTTP sidecar ────────────────────────────────────────────────────────────

// runSidecar serves Prometheus metrics and health probes on cfg.Server.HTTPAddr
// until ctx is cancelled.
func runSidecar(ctx context.Context, cfg *config.Config, metrics *observe.Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	info := health.Info{Service: serverName, Version: serverVersion}
	health.New(info, healthCheckers(cfg)...).Register(mux)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http sidecar listening", "addr", cfg.Server.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http sidecar shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http sidecar: %w", err)
	}
}

// healthCheckers builds the readiness checks for the sidecar. The logo asset
// check only applies when get_logo is among the enabled tools.
func healthCheckers(cfg *config.Config) []health.Checker {
	logoEnabled := len(cfg.Tools.Enabled) == 0
	for _, name := range cfg.Tools.Enabled {
		if name == "get_logo" {
			logoEnabled = true
			break
		}
	}
	if !logoEnabled {
		return nil
	}

	logoPath := filepath.Join(cfg.Assets.Dir, logo.FileName)
	return []health.Checker{{
		Name: "logo_asset",
		Check: func(ctx context.Context) error {
			f, err := os.Open(logoPath)
			if err != nil {
				return err
			}
			return f.Close()
		},
	}}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, toolNames []string) {
	fmt.Fprintln(os.Stderr, "╔═══════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║        ToonForge startup summary      ║")
	fmt.Fprintln(os.Stderr, "╠═══════════════════════════════════════╣")
	printSummaryLine("Tools", fmt.Sprintf("%d registered", len(toolNames)))
	for _, name := range toolNames {
		printSummaryLine("", "- "+name)
	}
	if cfg.Format.EnableTOON {
		printSummaryLine("Responses", "TOON text")
	} else {
		printSummaryLine("Responses", "structured")
	}
	printSummaryLine("Assets dir", cfg.Assets.Dir)
	if cfg.Server.HTTPAddr != "" {
		printSummaryLine("HTTP sidecar", cfg.Server.HTTPAddr)
	} else {
		printSummaryLine("HTTP sidecar", "(disabled)")
	}
	printSummaryLine("Log level", string(cfg.Server.LogLevel))
	fmt.Fprintln(os.Stderr, "╚═══════════════════════════════════════╝")
}

func printSummaryLine(key, value string) {
	if len(value) > 22 {
		value = value[:19] + "…"
	}
	fmt.Fprintf(os.Stderr, "║  %-12s : %-22s ║\n", key, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

// newLogger builds the process logger. Logs go to stderr so stdout stays
// clean for the MCP stdio transport.
func newLogger(level config.LogLevel) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(slogLevel(level))
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), lvl
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
