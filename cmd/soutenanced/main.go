// Command soutenanced serves the defence scheduling console over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"soutenancecore/internal/adapters/backend"
	"soutenancecore/internal/adapters/httpapi"
	"soutenancecore/internal/blob"
	"soutenancecore/internal/config"
	"soutenancecore/internal/console"
	"soutenancecore/internal/core"
	"soutenancecore/internal/export"
	"soutenancecore/internal/logging"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("soutenanced", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var envFile string
	var check bool
	fs.StringVar(&envFile, "env", ".env", "optional dotenv file")
	fs.BoolVar(&check, "check", false, "open storage and blob store, then exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration invalid: %v\n", err)
		return 1
	}
	logger, err := logging.NewTo(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Logger setup failed: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	defer zap.RedirectStdLog(logger.Zap())()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, check); err != nil {
		logger.Error("soutenanced stopped", "error", err)
		return 1
	}
	if check {
		if _, err := fmt.Fprintln(stdout, "Configuration valid."); err != nil {
			return 1
		}
	}
	return 0
}

// run wires the service and serves until ctx is cancelled. With checkOnly
// it returns as soon as every dependency has been opened.
func run(ctx context.Context, cfg config.Config, logger *logging.Logger, checkOnly bool) (err error) {
	store, err := core.OpenPersistentStore(ctx, cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := core.CloseStore(store); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	recorders := core.MultiMetricsRecorder{metrics}
	if cfg.ExpvarName != "" {
		recorders = append(recorders, core.NewExpvarMetricsRecorder(cfg.ExpvarName))
	}
	opts := []core.ServiceOption{
		core.WithLogger(logger.With("component", "core")),
		core.WithMetricsRecorder(recorders),
	}
	if cfg.AuditLog {
		opts = append(opts, core.WithAuditRecorder(core.NewLogAuditRecorder(logger.With("component", "audit"))))
	}
	if cfg.TraceFile != "" {
		traces, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = traces.Close() }()
		opts = append(opts, core.WithTracer(core.NewJSONTracer(traces)))
	}
	svc := core.NewService(store, opts...)
	if cfg.SeedSpecialites {
		created, err := svc.SeedSpecialites(ctx, core.DefaultSpecialites)
		if err != nil {
			return fmt.Errorf("seed specialites: %w", err)
		}
		if created > 0 {
			logger.Info("specialites seeded", "created", created)
		}
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	logger.Info("dependencies ready", "storage", string(cfg.Storage.Driver), "blob", string(blobs.Driver()))
	if checkOnly {
		return nil
	}

	adapter := backend.New(svc)
	exports := export.NewWorker(adapter, blobs,
		export.WithLogger(logger.With("component", "export")),
		export.WithQueueSize(cfg.ExportQueueSize),
		export.WithRetention(cfg.ExportRetention),
	)
	exports.Start()

	app := httpapi.New(httpapi.Config{
		Backend:   adapter,
		Exports:   exports,
		Gatherer:  registry,
		Logger:    logger.With("component", "http"),
		AccessLog: os.Stdout,
		Expvar:    cfg.ExpvarName != "",
		ConsoleOptions: []console.Option{
			console.WithLogger(logger.With("component", "console")),
			console.WithJuryRole(cfg.JuryRole),
			console.WithCompensation(cfg.Compensation),
		},
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		serveErr <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err = app.ShutdownWithContext(shutdownCtx)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if werr := exports.Stop(stopCtx); werr != nil && !errors.Is(werr, context.Canceled) {
		logger.Error("export worker stop failed", "error", werr)
	}
	return err
}
