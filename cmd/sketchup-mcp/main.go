// Command sketchup-mcp bridges an MCP client on stdio to the SketchUp
// extension's TCP socket.
//
// The client (Claude Desktop, or any MCP host) launches the binary and
// speaks newline-delimited JSON-RPC on stdin/stdout. Tool calls are relayed
// to the extension listening on localhost:9876; logs go to stderr so stdout
// stays clean for the protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/observability"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/server"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/sketchup"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/tools"
)

const (
	serverName    = "SketchupMCP"
	serverVersion = "0.1.17"

	serverInstructions = "Sketchup integration through the Model Context Protocol"

	shutdownTimeout = 5 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sketchup-mcp", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		configPath    = fs.String("config", "", "path to a TOML config file")
		host          = fs.String("host", "", "SketchUp extension host (default localhost)")
		port          = fs.Int("port", 0, "SketchUp extension port (default 9876)")
		logLevel      = fs.String("log-level", "", "log level: debug, info, warn, error")
		logFormat     = fs.String("log-format", "", "log format: text or json")
		metricsAddr   = fs.String("metrics-addr", "", "listen address for Prometheus metrics (empty disables)")
		traceExporter = fs.String("trace-exporter", "", "trace exporter: otlp-grpc, otlp-http, noop")
		traceEndpoint = fs.String("trace-endpoint", "", "OTLP collector endpoint")
		showVersion   = fs.Bool("version", false, "print the version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Printf("sketchup-mcp %s\n", serverVersion)
		return 0
	}

	cfg := defaultBridgeConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = loaded
	}

	// Flags override the file.
	if *host != "" {
		cfg.Session.Host = *host
	}
	if *port != 0 {
		cfg.Session.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *traceExporter != "" {
		cfg.TraceExporter = *traceExporter
	}
	if *traceEndpoint != "" {
		cfg.TraceEndpoint = *traceEndpoint
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		metrics *observability.PrometheusMetricsProvider
		stats   sketchup.Stats
	)
	if cfg.MetricsAddr != "" {
		m, err := observability.NewMetricsProvider(observability.MetricsConfig{
			ServiceName:    "sketchup-mcp",
			ServiceVersion: serverVersion,
			Environment:    cfg.Environment,
			MetricsAddr:    cfg.MetricsAddr,
			MetricsPath:    cfg.MetricsPath,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create metrics provider")
			return 1
		}
		if err := m.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start metrics endpoint")
			return 1
		}
		logger.Info("Metrics endpoint listening",
			logging.String("addr", cfg.MetricsAddr),
			logging.String("path", cfg.MetricsPath))
		metrics = m
		stats = m
	}

	exporter, err := observability.ParseExporterType(cfg.TraceExporter)
	if err != nil {
		logger.WithError(err).Error("Invalid trace exporter")
		return 1
	}
	var tracing *observability.TracingProvider
	if exporter != observability.ExporterTypeNoop {
		tp, err := observability.NewTracingProvider(observability.TracingConfig{
			ServiceName:    "sketchup-mcp",
			ServiceVersion: serverVersion,
			Environment:    cfg.Environment,
			ExporterType:   exporter,
			Endpoint:       cfg.TraceEndpoint,
			Insecure:       cfg.TraceInsecure,
			SampleRate:     cfg.TraceSampleRate,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create tracing provider")
			return 1
		}
		logger.Info("Tracing enabled",
			logging.String("exporter", string(exporter)),
			logging.String("endpoint", cfg.TraceEndpoint))
		tracing = tp
	}

	session := sketchup.NewSession(cfg.Session, logger, stats)
	engine := sketchup.NewEngine(session, cfg.Engine, logger, stats)
	caller := observability.CallerObservability{Metrics: metrics, Tracing: tracing}.Wrap(engine)
	provider := tools.NewProvider(caller, logger)

	transport := server.NewStdioTransport(server.StdioConfig{Logger: logger})
	srv := server.New(transport,
		server.WithName(serverName),
		server.WithVersion(serverVersion),
		server.WithInstructions(serverInstructions),
		server.WithLogger(logger),
		server.WithToolsProvider(provider),
		server.WithSession(session),
	)

	serveErr := srv.Serve(ctx)
	stop()

	// Flush observability under a fresh deadline; the serve context is
	// already cancelled by now.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		errs = append(errs, serveErr)
	}
	if tracing != nil {
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if metrics != nil {
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if combined := bridgeerrors.CombineErrors(errs); combined != nil {
		logger.WithError(combined).Error("Bridge exited with errors")
		return 1
	}
	return 0
}

// buildLogger constructs the process logger. Output goes to stderr: stdout
// carries the protocol.
func buildLogger(cfg bridgeConfig) (logging.Logger, error) {
	var formatter logging.Formatter
	switch cfg.LogFormat {
	case "", "text":
		formatter = logging.NewTextFormatter()
	case "json":
		formatter = logging.NewJSONFormatter()
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", cfg.LogFormat)
	}

	logger := logging.New(os.Stderr, formatter)
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	return logger, nil
}
