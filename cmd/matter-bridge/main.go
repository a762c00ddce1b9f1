// Command matter-bridge exposes a Matter device-control stack over a
// synchronous REST API.
//
// Asynchronous stack callbacks are correlated back to the originating
// HTTP request, so a read returns the attribute values in its response
// body instead of requiring a follow-up poll.
//
// Usage:
//
//	matter-bridge [flags]
//
// Flags:
//
//	-config string     YAML config file path (optional)
//	-port int          HTTP server port (default 8080)
//	-db string         SQLite database path (default "./matter-bridge.db")
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with defaults and the built-in simulated stack
//	matter-bridge
//
//	# Custom port, in-memory registry
//	matter-bridge -port 9000 -db :memory:
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mash-protocol/matter-bridge/internal/simstack"
	"github.com/mash-protocol/matter-bridge/pkg/config"
	"github.com/mash-protocol/matter-bridge/pkg/controller"
	"github.com/mash-protocol/matter-bridge/pkg/nodestore"
	"github.com/mash-protocol/matter-bridge/pkg/wire"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	configPath  = flag.String("config", "", "YAML config file path")
	port        = flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("matter-bridge %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	store, err := nodestore.New(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		return 1
	}

	stack := newSimulatedStack(logger)
	ctrl := controller.New(stack, controller.Options{
		StackLockTimeout: cfg.Matter.StackLockTimeout(),
		RequestTimeout:   cfg.Matter.RequestTimeout(),
		TableLockTimeout: cfg.Matter.TableLockTimeout(),
		PartialResults:   cfg.Matter.PartialResults,
		Logger:           logger,
	})
	stack.SetReportHandler(ctrl)

	srv := NewServer(cfg, ctrl, store, logger)
	defer srv.Close()

	logger.Info("starting matter-bridge",
		"addr", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
		"db", cfg.Store.Path,
		"version", Version)

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
		return 1
	}

	return 0
}

// newLogger builds the slog logger from the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newSimulatedStack seeds the simulated stack with a demo node so the API
// is usable out of the box.
func newSimulatedStack(logger *slog.Logger) *simstack.Stack {
	stack := simstack.New(simstack.Options{})

	const demoNode = 0x1122
	stack.AddNode(demoNode)
	seed := []struct {
		path wire.Path
		wt   wire.WireType
		val  any
	}{
		{wire.Path{EndpointID: 1, ClusterID: 0x0006, AttributeID: 0x0000}, wire.WireTypeBoolean, true},
		{wire.Path{EndpointID: 1, ClusterID: 0x0008, AttributeID: 0x0000}, wire.WireTypeUnsignedInt, uint64(128)},
		{wire.Path{EndpointID: 0, ClusterID: 0x0028, AttributeID: 0x0005}, wire.WireTypeUTF8String, "Demo Light"},
	}
	for _, a := range seed {
		if err := stack.SetAttribute(demoNode, a.path, a.wt, a.val); err != nil {
			logger.Warn("failed to seed demo attribute", "path", a.path.String(), "error", err)
		}
	}
	return stack
}
