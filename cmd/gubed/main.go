// Command gubed is the debugger's entry point: it wires the Module Cache,
// Line Mapper, Breakpoint Set, VM Host Bridge, native extension loader, and
// the terminal UI together and runs one script-module to completion (or
// until the operator quits).
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amirgeva/gubed/pkg/breakpoint"
	"github.com/amirgeva/gubed/pkg/config"
	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/amirgeva/gubed/pkg/logging"
	"github.com/amirgeva/gubed/pkg/metrics"
	"github.com/amirgeva/gubed/pkg/module"
	"github.com/amirgeva/gubed/pkg/natives"
	"github.com/amirgeva/gubed/pkg/tracing"
	"github.com/amirgeva/gubed/pkg/ui/termui"
	"github.com/amirgeva/gubed/pkg/vmhost"
	"github.com/amirgeva/gubed/pkg/vmhost/refhost"
)

var version = "0.1.0"

func main() {
	var (
		noInstrument   bool
		extensionsDir  string
		configPath     string
		metricsAddr    string
		otlpEndpoint   string
	)

	rootCmd := &cobra.Command{
		Use:     "gubed <script-module-name>",
		Short:   "A source-level debugger for the embedded Target Language VM",
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), runOptions{
				entryModule:   args[0],
				noInstrument:  noInstrument,
				extensionsDir: extensionsDir,
				configPath:    configPath,
				metricsAddr:   metricsAddr,
				otlpEndpoint:  otlpEndpoint,
			})
		},
	}

	rootCmd.Flags().BoolVar(&noInstrument, "no-instrument", false, "run the script without instrumenting it (no breakpoints, no stepping)")
	rootCmd.Flags().BoolVar(&noInstrument, "di", false, "alias for --no-instrument")
	rootCmd.Flags().MarkHidden("di")
	rootCmd.Flags().StringVar(&extensionsDir, "extensions-dir", "", "directory to scan for native extension libraries (overrides config)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a .gubed.yml config file")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9090 (overrides config)")
	rootCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for trace export (overrides config)")

	// pflag reads "-di" as the shorthands -d and -i, so the single-dash
	// spelling is rewritten to the long flag before parsing.
	args := append([]string(nil), os.Args[1:]...)
	for i, a := range args {
		if a == "-di" {
			args[i] = "--di"
		}
	}
	rootCmd.SetArgs(args)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	entryModule   string
	noInstrument  bool
	extensionsDir string
	configPath    string
	metricsAddr   string
	otlpEndpoint  string
}

func run(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.extensionsDir != "" {
		cfg.ExtensionsDir = opts.extensionsDir
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if opts.otlpEndpoint != "" {
		cfg.OTLPEndpoint = opts.otlpEndpoint
	}

	logger, err := logging.NewLogger(logging.LoggerConfig{
		MinLevel: parseLogLevel(cfg.LogLevel),
		Format:   parseLogFormat(cfg.LogFormat),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	// Every line logged for this run carries the same session ID, so a
	// centralized collector receiving output from several concurrent gubed
	// sessions can tell them apart.
	sessionLogger := logger.WithSessionID(logging.NewSessionID())

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	if tracingCfg.OTLPEndpoint != "" {
		tracingCfg.ExporterType = "otlp"
	}
	tp, err := tracing.InitTracing(tracingCfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer tp.Shutdown(ctx)

	met := metrics.New(metrics.DefaultConfig())
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", met.Handler())
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sessionLogger.WarnWithFields("metrics server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		defer server.Close()
	}

	mapper := linemap.New()
	cache := module.NewCache(mapper, "")
	if opts.noInstrument {
		cache.DisableInstrumentation()
	}
	if watcher, err := module.Watch(cache, "."); err != nil {
		sessionLogger.WarnWithFields("module file watcher disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer watcher.Close()
	}

	breakpoints := breakpoint.NewSet()
	if cfg.BreakpointsFile != "" {
		if err := loadBreakpoints(breakpoints, cfg.BreakpointsFile); err != nil {
			sessionLogger.WarnWithFields("breakpoints file not loaded", map[string]interface{}{
				"path":  cfg.BreakpointsFile,
				"error": err.Error(),
			})
		}
	}

	registry := natives.NewRegistry()
	registry.Metrics = met
	registry.Logger = sessionLogger
	if cfg.ExtensionsDir != "" {
		if err := registry.LoadDir(cfg.ExtensionsDir, nil); err != nil {
			sessionLogger.WarnWithFields("native extension scan failed", map[string]interface{}{"error": err.Error()})
		}
		defer registry.Shutdown()
	}

	collaborator := termui.New(cache, breakpoints)

	bridge := vmhost.NewBridge(cache, mapper, breakpoints, collaborator, func(moduleName, class string, isStatic bool, signature string) vmhost.ForeignMethodFn {
		fn, ok := registry.Resolve(moduleName + "." + class + "." + signature)
		if !ok {
			return nil
		}
		return fn
	})
	bridge.Metrics = met
	bridge.Logger = sessionLogger

	return bridge.Run(ctx, refhost.New(), opts.entryModule)
}

// loadBreakpoints reads path, one "module:line" entry per line, blank lines
// and lines starting with "#" ignored, and pre-populates breakpoints before
// the debug session starts.
func loadBreakpoints(breakpoints *breakpoint.Set, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open breakpoints file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.SplitN(text, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("%s:%d: expected \"module:line\", got %q", path, lineNo, text)
		}
		line, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("%s:%d: invalid line number %q: %w", path, lineNo, parts[1], err)
		}
		breakpoints.Set(strings.TrimSpace(parts[0]), line)
	}
	return scanner.Err()
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.DEBUG
	case "warn":
		return logging.WARN
	case "error":
		return logging.ERROR
	case "fatal":
		return logging.FATAL
	default:
		return logging.INFO
	}
}

func parseLogFormat(format string) logging.LogFormat {
	if format == "json" {
		return logging.JSONFormat
	}
	return logging.TextFormat
}
