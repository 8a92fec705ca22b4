// Command theta is a toolbox for the Theta Terminal: historical pulls,
// listings, live stream watching, Terminal supervision, and the WebSocket
// bridge.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thetafeed/theta-go/client"
	"github.com/thetafeed/theta-go/config"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/rest"
	"github.com/thetafeed/theta-go/stream"
)

var (
	cfgFile     string
	flagHost    string
	metricsAddr string
	verbose     bool

	cfg    *config.Config
	logger zerolog.Logger

	requestMetrics = metrics.NewRequestCollector()
	streamMetrics  = metrics.NewStreamCollector()
	wsMetrics      = metrics.NewWSCollector()
)

var rootCmd = &cobra.Command{
	Use:   "theta",
	Short: "Theta Terminal market data toolbox",
	Long: `theta talks to a locally running Theta Terminal: historical option and
stock data, instrument listings, live stream watching, Terminal process
supervision, and a WebSocket bridge for non-Go consumers.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup runs before every command: .env, config file, logger.
func setup(cmd *cobra.Command, args []string) error {
	// A .env next to the working directory may carry THETA_USERNAME and
	// THETA_PASSWORD; absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	if flagHost != "" {
		cfg.Terminal.Host = flagHost
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	var out = os.Stderr
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(out)
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if cfg.Metrics.Addr != "" {
		startMetrics(cfg.Metrics.Addr)
	}
	return nil
}

// startMetrics serves Prometheus metrics on a side port for the lifetime
// of the command.
func startMetrics(addr string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		metrics.NewRequestExporter(requestMetrics),
		metrics.NewStreamExporter(streamMetrics),
		metrics.NewWSExporter(wsMetrics),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving /metrics")
}

// newControlClient builds a control-socket client from the loaded config.
func newControlClient() *client.Client {
	return client.NewClient(
		client.WithHost(cfg.Terminal.Host),
		client.WithPort(cfg.Terminal.ControlPort),
		client.WithLogger(&logger),
		client.WithMetrics(requestMetrics),
	)
}

// newRESTClient builds a REST client from the loaded config.
func newRESTClient() (*rest.Client, error) {
	return rest.NewClient(cfg.Terminal.RESTBaseURL(),
		rest.WithLogger(&logger),
		rest.WithMetrics(requestMetrics),
		rest.WithDefaultRateLimiter(),
	)
}

// newStreamSession builds a stream session from the loaded config.
func newStreamSession(opts ...stream.Option) *stream.Session {
	base := []stream.Option{
		stream.WithHost(cfg.Terminal.Host),
		stream.WithPort(cfg.Terminal.StreamPort),
		stream.WithLogger(&logger),
		stream.WithMetrics(streamMetrics),
	}
	return stream.NewSession(append(base, opts...)...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// normalizeFlags accepts underscores in flag names so config keys paste
// straight onto the command line (--metrics_addr == --metrics-addr).
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "Terminal host (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
