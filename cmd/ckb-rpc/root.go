package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ckb-rpc/ckb"
	"ckb-rpc/client"
	"ckb-rpc/config"
	"ckb-rpc/middleware"
	"ckb-rpc/registry"
	"ckb-rpc/transport"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string
	Node       string
	Debug      bool
	Timeout    time.Duration
	Rate       float64
}

var (
	globalFlags GlobalFlags
	cfg         *config.Config
	log         = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "ckb-rpc",
	Short: "JSON-RPC client for CKB nodes",
	Long: `ckb-rpc calls the JSON-RPC methods of a CKB node.

The node is taken from --node, the config file, or discovered through etcd
when registry.endpoints is configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(globalFlags.ConfigPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("node") {
			cfg.Node.URL = globalFlags.Node
		}
		if flags.Changed("debug") {
			cfg.Node.Debug = globalFlags.Debug
		}
		if flags.Changed("timeout") {
			cfg.Node.Timeout = globalFlags.Timeout
		}
		if flags.Changed("rate") {
			cfg.RateLimit.Rate = globalFlags.Rate
		}
		if err := cfg.Validate(); err != nil {
			if globalFlags.ConfigPath != "" {
				return errors.Wrap(err, globalFlags.ConfigPath)
			}
			return err
		}

		level, _ := logrus.ParseLevel(cfg.Log.Level)
		log.SetLevel(level)
		log.SetOutput(cmd.ErrOrStderr())
		return nil
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Node, "node", "", "node URL (default from config, http://localhost:8114)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "print every request and response")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 30*time.Second, "per-call timeout")
	rootCmd.PersistentFlags().Float64Var(&globalFlags.Rate, "rate", 0, "max calls per second, 0 for unlimited")

	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(tipCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(nodesCmd)
}

// newRPC builds a client from cfg. withMetrics adds the Prometheus middleware
// on the default registerer. Debug traces go to trace, never to the command's
// output.
func newRPC(withMetrics bool, trace io.Writer) (*ckb.RPC, error) {
	mws := []middleware.Middleware{
		middleware.Logging(log),
		middleware.Timeout(cfg.Node.Timeout),
	}
	if cfg.RateLimit.Rate > 0 {
		mws = append(mws, middleware.RateLimit(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
	}
	if withMetrics {
		mws = append(mws, middleware.Metrics(prometheus.DefaultRegisterer))
	}

	rpc, err := ckb.New(cfg.Node.URL,
		client.WithTransport(transport.NewHTTPTransport(cfg.Node.Timeout)),
		client.WithLogger(log),
		client.WithTracer(client.NewConsoleTracer(trace)),
		client.WithMiddleware(mws...),
	)
	if err != nil {
		return nil, err
	}
	if cfg.Node.Debug {
		rpc.SetDebugLevel(client.DebugOn)
	}
	return rpc, nil
}

// openRegistry connects to etcd, or returns nil when no endpoints are configured.
func openRegistry() (registry.Registry, error) {
	if len(cfg.Registry.Endpoints) == 0 {
		return nil, nil
	}
	zl := zap.NewNop()
	if log.IsLevelEnabled(logrus.DebugLevel) {
		var err error
		if zl, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	reg, err := registry.NewEtcdRegistry(cfg.Registry.Endpoints, zl)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// serveMetrics exposes /metrics until ctx is done. No-op without metrics.listen.
func serveMetrics(ctx context.Context) {
	if cfg.Metrics.Listen == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.WithField("address", cfg.Metrics.Listen).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server")
		}
	}()
}
