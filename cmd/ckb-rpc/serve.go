package main

import (
	"context"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ckb-rpc/server"
)

var mineInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory stub CKB node",
	Long: `Run an in-memory stub CKB node on server.listen.

Sent transactions are committed every --mine-interval. With
registry.endpoints configured the node publishes server.advertise_url under
registry.network until it shuts down.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(
			server.WithLogger(log),
			server.WithNetwork(cfg.Registry.Network),
			server.WithTTL(cfg.Server.TTL),
		)
		chain := server.NewDevChain()
		if _, err := srv.Register(chain); err != nil {
			return err
		}
		log.WithField("methods", srv.Methods()).Debug("dev chain registered")

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if reg != nil {
			defer reg.Close()
		}

		advertise := cfg.Server.AdvertiseURL
		if advertise == "" {
			advertise = defaultAdvertiseURL(cfg.Server.Listen)
		}

		serveMetrics(ctx)
		go mine(ctx, chain)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(cfg.Server.Listen, advertise, reg)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().DurationVar(&mineInterval, "mine-interval", 8*time.Second, "block interval")
}

func mine(ctx context.Context, chain *server.DevChain) {
	ticker := time.NewTicker(mineInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h := chain.Mine()
			log.WithFields(logrus.Fields{"number": h.Number, "hash": h.Hash}).Debug("mined block")
		}
	}
}

// defaultAdvertiseURL turns ":8114" into "http://127.0.0.1:8114".
func defaultAdvertiseURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return "http://" + host + ":" + port
}
