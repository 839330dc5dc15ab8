package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ckb-rpc/discovery"
	"ckb-rpc/loadbalance"
)

var tipInterval time.Duration

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Follow the tip block number",
	Long: `Poll getTipBlockNumber and print each new tip until interrupted.

With registry.endpoints configured the client follows node changes in etcd.
With metrics.listen configured call metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rpc, err := newRPC(true, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		serveMetrics(ctx)

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if reg != nil {
			defer reg.Close()
			balancer, err := loadbalance.New(cfg.Registry.Balancer, cfg.Registry.Key)
			if err != nil {
				return err
			}
			w := discovery.NewWatcher(reg, cfg.Registry.Network, balancer, rpc, log)
			if err := w.Refresh(ctx); err != nil {
				return err
			}
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					log.WithError(err).Error("node discovery stopped")
				}
			}()
		}

		ticker := time.NewTicker(tipInterval)
		defer ticker.Stop()

		var last uint64
		for {
			n, err := rpc.GetTipBlockNumber(ctx)
			switch {
			case err != nil && ctx.Err() == nil:
				log.WithError(err).WithField("node", rpc.Node().URL).Warn("get tip block number")
			case err == nil && n != last:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", time.Now().Format(time.RFC3339), n)
				last = n
			}

			select {
			case <-ctx.Done():
				if ctx.Err() == context.Canceled {
					return nil
				}
				return ctx.Err()
			case <-ticker.C:
			}
		}
	},
}

func init() {
	tipCmd.Flags().DurationVar(&tipInterval, "interval", 8*time.Second, "poll interval")
}
