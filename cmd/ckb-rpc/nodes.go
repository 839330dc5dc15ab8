package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ckb-rpc/registry"
)

var nodesWatch bool

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List the nodes published in the registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if reg == nil {
			return errors.New("no registry.endpoints configured")
		}
		defer reg.Close()

		nodes, err := reg.Discover(ctx, cfg.Registry.Network)
		if err != nil {
			return err
		}
		if err := printNodes(cmd.OutOrStdout(), nodes); err != nil || !nodesWatch {
			return err
		}

		ch, err := reg.Watch(ctx, cfg.Registry.Network)
		if err != nil {
			return err
		}
		for nodes := range ch {
			fmt.Fprintln(cmd.OutOrStdout())
			if err := printNodes(cmd.OutOrStdout(), nodes); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	nodesCmd.Flags().BoolVarP(&nodesWatch, "watch", "w", false, "print the list again on every change")
}

func printNodes(out io.Writer, nodes []registry.NodeInstance) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tWEIGHT\tVERSION")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%d\t%s\n", n.URL, n.Weight, n.Version)
	}
	return w.Flush()
}
