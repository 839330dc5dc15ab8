package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ckb-rpc/discovery"
	"ckb-rpc/loadbalance"
)

var callCmd = &cobra.Command{
	Use:   "call <name> [args...]",
	Short: "Call one method and print its result as JSON",
	Long: `Call one method and print its result as JSON.

Arguments are parsed as JSON when possible, so 1024, true and
'{"tx_hash":"0x...","index":"0x0"}' are sent as a number, a bool and an
object. Anything else is sent as a string.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rpc, err := newRPC(false, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

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
		}

		result, err := rpc.Call(ctx, args[0], parseArgs(args[1:])...)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		args[i] = parseArg(s)
	}
	return args
}

func parseArg(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return v
}
