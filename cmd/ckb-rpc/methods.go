package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ckb-rpc/ckb"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the callable methods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tWIRE METHOD\tPARAMS")
		for _, d := range ckb.DefaultMethods() {
			fmt.Fprintf(w, "%s\t%s\t%d\n", d.Name, d.WireMethod, len(d.ParamFormatters))
		}
		return w.Flush()
	},
}
