package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the calls the wallet session may make",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := cfg.ResolveNetwork(networkOverride())
		if err != nil {
			return err
		}
		cc := connectorConfig(cfg, n)

		t := ui.NewTable([]ui.Column{
			{Title: "Method", Width: 10},
			{Title: "Selector", Width: 16},
			{Title: "Target", Width: 14},
			{Title: "Description", Width: 40},
		})
		for _, p := range cc.Policies() {
			t.AddRow(ui.Row{
				p.Method,
				ui.TruncateAddr(starknet.Selector(p.Method)),
				ui.TruncateAddr(p.Target),
				p.Description,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta("Target: "+cfg.TokenAddress()))
		fmt.Fprintln(out, ui.Meta("RPC:    "+cc.RPC()))
		return nil
	},
}
