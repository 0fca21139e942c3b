package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/rpc"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show and select the Starknet network",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := cfg.ResolveNetwork(networkOverride())
		if err != nil {
			return err
		}
		explorer, err := starknet.ExplorerByName(cfg.Explorer, n)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(n.DisplayName, [][2]string{
			{"Chain ID", n.ChainID + " " + ui.Meta("("+n.ChainIDFelt()+")")},
			{"RPC algorithm", cfg.RPCAlgorithm},
			{"Explorer", explorer.Name()},
			{"Token", ui.Addr(cfg.TokenAddress())},
			{"Wallet bridge", cfg.BridgeURL()},
		}))
		return nil
	},
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Display", Width: 18},
			{Title: "Chain ID", Width: 12},
			{Title: "RPCs", Width: 5},
			{Title: "Faucet", Width: 36},
		})
		for _, n := range starknet.Networks() {
			name := n.Name
			if n.Name == cfg.Network {
				name += " *"
			}
			faucet := n.FaucetURL
			if faucet == "" {
				faucet = "-"
			}
			t.AddRow(ui.Row{name, n.DisplayName, n.ChainID, fmt.Sprintf("%d", len(n.RPCs)+len(cfg.GetRPCs(n.Name))), faucet})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set("network", args[0]); err != nil {
			return fmt.Errorf("%w (run `w3stark network list`)", err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Default network set to "+ui.NetworkName(cfg.Network)))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Benchmark the network's RPC endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := cfg.ResolveNetwork(networkOverride())
		if err != nil {
			return err
		}
		urls := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCs...)

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		spin := ui.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Probing %d endpoints…", len(urls)))
		spin.Start()
		results := rpc.Probe(ctx, urls)
		spin.Stop()

		best, pickErr := rpc.NewPicker(rpc.ParseAlgorithm(cfg.RPCAlgorithm)).Pick(results)

		t := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 48},
			{Title: "Latency", Width: 10},
			{Title: "Block", Width: 10},
			{Title: "Status", Width: 12},
		})
		for _, e := range results {
			status, latency, block := "ok", e.Latency.Round(time.Millisecond).String(), fmt.Sprintf("%d", e.BlockNumber)
			if !e.Healthy() {
				status, latency, block = "down", "-", "-"
			}
			if e.URL == best {
				status = "selected"
			}
			t.AddRow(ui.Row{e.URL, latency, block, status})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return pickErr
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkPingCmd)
}
