package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/dapp"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var (
	transferAmount string
	transferYes    bool
	transferWait   bool
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Approve and transfer tokens to your own account",
	Long: `Submit one invoke with two calls on the configured token:
approve(self, amount) then transfer(self, amount).

The wallet only signs calls allowed by the session policies
(see: w3stark policies).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := starknet.ParseFelt(transferAmount); err != nil {
			return fmt.Errorf("--amount: %w", err)
		}

		s, err := loadStack()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		if err := s.ensureConnected(ctx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), rememberHint(err))
			return err
		}
		tr := dapp.NewTransfer(s.provider, cfg.TokenAddress(), log)
		defer tr.Close()
		addr := s.provider.State().Address

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Approve + transfer", [][2]string{
			{"Token", ui.Addr(tr.Token())},
			{"From / to", ui.Addr(addr)},
			{"Amount", ui.Val(ui.FormatEther(transferAmount))},
			{"Network", ui.NetworkName(s.network.DisplayName)},
		}))
		if !transferYes && !ui.Confirm(cmd.InOrStdin(), out, "Submit to wallet?") {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}

		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for the wallet…")
		spin.Start()
		err = tr.Submit(ctx, transferAmount)
		spin.Stop()
		if err != nil {
			return err
		}

		v := tr.View()
		fmt.Fprintln(out, ui.Success("Submitted "+ui.Addr(v.TxHash)))
		fmt.Fprintln(out, ui.Meta(v.ExplorerURL))

		if !transferWait {
			fmt.Fprintln(out, ui.Hint("w3stark tx "+v.TxHash+" --wait"))
			return nil
		}
		return waitAndPrint(cmd, s, v.TxHash)
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferAmount, "amount", dapp.DemoAmount, "amount in wei (hex or decimal)")
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "skip the confirmation prompt")
	transferCmd.Flags().BoolVar(&transferWait, "wait", false, "wait for the transaction to be accepted")
}
