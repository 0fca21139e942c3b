package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var txWait bool

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Show a transaction receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := starknet.ParseFelt(args[0])
		if err != nil {
			return fmt.Errorf("transaction hash: %w", err)
		}
		hash := starknet.FormatFelt(v)
		s, err := loadStack()
		if err != nil {
			return err
		}
		if txWait {
			return waitAndPrint(cmd, s, hash)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		client, err := s.provider.Client(ctx)
		if err != nil {
			return err
		}
		r, err := client.TransactionReceipt(ctx, hash)
		if err != nil {
			return err
		}
		if r == nil {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("Transaction not found yet"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Hint("w3stark tx "+args[0]+" --wait"))
			return nil
		}
		printReceipt(cmd, s, r)
		return nil
	},
}

// waitAndPrint polls until hash is accepted or reverted.
func waitAndPrint(cmd *cobra.Command, s *stack, hash string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), config.TxConfirmTimeout+config.RPCSelectTimeout)
	defer cancel()
	client, err := s.provider.Client(ctx)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for "+ui.TruncateAddr(hash)+"…")
	spin.Start()
	r, err := client.WaitForReceipt(ctx, hash, config.TxConfirmTimeout)
	spin.Stop()
	if r != nil {
		printReceipt(cmd, s, r)
	}
	return err
}

func printReceipt(cmd *cobra.Command, s *stack, r *starknet.Receipt) {
	status := ui.StyleSuccess.Render(r.ExecutionStatus)
	if !r.Succeeded() {
		status = ui.StyleError.Render(r.ExecutionStatus)
	}
	pairs := [][2]string{
		{"Hash", ui.Addr(r.Hash)},
		{"Status", status},
		{"Finality", r.FinalityStatus},
		{"Block", fmt.Sprintf("%d", r.BlockNumber)},
	}
	if r.ActualFee != nil {
		pairs = append(pairs, [2]string{"Fee", r.ActualFee.String() + " " + r.FeeUnit})
	}
	if r.RevertReason != "" {
		pairs = append(pairs, [2]string{"Revert reason", ui.StyleError.Render(r.RevertReason)})
	}
	pairs = append(pairs, [2]string{"Explorer", s.provider.Explorer().Transaction(r.Hash)})
	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Transaction", pairs))
}

func init() {
	txCmd.Flags().BoolVar(&txWait, "wait", false, "poll until the transaction is accepted")
}
