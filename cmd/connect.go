package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and remember it",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStack()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ConnectTimeout)
		defer cancel()

		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for the wallet to approve…")
		spin.Start()
		err = s.provider.Connect(ctx, s.ctrl)
		spin.Stop()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), rememberHint(err))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Connected "+ui.Addr(s.provider.State().Address)))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Network: "+s.network.DisplayName))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the remembered wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStack()
		if err != nil {
			return err
		}
		if err := s.provider.Disconnect(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Disconnected"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the connected account, its name and token balance",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		addr := s.provider.State().Address

		name, err := s.ctrl.Username(ctx)
		if err != nil {
			if !errors.Is(err, connector.ErrNoUsername) {
				log.Debugw("username lookup failed", "address", addr, "error", err)
			}
			name = ui.Meta("none")
		}

		balance := ui.Meta("unavailable")
		rctx, rcancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer rcancel()
		if client, err := s.provider.Client(rctx); err == nil {
			if wei, err := client.BalanceOf(rctx, cfg.TokenAddress(), addr); err == nil {
				balance = ui.Val(ui.FormatEther(wei.String()))
			} else {
				log.Warnw("balance lookup failed", "error", err)
			}
		} else {
			log.Warnw("no usable RPC", "error", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Account", [][2]string{
			{"Address", ui.Addr(addr)},
			{"Username", name},
			{"Balance", balance},
			{"Network", ui.NetworkName(s.network.DisplayName)},
			{"Explorer", s.provider.Explorer().Contract(addr)},
		}))
		return nil
	},
}
