package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/dapp"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"github.com/spf13/cobra"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Interactive connect + transfer demo",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStack()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		conn := dapp.NewConnection(s.provider, log)
		defer conn.Close()
		tr := dapp.NewTransfer(s.provider, cfg.TokenAddress(), log)
		defer tr.Close()

		if ok, err := s.provider.AutoConnect(ctx); err != nil {
			log.Warnw("auto-connect failed", "error", err)
		} else if ok {
			log.Infow("auto-connected", "address", s.provider.State().Address)
		}

		m := ui.NewAppModel(ctx, s.network.DisplayName, conn, tr)
		err = ui.RunApp(m, func(wake func()) {
			conn.OnChange(wake)
			tr.OnChange(wake)
		})
		if err != nil {
			return fmt.Errorf("running app: %w", err)
		}
		return nil
	},
}
