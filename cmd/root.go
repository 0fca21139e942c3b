package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3stark/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	log     *zap.SugaredLogger
	verbose bool
	testnet bool
	mainnet bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3stark",
	Short: "Starknet wallet connector demo",
	Long: `w3stark connects to a Starknet wallet through a local wallet bridge and
submits a session-policy restricted approve + transfer of a token back to the
connected account.

  w3stark app          interactive demo
  w3stark connect      connect and remember the wallet
  w3stark transfer     approve + transfer 0.005 ETH to yourself

Global flags --testnet and --mainnet override the configured network for a
single invocation. Persist with: w3stark network use <name>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logging.New(cfg.Dir(), level)
		if err != nil {
			return err
		}
		log.Debugw("command started", "command", cmd.CommandPath(), "network", networkOverride())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// networkOverride returns the network forced by --testnet/--mainnet, or "".
func networkOverride() string {
	switch {
	case testnet:
		return "sepolia"
	case mainnet:
		return "mainnet"
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvDir+" or ~/.w3stark)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use Starknet Sepolia")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use Starknet mainnet")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		appCmd,
		connectCmd,
		disconnectCmd,
		whoamiCmd,
		transferCmd,
		policiesCmd,
		txCmd,
		networkCmd,
		configCmd,
	)
}
