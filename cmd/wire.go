package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3stark/internal/config"
	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/session"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/Mohsinsiddi/w3stark/internal/starknetid"
	"github.com/Mohsinsiddi/w3stark/internal/ui"
	"go.uber.org/zap"
)

// stack is everything a command needs, built from the loaded config.
type stack struct {
	network  starknet.Network
	ctrl     *connector.Controller
	provider *session.Provider
}

// connectorConfig builds the session policies for the configured token.
// The RPC is the first custom endpoint, else the network's first.
func connectorConfig(c *config.Config, n starknet.Network) connector.Config {
	rpcURL := ""
	if custom := c.GetRPCs(n.Name); len(custom) > 0 {
		rpcURL = custom[0]
	} else if len(n.RPCs) > 0 {
		rpcURL = n.RPCs[0]
	}
	return connector.NewConfig(rpcURL, connector.DefaultPolicies(c.TokenAddress())...)
}

func newStack(c *config.Config, override string, l *zap.SugaredLogger) (*stack, error) {
	n, err := c.ResolveNetwork(override)
	if err != nil {
		return nil, fmt.Errorf("network %q: %w", c.Network, err)
	}
	explorer, err := starknet.ExplorerByName(c.Explorer, n)
	if err != nil {
		return nil, err
	}

	var names connector.NameResolver
	if n.StarknetID != "" {
		names = starknetid.NewResolver(n.StarknetID)
	}
	ctrl := connector.NewController(connectorConfig(c, n),
		connector.WithBridge(c.BridgeURL()),
		connector.WithChainID(n.ChainID),
		connector.WithNameResolver(names),
		connector.WithLogger(l.Named("controller")),
	)

	var store session.Store
	ks, err := session.NewKeyringStore(c.Dir())
	if err != nil {
		l.Warnw("keychain unavailable, connection will not be remembered", "error", err)
		store = session.NewMemoryStore()
	} else {
		store = ks
	}

	p, err := session.NewProvider(session.Options{
		AutoConnect: c.AutoConnect,
		Networks:    []starknet.Network{n},
		Connectors:  []connector.Connector{ctrl},
		Explorer:    explorer,
		RPC:         session.PickedRPC(c.RPCAlgorithm, c.GetRPCs(n.Name)...),
		Store:       store,
		Logger:      l,
	})
	if err != nil {
		return nil, err
	}
	return &stack{network: n, ctrl: ctrl, provider: p}, nil
}

func loadStack() (*stack, error) {
	return newStack(cfg, networkOverride(), log)
}

// ensureConnected restores the remembered connection, or connects the
// controller when nothing is remembered.
func (s *stack) ensureConnected(ctx context.Context) error {
	ok, err := s.provider.AutoConnect(ctx)
	if err != nil && !errors.Is(err, session.ErrUnknownConnector) {
		return err
	}
	if ok {
		return nil
	}
	return s.provider.Connect(ctx, s.ctrl)
}

// rememberHint is printed after a failed connection attempt.
func rememberHint(err error) string {
	switch {
	case errors.Is(err, connector.ErrUserRefused):
		return ui.Hint("the wallet rejected the request")
	case errors.Is(err, connector.ErrWrongChain):
		return ui.Hint("switch the wallet network, or use --testnet / --mainnet")
	}
	return ui.Hint("is the wallet bridge running at " + cfg.BridgeURL() + "? set it with: w3stark config set wallet_bridge <url>")
}
