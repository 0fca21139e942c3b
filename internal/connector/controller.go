package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"go.uber.org/zap"
)

// ControllerID identifies the controller connector in persisted sessions.
const ControllerID = "controller"

// DefaultBridgeURL is where a locally running wallet bridge listens.
const DefaultBridgeURL = "http://127.0.0.1:5790/rpc"

// Wallet API error codes.
const (
	codeUserRefused = 113
)

// ErrWrongChain is returned when the wallet is on a different chain.
var ErrWrongChain = errors.New("wallet is connected to a different chain")

// ErrNoUsername is returned when no display name is available.
var ErrNoUsername = errors.New("no username for account")

// NameResolver maps an account address to a display name.
type NameResolver interface {
	Name(ctx context.Context, address string) (string, error)
}

// Controller is a Connector backed by a wallet bridge that speaks the
// Starknet wallet JSON-RPC API. Calls outside the configured policies are
// refused before they reach the bridge.
type Controller struct {
	cfg     Config
	bridge  string
	chainID string
	http    *http.Client
	names   NameResolver
	log     *zap.SugaredLogger
	nextID  atomic.Int64

	mu      sync.Mutex
	account *controllerAccount
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithBridge sets the wallet bridge URL.
func WithBridge(url string) ControllerOption {
	return func(c *Controller) { c.bridge = url }
}

// WithChainID makes Connect verify the wallet's chain, e.g. "SN_SEPOLIA".
func WithChainID(id string) ControllerOption {
	return func(c *Controller) { c.chainID = id }
}

// WithNameResolver sets where usernames come from.
func WithNameResolver(r NameResolver) ControllerOption {
	return func(c *Controller) { c.names = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// WithHTTPClient replaces the HTTP client used to reach the bridge.
func WithHTTPClient(h *http.Client) ControllerOption {
	return func(c *Controller) { c.http = h }
}

// NewController creates a controller connector for cfg.
func NewController(cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:    cfg,
		bridge: DefaultBridgeURL,
		http:   &http.Client{Timeout: 2 * time.Minute},
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ID() string   { return ControllerID }
func (c *Controller) Name() string { return "Cartridge Controller" }

// Config returns the connector configuration.
func (c *Controller) Config() Config { return c.cfg }

// Connect asks the wallet for its accounts and binds the first one. The
// configured RPC endpoint is handed to the wallet with the request.
func (c *Controller) Connect(ctx context.Context) (Account, error) {
	if c.chainID != "" {
		var felt string
		if err := c.call(ctx, "wallet_requestChainId", nil, &felt); err != nil {
			return nil, fmt.Errorf("requesting chain id: %w", err)
		}
		got, err := starknet.DecodeShortString(felt)
		if err != nil {
			return nil, fmt.Errorf("decoding chain id: %w", err)
		}
		if got != c.chainID {
			return nil, fmt.Errorf("%w: wallet on %s, want %s", ErrWrongChain, got, c.chainID)
		}
	}

	var accounts []string
	params := map[string]interface{}{"silent_mode": false}
	if rpc := c.cfg.RPC(); rpc != "" {
		params["rpc_url"] = rpc
	}
	if err := c.call(ctx, "wallet_requestAccounts", params, &accounts); err != nil {
		return nil, fmt.Errorf("requesting accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	addr, err := starknet.NormalizeAddress(accounts[0])
	if err != nil {
		return nil, fmt.Errorf("wallet returned bad address: %w", err)
	}

	acc := &controllerAccount{ctrl: c, address: addr}
	c.mu.Lock()
	c.account = acc
	c.mu.Unlock()

	c.log.Infow("wallet connected", "connector", c.ID(), "address", addr)
	return acc, nil
}

// Disconnect forgets the bound account. Accounts handed out earlier stop
// executing.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	c.account = nil
	c.mu.Unlock()
	c.log.Infow("wallet disconnected", "connector", c.ID())
	return nil
}

// Username resolves the display name of the connected account.
func (c *Controller) Username(ctx context.Context) (string, error) {
	c.mu.Lock()
	acc := c.account
	c.mu.Unlock()
	if acc == nil {
		return "", ErrNotConnected
	}
	if c.names == nil {
		return "", ErrNoUsername
	}
	return c.names.Name(ctx, acc.address)
}

func (c *Controller) current(acc *controllerAccount) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account == acc
}

func (c *Controller) call(ctx context.Context, method string, params, out interface{}) error {
	err := starknet.Do(ctx, c.http, c.bridge, c.nextID.Add(1), method, params, out)
	var rpcErr *starknet.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == codeUserRefused {
		return fmt.Errorf("%w: %s", ErrUserRefused, rpcErr.Message)
	}
	return err
}

// controllerAccount is the Account handed out by Controller.Connect.
type controllerAccount struct {
	ctrl    *Controller
	address string
}

func (a *controllerAccount) Address() string { return a.address }

// Execute submits calls as one invoke transaction through the wallet.
func (a *controllerAccount) Execute(ctx context.Context, calls []Call) (*InvokeResult, error) {
	if !a.ctrl.current(a) {
		return nil, ErrNotConnected
	}
	if len(calls) == 0 {
		return nil, errors.New("empty call batch")
	}
	for _, call := range calls {
		if !a.ctrl.cfg.Allows(call) {
			return nil, fmt.Errorf("%w: %s on %s", ErrPolicyViolation, call.Entrypoint, call.ContractAddress)
		}
	}

	var res InvokeResult
	params := map[string]interface{}{"calls": calls}
	if err := a.ctrl.call(ctx, "wallet_addInvokeTransaction", params, &res); err != nil {
		return nil, fmt.Errorf("submitting invoke: %w", err)
	}
	if res.TransactionHash == "" {
		return nil, errors.New("wallet returned no transaction hash")
	}
	return &res, nil
}
