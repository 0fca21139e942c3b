// Package session owns the wallet connection state and publishes every change
// to explicit subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/rpc"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"go.uber.org/zap"
)

var (
	// ErrNoConnectors is returned when the provider was built without connectors.
	ErrNoConnectors = errors.New("no wallet connectors configured")
	// ErrUnknownConnector is returned when a remembered connector is no longer offered.
	ErrUnknownConnector = errors.New("unknown connector")
)

// State is a snapshot of the connection. Address is empty while disconnected.
type State struct {
	Address   string
	Account   connector.Account
	Connector connector.Connector
}

// Connected reports whether an account is bound.
func (s State) Connected() bool { return s.Address != "" }

// RPCFactory returns a JSON-RPC client for a network.
type RPCFactory func(ctx context.Context, n starknet.Network) (*starknet.Client, error)

// PickedRPC builds clients against the best endpoint chosen by algorithm.
// Extra URLs are tried alongside the network's own list. The factory keeps
// one picker, so round-robin rotates across calls.
func PickedRPC(algorithm string, extra ...string) RPCFactory {
	picker := rpc.NewPicker(rpc.ParseAlgorithm(algorithm))
	return func(ctx context.Context, n starknet.Network) (*starknet.Client, error) {
		urls := append(append([]string{}, extra...), n.RPCs...)
		url, err := picker.Select(ctx, urls)
		if err != nil {
			return nil, err
		}
		return starknet.NewClient(url), nil
	}
}

// FixedRPC always returns a client for url.
func FixedRPC(url string) RPCFactory {
	return func(context.Context, starknet.Network) (*starknet.Client, error) {
		return starknet.NewClient(url), nil
	}
}

// Options configure a Provider.
type Options struct {
	AutoConnect bool
	Networks    []starknet.Network
	Connectors  []connector.Connector
	Explorer    starknet.Explorer
	RPC         RPCFactory
	Store       Store
	Logger      *zap.SugaredLogger
}

// Provider is the wallet state provider.
type Provider struct {
	opts Options
	log  *zap.SugaredLogger

	// deliver serialises publish so subscribers see states in the order
	// they were stored.
	deliver sync.Mutex

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewProvider validates opts and fills in defaults.
func NewProvider(opts Options) (*Provider, error) {
	if len(opts.Connectors) == 0 {
		return nil, ErrNoConnectors
	}
	if len(opts.Networks) == 0 {
		opts.Networks = []starknet.Network{starknet.Sepolia}
	}
	if opts.Explorer == nil {
		opts.Explorer = starknet.Starkscan{BaseURL: opts.Networks[0].Starkscan}
	}
	if opts.RPC == nil {
		opts.RPC = PickedRPC(string(rpc.AlgorithmFastest))
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Provider{
		opts: opts,
		log:  opts.Logger.Named("session"),
		subs: make(map[int]func(State)),
	}, nil
}

// Subscribe registers fn for every later state change. The returned function
// removes the subscription and may be called more than once.
func (p *Provider) Subscribe(fn func(State)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Provider) Connectors() []connector.Connector {
	out := make([]connector.Connector, len(p.opts.Connectors))
	copy(out, p.opts.Connectors)
	return out
}

func (p *Provider) Explorer() starknet.Explorer { return p.opts.Explorer }

// Network is the chain the provider targets (the first configured one).
func (p *Provider) Network() starknet.Network { return p.opts.Networks[0] }

// Client returns a JSON-RPC client for the active network.
func (p *Provider) Client(ctx context.Context) (*starknet.Client, error) {
	c, err := p.opts.RPC(ctx, p.Network())
	if err != nil {
		return nil, fmt.Errorf("rpc for %s: %w", p.Network().Name, err)
	}
	return c, nil
}

// Connect binds the account returned by c and remembers c for AutoConnect.
func (p *Provider) Connect(ctx context.Context, c connector.Connector) error {
	acc, err := c.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	if err := p.opts.Store.RememberConnector(c.ID()); err != nil {
		p.log.Warnw("could not remember connector", "connector", c.ID(), "error", err)
	}
	p.publish(State{Address: acc.Address(), Account: acc, Connector: c})
	return nil
}

// Disconnect tears down the active connector, clears the state and forgets
// the remembered connector. With nothing connected only the remembered
// connector is forgotten.
func (p *Provider) Disconnect(ctx context.Context) error {
	if ferr := p.opts.Store.Forget(); ferr != nil {
		p.log.Warnw("could not forget connector", "error", ferr)
	}
	cur := p.State()
	if cur.Connector == nil {
		return nil
	}
	err := cur.Connector.Disconnect(ctx)
	p.publish(State{})
	if err != nil {
		return fmt.Errorf("%s: %w", cur.Connector.Name(), err)
	}
	return nil
}

// AutoConnect reconnects the last remembered connector. It returns false
// without error when auto-connect is disabled or nothing was remembered.
func (p *Provider) AutoConnect(ctx context.Context) (bool, error) {
	if !p.opts.AutoConnect {
		return false, nil
	}
	id, err := p.opts.Store.LastConnector()
	if errors.Is(err, ErrNothingStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, c := range p.opts.Connectors {
		if c.ID() == id {
			if err := p.Connect(ctx, c); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownConnector, id)
}

// publish stores s and notifies subscribers outside mu so callbacks may read
// State or unsubscribe. Callbacks must not Connect or Disconnect synchronously.
func (p *Provider) publish(s State) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	p.state = s
	fns := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	p.log.Debugw("state changed", "address", s.Address)
	for _, fn := range fns {
		fn(s)
	}
}
