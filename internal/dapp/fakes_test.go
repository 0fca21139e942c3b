package dapp_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/session"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	addrA = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	addrB = "0x00000000000000000000000000000000000000000000000000000000000000bb"
)

// fakeAccount records batches. When gate is set Execute waits on it.
// noResult makes Execute return (nil, nil); panics makes it panic.
type fakeAccount struct {
	address  string
	gate     chan struct{}
	err      error
	hash     string
	noResult bool
	panics   string

	mu      sync.Mutex
	batches [][]connector.Call
}

func (a *fakeAccount) Address() string { return a.address }

func (a *fakeAccount) Execute(ctx context.Context, calls []connector.Call) (*connector.InvokeResult, error) {
	a.mu.Lock()
	a.batches = append(a.batches, calls)
	a.mu.Unlock()
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.panics != "" {
		panic(a.panics)
	}
	if a.err != nil {
		return nil, a.err
	}
	if a.noResult {
		return nil, nil
	}
	return &connector.InvokeResult{TransactionHash: a.hash}, nil
}

func (a *fakeAccount) Batches() [][]connector.Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]connector.Call(nil), a.batches...)
}

// fakeConnector hands out accounts in order. Username signals started[address]
// and then blocks until a result for that address is pushed on names[address].
type fakeConnector struct {
	accounts []*fakeAccount
	names    map[string]chan nameResult
	started  map[string]chan struct{}

	mu      sync.Mutex
	next    int
	current string
}

type nameResult struct {
	name string
	err  error
}

func newFakeConnector(accounts ...*fakeAccount) *fakeConnector {
	c := &fakeConnector{
		accounts: accounts,
		names:    make(map[string]chan nameResult),
		started:  make(map[string]chan struct{}),
	}
	for _, a := range accounts {
		c.names[a.address] = make(chan nameResult, 1)
		c.started[a.address] = make(chan struct{}, 1)
	}
	return c
}

func (c *fakeConnector) ID() string   { return "fake" }
func (c *fakeConnector) Name() string { return "Fake Wallet" }

func (c *fakeConnector) Connect(context.Context) (connector.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next >= len(c.accounts) {
		return nil, errors.New("no more accounts")
	}
	acc := c.accounts[c.next]
	c.next++
	c.current = acc.address
	return acc, nil
}

func (c *fakeConnector) Disconnect(context.Context) error {
	c.mu.Lock()
	c.current = ""
	c.mu.Unlock()
	return nil
}

func (c *fakeConnector) Username(ctx context.Context) (string, error) {
	c.mu.Lock()
	ch, started := c.names[c.current], c.started[c.current]
	c.mu.Unlock()
	if ch == nil {
		return "", connector.ErrNotConnected
	}
	select {
	case started <- struct{}{}:
	default:
	}
	select {
	case r := <-ch:
		return r.name, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newProvider(t *testing.T, c connector.Connector) *session.Provider {
	t.Helper()
	p, err := session.NewProvider(session.Options{
		Connectors: []connector.Connector{c},
		Explorer:   starknet.Starkscan{BaseURL: "https://sepolia.starkscan.co"},
		Logger:     zap.NewNop().Sugar(),
	})
	require.NoError(t, err)
	return p
}
