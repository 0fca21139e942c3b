// Package dapp holds the two demo components: the wallet connection panel and
// the approve+transfer panel. Both observe a session.Provider and expose plain
// view structs for rendering.
package dapp

import (
	"context"
	"errors"
	"sync"

	"github.com/Mohsinsiddi/w3stark/internal/session"
	"go.uber.org/zap"
)

// ErrNoConnector is returned by Connect when no connector is offered.
var ErrNoConnector = errors.New("no wallet connector available")

// ConnectionView is what the connection panel shows. Username is empty until
// resolved, and always empty while Address is.
type ConnectionView struct {
	Address  string
	Username string
}

// Connection tracks the connected address and its display name.
type Connection struct {
	provider *session.Provider
	log      *zap.SugaredLogger

	mu       sync.Mutex
	address  string
	username string
	listener []func()
	unsub    func()
}

// NewConnection subscribes to p. Call Close to stop observing.
func NewConnection(p *session.Provider, log *zap.SugaredLogger) *Connection {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Connection{provider: p, log: log.Named("connection")}
	c.unsub = p.Subscribe(c.observe)
	c.observe(p.State())
	return c
}

// Connect connects with the first available connector.
func (c *Connection) Connect(ctx context.Context) error {
	cs := c.provider.Connectors()
	if len(cs) == 0 {
		return ErrNoConnector
	}
	return c.provider.Connect(ctx, cs[0])
}

// Disconnect drops the wallet connection.
func (c *Connection) Disconnect(ctx context.Context) error {
	return c.provider.Disconnect(ctx)
}

// View returns the current panel state.
func (c *Connection) View() ConnectionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnectionView{Address: c.address, Username: c.username}
}

// OnChange registers fn to run after every view change.
func (c *Connection) OnChange(fn func()) {
	c.mu.Lock()
	c.listener = append(c.listener, fn)
	c.mu.Unlock()
}

// Close stops observing the provider.
func (c *Connection) Close() { c.unsub() }

func (c *Connection) observe(s session.State) {
	c.mu.Lock()
	if s.Address == c.address {
		c.mu.Unlock()
		return
	}
	c.address = s.Address
	c.username = ""
	c.mu.Unlock()
	c.notify()

	if s.Address == "" || s.Connector == nil {
		return
	}
	go c.fetchUsername(s)
}

// fetchUsername resolves the name for s.Address and applies it only if that
// address is still the connected one.
func (c *Connection) fetchUsername(s session.State) {
	name, err := s.Connector.Username(context.Background())
	if err != nil {
		c.log.Debugw("username lookup failed", "address", s.Address, "error", err)
		return
	}

	c.mu.Lock()
	if c.address != s.Address {
		c.mu.Unlock()
		c.log.Debugw("discarding stale username", "address", s.Address)
		return
	}
	c.username = name
	c.mu.Unlock()
	c.notify()
}

func (c *Connection) notify() {
	c.mu.Lock()
	fns := append([]func(){}, c.listener...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
