package dapp

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/session"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"go.uber.org/zap"
)

// DemoAmount is 0.005 ETH in wei.
const DemoAmount = "0x1C6BF52634000"

var (
	// ErrNoAccount is returned by Submit while no wallet is connected.
	ErrNoAccount = errors.New("no connected account")
	// ErrInFlight is returned by Submit while a previous submission is pending.
	ErrInFlight = errors.New("submission already in flight")

	errNoResult = errors.New("wallet returned no transaction hash")
)

// TransferView is what the transfer panel shows. Nothing is rendered unless
// Visible is set.
type TransferView struct {
	Visible     bool
	Contract    string
	Amount      string
	InFlight    bool
	TxHash      string
	ExplorerURL string
}

// Transfer submits approve+transfer of the same amount back to the caller's
// own address on one token contract.
type Transfer struct {
	provider *session.Provider
	token    string
	amount   string
	log      *zap.SugaredLogger

	mu       sync.Mutex
	inFlight bool
	txHash   string
	listener []func()
	unsub    func()
}

// NewTransfer builds the panel for token. An empty token uses the ETH
// contract.
func NewTransfer(p *session.Provider, token string, log *zap.SugaredLogger) *Transfer {
	if token == "" {
		token = starknet.ETHToken
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	t := &Transfer{provider: p, token: token, amount: DemoAmount, log: log.Named("transfer")}
	t.unsub = p.Subscribe(func(session.State) { t.notify() })
	return t
}

// Token returns the contract the panel operates on.
func (t *Transfer) Token() string { return t.token }

// Amount is the amount the panel submits by default.
func (t *Transfer) Amount() string { return t.amount }

// BuildCalls returns approve(recipient, amount) followed by
// transfer(recipient, amount) on token, with amount as a u256 [low, high].
func BuildCalls(token, recipient string, amount *big.Int) ([]connector.Call, error) {
	low, high, err := starknet.SplitU256(amount)
	if err != nil {
		return nil, err
	}
	data := []string{recipient, low, high}
	return []connector.Call{
		{ContractAddress: token, Entrypoint: "approve", Calldata: data},
		{ContractAddress: token, Entrypoint: "transfer", Calldata: append([]string(nil), data...)},
	}, nil
}

// Submit sends the batch through the connected account. Failures are logged
// and leave the previous view untouched apart from the cleared hash.
func (t *Transfer) Submit(ctx context.Context, amount string) error {
	acc := t.provider.State().Account
	if acc == nil {
		return ErrNoAccount
	}
	if amount == "" {
		amount = t.amount
	}
	value, err := starknet.ParseFelt(amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	calls, err := BuildCalls(t.token, acc.Address(), value)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return ErrInFlight
	}
	t.inFlight = true
	t.txHash = ""
	t.mu.Unlock()
	t.notify()

	hash, err := t.execute(ctx, acc, calls)
	if err != nil {
		t.log.Errorw("transfer submission failed", "account", acc.Address(), "token", t.token, "error", err)
		return err
	}
	t.log.Infow("transfer submitted", "account", acc.Address(), "hash", hash)
	return nil
}

// execute runs the batch and always releases the in-flight flag, even when
// the account panics.
func (t *Transfer) execute(ctx context.Context, acc connector.Account, calls []connector.Call) (hash string, err error) {
	defer func() {
		t.mu.Lock()
		t.txHash = hash
		t.inFlight = false
		t.mu.Unlock()
		t.notify()
	}()

	res, err := acc.Execute(ctx, calls)
	if err != nil {
		return "", err
	}
	if res == nil || res.TransactionHash == "" {
		return "", errNoResult
	}
	return res.TransactionHash, nil
}

// View returns the current panel state.
func (t *Transfer) View() TransferView {
	if !t.provider.State().Connected() {
		return TransferView{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	v := TransferView{
		Visible:  true,
		Contract: t.token,
		Amount:   t.amount,
		InFlight: t.inFlight,
		TxHash:   t.txHash,
	}
	if v.TxHash != "" {
		v.ExplorerURL = t.provider.Explorer().Transaction(v.TxHash)
	}
	return v
}

// OnChange registers fn to run after every view change.
func (t *Transfer) OnChange(fn func()) {
	t.mu.Lock()
	t.listener = append(t.listener, fn)
	t.mu.Unlock()
}

// Close stops observing the provider.
func (t *Transfer) Close() { t.unsub() }

func (t *Transfer) notify() {
	t.mu.Lock()
	fns := append([]func(){}, t.listener...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
