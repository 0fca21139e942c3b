// Package connector defines the wallet connector boundary: the contract
// between w3stark and whatever wallet signs and executes on the user's behalf.
package connector

import (
	"context"
	"errors"
)

var (
	// ErrNotConnected is returned by operations that need a connected account.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrPolicyViolation is returned when a call is outside the session policies.
	ErrPolicyViolation = errors.New("call not allowed by session policies")
	// ErrUserRefused is returned when the user declines a request in the wallet.
	ErrUserRefused = errors.New("request refused by user")
	// ErrNoAccounts is returned when the wallet exposes no account.
	ErrNoAccounts = errors.New("wallet returned no accounts")
)

// Call is one contract invocation inside a batch.
type Call struct {
	ContractAddress string   `json:"contract_address"`
	Entrypoint      string   `json:"entry_point"`
	Calldata        []string `json:"calldata"`
}

// InvokeResult is what the execution layer returns for a submitted batch.
type InvokeResult struct {
	TransactionHash string `json:"transaction_hash"`
}

// Account executes batches of calls as a single transaction.
type Account interface {
	Address() string
	Execute(ctx context.Context, calls []Call) (*InvokeResult, error)
}

// Connector bridges w3stark and a user's wallet.
type Connector interface {
	ID() string
	Name() string
	Connect(ctx context.Context) (Account, error)
	Disconnect(ctx context.Context) error
	Username(ctx context.Context) (string, error)
}
