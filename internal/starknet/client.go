package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Starknet JSON-RPC error codes the client cares about.
const (
	codeTxHashNotFound = 29
)

// RPCError is a JSON-RPC error object returned by a node or wallet bridge.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Client is a minimal Starknet JSON-RPC client.
type Client struct {
	url    string
	client *http.Client
	poll   time.Duration
	nextID atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPollInterval sets how often WaitForReceipt polls the node.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.poll = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.client = h }
}

// NewClient creates a client pointed at a Starknet RPC url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		poll:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the RPC endpoint.
func (c *Client) URL() string { return c.url }

// Receipt is the subset of a transaction receipt w3stark displays.
type Receipt struct {
	Hash            string
	ExecutionStatus string // "SUCCEEDED" | "REVERTED"
	FinalityStatus  string // "ACCEPTED_ON_L2" | "ACCEPTED_ON_L1"
	BlockNumber     uint64
	RevertReason    string
	ActualFee       *big.Int
	FeeUnit         string // "WEI" | "FRI"
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool { return r.ExecutionStatus == "SUCCEEDED" }

// ChainID returns the decoded chain id, e.g. "SN_SEPOLIA".
func (c *Client) ChainID(ctx context.Context) (string, error) {
	var felt string
	if err := c.call(ctx, "starknet_chainId", &felt); err != nil {
		return "", err
	}
	return DecodeShortString(felt)
}

// BlockNumber returns the latest accepted block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n uint64
	if err := c.call(ctx, "starknet_blockNumber", &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Ping measures round-trip latency to the node using starknet_blockNumber.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// Call executes a read-only entrypoint against the latest block.
func (c *Client) Call(ctx context.Context, contract, entrypoint string, calldata []string) ([]string, error) {
	if calldata == nil {
		calldata = []string{}
	}
	req := map[string]interface{}{
		"contract_address":     contract,
		"entry_point_selector": Selector(entrypoint),
		"calldata":             calldata,
	}
	var out []string
	if err := c.call(ctx, "starknet_call", &out, req, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// BalanceOf returns an ERC-20 balance held by owner.
func (c *Client) BalanceOf(ctx context.Context, token, owner string) (*big.Int, error) {
	out, err := c.Call(ctx, token, "balanceOf", []string{owner})
	if err != nil {
		return nil, err
	}
	switch len(out) {
	case 1:
		return ParseFelt(out[0])
	case 2:
		return JoinU256(out[0], out[1])
	}
	return nil, fmt.Errorf("unexpected balanceOf result length %d", len(out))
}

// TransactionReceipt fetches a receipt. It returns (nil, nil) while the node
// does not know the hash yet.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var raw struct {
		TransactionHash string `json:"transaction_hash"`
		ExecutionStatus string `json:"execution_status"`
		FinalityStatus  string `json:"finality_status"`
		BlockNumber     uint64 `json:"block_number"`
		RevertReason    string `json:"revert_reason"`
		ActualFee       struct {
			Amount string `json:"amount"`
			Unit   string `json:"unit"`
		} `json:"actual_fee"`
	}
	err := c.call(ctx, "starknet_getTransactionReceipt", &raw, hash)
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == codeTxHashNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if raw.ExecutionStatus == "" {
		return nil, nil
	}

	r := &Receipt{
		Hash:            hash,
		ExecutionStatus: raw.ExecutionStatus,
		FinalityStatus:  raw.FinalityStatus,
		BlockNumber:     raw.BlockNumber,
		RevertReason:    raw.RevertReason,
		FeeUnit:         raw.ActualFee.Unit,
	}
	if raw.ActualFee.Amount != "" {
		if fee, err := ParseFelt(raw.ActualFee.Amount); err == nil {
			r.ActualFee = fee
		}
	}
	return r, nil
}

// WaitForReceipt polls until the transaction is included or timeout elapses.
// A reverted transaction returns its receipt together with an error.
func (c *Client) WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(c.poll), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transaction %s not accepted within %s", hash, timeout)
		}
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("transaction %s not accepted within %s", hash, timeout)
			}
			return nil, err
		}
		if receipt == nil {
			continue
		}
		if !receipt.Succeeded() {
			return receipt, fmt.Errorf("transaction reverted (hash: %s): %s", hash, receipt.RevertReason)
		}
		return receipt, nil
	}
}

// --- JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int64       `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Do performs a raw JSON-RPC call and decodes the result into out. params
// is either a positional slice or a named-parameter object. It is shared with
// the wallet bridge, which speaks the same envelope.
func Do(ctx context.Context, h *http.Client, url string, id int64, method string, params, out interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("parsing response (HTTP %d): %w", resp.StatusCode, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("parsing result: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	return Do(ctx, c.client, c.url, c.nextID.Add(1), method, params, out)
}
