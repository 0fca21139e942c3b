package connector

import (
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
)

// Policy authorises the connector to invoke one method on one contract
// without prompting. Description is shown to the user when consenting.
type Policy struct {
	Target      string `json:"target"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// Config is the connector configuration. It is immutable once built.
type Config struct {
	policies []Policy
	rpc      string
}

// NewConfig builds a Config from an RPC URL and a policy list.
func NewConfig(rpc string, policies ...Policy) Config {
	return Config{
		policies: append([]Policy(nil), policies...),
		rpc:      rpc,
	}
}

// DefaultPolicies allows approve and transfer on token and nothing else.
func DefaultPolicies(token string) []Policy {
	return []Policy{
		{
			Target:      token,
			Method:      "approve",
			Description: "Allow approval of tokens for spending.",
		},
		{
			Target:      token,
			Method:      "transfer",
			Description: "Allow transfer of tokens.",
		},
	}
}

// Policies returns a copy of the configured policies.
func (c Config) Policies() []Policy {
	return append([]Policy(nil), c.policies...)
}

// RPC returns the endpoint the wallet is asked to execute against.
func (c Config) RPC() string { return c.rpc }

// Allows reports whether call is covered by a policy.
func (c Config) Allows(call Call) bool {
	for _, p := range c.policies {
		if p.Method == call.Entrypoint && starknet.SameAddress(p.Target, call.ContractAddress) {
			return true
		}
	}
	return false
}
