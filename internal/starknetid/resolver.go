// Package starknetid resolves account addresses to starknet.id domains,
// which w3stark shows as the connected user's display name.
package starknetid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/go-resty/resty/v2"
)

// ErrNoName is returned when an address has no main domain.
var ErrNoName = errors.New("no starknet.id domain for address")

// Resolver queries the starknet.id HTTP API.
type Resolver struct {
	client *resty.Client
}

// NewResolver creates a resolver for the API at baseURL, e.g.
// https://sepolia.api.starknet.id.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

type domainResponse struct {
	Domain       string `json:"domain"`
	DomainExpiry int64  `json:"domain_expiry"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Name returns the main domain for address, e.g. "alice.stark".
func (r *Resolver) Name(ctx context.Context, address string) (string, error) {
	addr, err := starknet.NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	var out domainResponse
	var apiErr errorResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("addr", addr).
		SetResult(&out).
		SetError(&apiErr).
		Get("/addr_to_domain")
	if err != nil {
		return "", fmt.Errorf("starknet.id request failed: %w", err)
	}
	if resp.StatusCode() == 404 || (resp.IsError() && strings.Contains(strings.ToLower(apiErr.Error), "no domain")) {
		return "", ErrNoName
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("starknet.id: %s", msg)
	}
	if out.Domain == "" {
		return "", ErrNoName
	}
	return out.Domain, nil
}
