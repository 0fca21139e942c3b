// Package rpc chooses which Starknet RPC endpoint a session talks to.
package rpc

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no usable endpoint remains.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm names an endpoint selection strategy.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Nodes more than this many blocks behind the tip are skipped.
	staleBlockThreshold = 3
	cacheTTL            = 5 * time.Minute
)

// ParseAlgorithm maps a config string to an Algorithm; unknown or empty
// values select AlgorithmFastest.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(s) {
	case AlgorithmRoundRobin, AlgorithmFailover:
		return Algorithm(s)
	}
	return AlgorithmFastest
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint from probe results. It is safe for concurrent use.
type Picker struct {
	algo Algorithm

	mu          sync.Mutex
	next        int
	cachedURL   string
	cacheExpiry time.Time
	now         func() time.Time
}

// NewPicker returns a Picker using algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick returns the chosen endpoint URL.
func (p *Picker) Pick(endpoints []Endpoint) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := fresh(endpoints)
	if len(candidates) == 0 {
		return "", ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		url := candidates[p.next%len(candidates)].URL
		p.next = (p.next + 1) % len(candidates)
		return url, nil
	case AlgorithmFailover:
		// Keep configuration order: first healthy wins.
		return candidates[0].URL, nil
	}

	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for _, c := range candidates {
			if c.URL == p.cachedURL {
				return c.URL, nil
			}
		}
	}

	ranked := append([]Endpoint(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Latency < ranked[j].Latency
	})
	p.cachedURL = ranked[0].URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return p.cachedURL, nil
}

// fresh drops failed probes and nodes lagging the best observed block,
// preserving input order.
func fresh(endpoints []Endpoint) []Endpoint {
	var tip uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > tip {
			tip = e.BlockNumber
		}
	}
	var out []Endpoint
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if tip-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
