package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3stark/internal/starknet"
)

const probeTimeout = 5 * time.Second

// Probe pings every URL in parallel with starknet_blockNumber.
// Results keep the order of urls.
func Probe(ctx context.Context, urls []string) []Endpoint {
	out := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			latency, block, err := starknet.NewClient(u).Ping(pctx)
			out[i] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Err: err}
		}(i, u)
	}
	wg.Wait()
	return out
}

// SelectBest probes urls and picks one with the named algorithm using a
// one-shot Picker.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	return NewPicker(ParseAlgorithm(algorithm)).Select(ctx, urls)
}

// Select probes urls and picks one. A single URL is returned without probing.
// Reusing the Picker keeps round-robin position and the fastest cache.
func (p *Picker) Select(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	return p.Pick(Probe(ctx, urls))
}
