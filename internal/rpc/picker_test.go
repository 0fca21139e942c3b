package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ep(url string, latency time.Duration, block uint64) Endpoint {
	return Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func failed(url string) Endpoint {
	return Endpoint{URL: url, Err: errors.New("dial tcp: connection refused")}
}

// blockServer answers starknet_blockNumber with block after delay.
func blockServer(t *testing.T, block uint64, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%d}`, block)
	}))
}

// ---------------------------------------------------------------------------
// Picker
// ---------------------------------------------------------------------------

func TestPickerSelectsFastest(t *testing.T) {
	url, err := NewPicker(AlgorithmFastest).Pick([]Endpoint{
		ep("http://slow", 200*time.Millisecond, 100),
		ep("http://fast", 30*time.Millisecond, 100),
		ep("http://medium", 80*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://fast", url)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	url, err := NewPicker(AlgorithmFastest).Pick([]Endpoint{
		ep("http://fresh", 50*time.Millisecond, 1000),
		ep("http://stale", 10*time.Millisecond, 990),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://fresh", url)
}

func TestPickerSkipsFailedProbes(t *testing.T) {
	url, err := NewPicker(AlgorithmFastest).Pick([]Endpoint{
		failed("http://down"),
		ep("http://up", 90*time.Millisecond, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://up", url)
}

func TestPickerAllFailed(t *testing.T) {
	_, err := NewPicker(AlgorithmFailover).Pick([]Endpoint{failed("a"), failed("b")})
	assert.ErrorIs(t, err, ErrNoHealthyRPC)

	_, err = NewPicker(AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	eps := []Endpoint{ep("a", time.Millisecond, 1), ep("b", time.Millisecond, 1), failed("c")}
	p := NewPicker(AlgorithmRoundRobin)

	var got []string
	for i := 0; i < 4; i++ {
		url, err := p.Pick(eps)
		require.NoError(t, err)
		got = append(got, url)
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestPickerFailoverKeepsOrder(t *testing.T) {
	url, err := NewPicker(AlgorithmFailover).Pick([]Endpoint{
		failed("primary"),
		ep("secondary", 300*time.Millisecond, 10),
		ep("tertiary", 10*time.Millisecond, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, "secondary", url)
}

func TestPickerCachesFastestWinner(t *testing.T) {
	p := NewPicker(AlgorithmFastest)
	first, err := p.Pick([]Endpoint{ep("a", 10*time.Millisecond, 1), ep("b", 50*time.Millisecond, 1)})
	require.NoError(t, err)
	assert.Equal(t, "a", first)

	// b is now faster but the cached winner is still healthy.
	second, err := p.Pick([]Endpoint{ep("a", 60*time.Millisecond, 1), ep("b", 5*time.Millisecond, 1)})
	require.NoError(t, err)
	assert.Equal(t, "a", second)

	// Cache expiry re-ranks.
	p.now = func() time.Time { return time.Now().Add(2 * cacheTTL) }
	third, err := p.Pick([]Endpoint{ep("a", 60*time.Millisecond, 1), ep("b", 5*time.Millisecond, 1)})
	require.NoError(t, err)
	assert.Equal(t, "b", third)
}

func TestParseAlgorithm(t *testing.T) {
	assert.Equal(t, AlgorithmFastest, ParseAlgorithm(""))
	assert.Equal(t, AlgorithmFastest, ParseAlgorithm("bogus"))
	assert.Equal(t, AlgorithmRoundRobin, ParseAlgorithm("round-robin"))
	assert.Equal(t, AlgorithmFailover, ParseAlgorithm("failover"))
}

// ---------------------------------------------------------------------------
// Probe / SelectBest
// ---------------------------------------------------------------------------

func TestProbeMeasuresEachURL(t *testing.T) {
	a := blockServer(t, 500, 0)
	defer a.Close()

	results := Probe(context.Background(), []string{a.URL, "http://127.0.0.1:19993"})
	require.Len(t, results, 2)
	assert.True(t, results[0].Healthy())
	assert.Equal(t, uint64(500), results[0].BlockNumber)
	assert.False(t, results[1].Healthy())
}

func TestSelectBestPrefersFasterNode(t *testing.T) {
	slow := blockServer(t, 100, 150*time.Millisecond)
	defer slow.Close()
	fast := blockServer(t, 100, 0)
	defer fast.Close()

	url, err := SelectBest(context.Background(), []string{slow.URL, fast.URL}, "fastest")
	require.NoError(t, err)
	assert.Equal(t, fast.URL, url)
}

func TestSelectBestShortLists(t *testing.T) {
	_, err := SelectBest(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoHealthyRPC)

	url, err := SelectBest(context.Background(), []string{"http://only"}, "")
	require.NoError(t, err)
	assert.Equal(t, "http://only", url)
}
