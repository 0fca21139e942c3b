package dapp_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3stark/internal/dapp"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func connected(t *testing.T, acc *fakeAccount) (*dapp.Transfer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	fc := newFakeConnector(acc)
	p := newProvider(t, fc)
	require.NoError(t, p.Connect(context.Background(), fc))
	tr := dapp.NewTransfer(p, "", zap.New(core).Sugar())
	t.Cleanup(tr.Close)
	return tr, logs
}

func TestBuildCallsLayout(t *testing.T) {
	amount, ok := new(big.Int).SetString("1C6BF52634000", 16)
	require.True(t, ok)

	calls, err := dapp.BuildCalls(starknet.ETHToken, addrA, amount)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "approve", calls[0].Entrypoint)
	assert.Equal(t, "transfer", calls[1].Entrypoint)
	for _, c := range calls {
		assert.Equal(t, starknet.ETHToken, c.ContractAddress)
		assert.Equal(t, []string{addrA, "0x1c6bf52634000", "0x0"}, c.Calldata)
	}
}

func TestBuildCallsHighLimb(t *testing.T) {
	amount := new(big.Int).Lsh(big.NewInt(3), 128)
	calls, err := dapp.BuildCalls(starknet.ETHToken, addrA, amount)
	require.NoError(t, err)
	assert.Equal(t, []string{addrA, "0x0", "0x3"}, calls[0].Calldata)
}

func TestBuildCallsRejectsNegative(t *testing.T) {
	_, err := dapp.BuildCalls(starknet.ETHToken, addrA, big.NewInt(-1))
	assert.ErrorIs(t, err, starknet.ErrInvalidFelt)
}

func TestTransferHiddenWithoutAccount(t *testing.T) {
	p := newProvider(t, newFakeConnector(&fakeAccount{address: addrA}))
	tr := dapp.NewTransfer(p, "", nil)
	defer tr.Close()

	assert.Equal(t, dapp.TransferView{}, tr.View())
	assert.ErrorIs(t, tr.Submit(context.Background(), ""), dapp.ErrNoAccount)
}

func TestTransferVisibleWhenConnected(t *testing.T) {
	tr, _ := connected(t, &fakeAccount{address: addrA, hash: "0x1"})
	v := tr.View()
	assert.True(t, v.Visible)
	assert.Equal(t, starknet.ETHToken, v.Contract)
	assert.Equal(t, dapp.DemoAmount, v.Amount)
	assert.False(t, v.InFlight)
	assert.Empty(t, v.TxHash)
	assert.Empty(t, v.ExplorerURL)
}

func TestTransferSubmitsSelfTransferBatch(t *testing.T) {
	acc := &fakeAccount{address: addrA, hash: "0xabc"}
	tr, _ := connected(t, acc)

	require.NoError(t, tr.Submit(context.Background(), ""))

	batches := acc.Batches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, "approve", batches[0][0].Entrypoint)
	assert.Equal(t, "transfer", batches[0][1].Entrypoint)
	for _, c := range batches[0] {
		assert.Equal(t, starknet.ETHToken, c.ContractAddress)
		assert.Equal(t, addrA, c.Calldata[0])
		assert.Equal(t, "0x1c6bf52634000", c.Calldata[1])
	}

	v := tr.View()
	assert.Equal(t, "0xabc", v.TxHash)
	assert.Equal(t, "https://sepolia.starkscan.co/tx/0xabc", v.ExplorerURL)
	assert.False(t, v.InFlight)
}

func TestTransferCustomAmountAndToken(t *testing.T) {
	const token = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	acc := &fakeAccount{address: addrA, hash: "0x1"}
	fc := newFakeConnector(acc)
	p := newProvider(t, fc)
	require.NoError(t, p.Connect(context.Background(), fc))
	tr := dapp.NewTransfer(p, token, nil)
	defer tr.Close()

	require.NoError(t, tr.Submit(context.Background(), "0x10"))
	b := acc.Batches()[0]
	assert.Equal(t, token, b[0].ContractAddress)
	assert.Equal(t, []string{addrA, "0x10", "0x0"}, b[1].Calldata)
}

func TestTransferRejectsBadAmount(t *testing.T) {
	acc := &fakeAccount{address: addrA}
	tr, _ := connected(t, acc)
	assert.ErrorIs(t, tr.Submit(context.Background(), "0xzz"), starknet.ErrInvalidFelt)
	assert.Empty(t, acc.Batches())
}

func TestTransferSecondSubmitWhileInFlightIsIgnored(t *testing.T) {
	acc := &fakeAccount{address: addrA, hash: "0x1", gate: make(chan struct{})}
	tr, _ := connected(t, acc)

	done := make(chan error, 1)
	go func() { done <- tr.Submit(context.Background(), "") }()
	require.Eventually(t, func() bool { return tr.View().InFlight }, wait, time.Millisecond)

	assert.ErrorIs(t, tr.Submit(context.Background(), ""), dapp.ErrInFlight)
	assert.Len(t, acc.Batches(), 1)

	close(acc.gate)
	require.NoError(t, <-done)
	assert.Len(t, acc.Batches(), 1)
	assert.False(t, tr.View().InFlight)
}

func TestTransferClearsPreviousHashBeforeNewOne(t *testing.T) {
	acc := &fakeAccount{address: addrA, hash: "0x1"}
	tr, _ := connected(t, acc)
	require.NoError(t, tr.Submit(context.Background(), ""))
	require.Equal(t, "0x1", tr.View().TxHash)

	var mu sync.Mutex
	var seen []dapp.TransferView
	tr.OnChange(func() {
		mu.Lock()
		seen = append(seen, tr.View())
		mu.Unlock()
	})

	acc.hash = "0x2"
	require.NoError(t, tr.Submit(context.Background(), ""))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].InFlight)
	assert.Empty(t, seen[0].TxHash)
	assert.False(t, seen[1].InFlight)
	assert.Equal(t, "0x2", seen[1].TxHash)

	cleared := 0
	for _, v := range seen {
		if !v.InFlight {
			cleared++
		}
	}
	assert.Equal(t, 1, cleared)
}

func TestTransferFailureLogsAndKeepsNoHash(t *testing.T) {
	acc := &fakeAccount{address: addrA, err: errors.New("execution reverted")}
	tr, logs := connected(t, acc)

	err := tr.Submit(context.Background(), "")
	assert.ErrorContains(t, err, "execution reverted")

	v := tr.View()
	assert.False(t, v.InFlight)
	assert.Empty(t, v.TxHash)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "transfer submission failed", errs[0].Message)
	assert.Equal(t, addrA, errs[0].ContextMap()["account"])
}

func TestTransferMissingResultIsFailure(t *testing.T) {
	acc := &fakeAccount{address: addrA, noResult: true}
	tr, logs := connected(t, acc)

	err := tr.Submit(context.Background(), "")
	assert.ErrorContains(t, err, "no transaction hash")

	done := make(chan dapp.TransferView, 1)
	go func() { done <- tr.View() }()
	select {
	case v := <-done:
		assert.False(t, v.InFlight)
		assert.Empty(t, v.TxHash)
	case <-time.After(wait):
		t.Fatal("View blocked after a submission without result")
	}
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
}

func TestTransferReleasesInFlightWhenAccountPanics(t *testing.T) {
	acc := &fakeAccount{address: addrA, panics: "bridge blew up"}
	tr, _ := connected(t, acc)

	assert.PanicsWithValue(t, "bridge blew up", func() {
		_ = tr.Submit(context.Background(), "")
	})
	assert.False(t, tr.View().InFlight)

	acc.panics = ""
	acc.hash = "0x3"
	require.NoError(t, tr.Submit(context.Background(), ""))
	assert.Equal(t, "0x3", tr.View().TxHash)
}

func TestTransferHiddenAfterDisconnect(t *testing.T) {
	acc := &fakeAccount{address: addrA, hash: "0x1"}
	fc := newFakeConnector(acc)
	p := newProvider(t, fc)
	require.NoError(t, p.Connect(context.Background(), fc))
	tr := dapp.NewTransfer(p, "", nil)
	defer tr.Close()
	require.NoError(t, tr.Submit(context.Background(), ""))

	notified := 0
	tr.OnChange(func() { notified++ })
	require.NoError(t, p.Disconnect(context.Background()))

	assert.Equal(t, 1, notified)
	assert.Equal(t, dapp.TransferView{}, tr.View())
}
