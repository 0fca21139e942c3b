package ui

import (
	"testing"

	"github.com/Mohsinsiddi/w3stark/internal/dapp"
	"github.com/stretchr/testify/assert"
)

const testAddr = "0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0.005 ETH", FormatEther(dapp.DemoAmount))
	assert.Equal(t, "1 ETH", FormatEther("1000000000000000000"))
	assert.Equal(t, "0 ETH", FormatEther("0x0"))
	assert.Equal(t, "nope", FormatEther("nope"))
}

func TestRenderConnectionWithoutAddress(t *testing.T) {
	out := RenderConnection(dapp.ConnectionView{}, false)
	assert.Contains(t, out, "[ c ] Connect")
	assert.NotContains(t, out, "Disconnect")
}

func TestRenderConnectionConnecting(t *testing.T) {
	out := RenderConnection(dapp.ConnectionView{}, true)
	assert.Contains(t, out, "Connecting…")
}

func TestRenderConnectionWithAddress(t *testing.T) {
	out := RenderConnection(dapp.ConnectionView{Address: testAddr}, false)
	assert.Contains(t, out, testAddr)
	assert.Contains(t, out, "[ d ] Disconnect")
	assert.NotContains(t, out, "Username")
	assert.NotContains(t, out, "[ c ]")
}

func TestRenderConnectionWithUsername(t *testing.T) {
	out := RenderConnection(dapp.ConnectionView{Address: testAddr, Username: "alice.stark"}, false)
	assert.Contains(t, out, "alice.stark")
	assert.Contains(t, out, testAddr)
}

func TestRenderTransferHidden(t *testing.T) {
	assert.Empty(t, RenderTransfer(dapp.TransferView{}))
}

func TestRenderTransferIdle(t *testing.T) {
	out := RenderTransfer(dapp.TransferView{Visible: true, Contract: testAddr, Amount: dapp.DemoAmount})
	assert.Contains(t, out, testAddr)
	assert.Contains(t, out, "0.005 ETH")
	assert.NotContains(t, out, "Transaction")
}

func TestRenderTransferInFlight(t *testing.T) {
	out := RenderTransfer(dapp.TransferView{Visible: true, Contract: testAddr, Amount: dapp.DemoAmount, InFlight: true})
	assert.Contains(t, out, "Submitting…")
	assert.NotContains(t, out, "0.005 ETH")
}

func TestRenderTransferWithHash(t *testing.T) {
	out := RenderTransfer(dapp.TransferView{
		Visible:     true,
		Contract:    testAddr,
		Amount:      dapp.DemoAmount,
		TxHash:      "0xfeed",
		ExplorerURL: "https://sepolia.starkscan.co/tx/0xfeed",
	})
	assert.Contains(t, out, "0xfeed")
	assert.Contains(t, out, "https://sepolia.starkscan.co/tx/0xfeed")
}
