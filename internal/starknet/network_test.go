package starknet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkByName(t *testing.T) {
	for _, name := range []string{"sepolia", "testnet", "SN_SEPOLIA", " Sepolia "} {
		n, err := NetworkByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, "SN_SEPOLIA", n.ChainID)
	}

	n, err := NetworkByName("mainnet")
	require.NoError(t, err)
	assert.False(t, n.Testnet)

	_, err = NetworkByName("goerli")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestNetworksHaveRPCsAndExplorers(t *testing.T) {
	for _, n := range Networks() {
		assert.NotEmpty(t, n.RPCs, n.Name)
		assert.NotEmpty(t, n.Starkscan, n.Name)
		assert.NotEmpty(t, n.Voyager, n.Name)
		assert.NotEmpty(t, n.StarknetID, n.Name)
	}
	assert.Equal(t, "0x534e5f5345504f4c4941", Sepolia.ChainIDFelt())
}

func TestExplorerLinks(t *testing.T) {
	ex, err := ExplorerByName("", Sepolia)
	require.NoError(t, err)
	assert.Equal(t, "starkscan", ex.Name())
	assert.Equal(t, "https://sepolia.starkscan.co/tx/0xabc", ex.Transaction("0xabc"))
	assert.Equal(t, "https://sepolia.starkscan.co/contract/"+ETHToken, ex.Contract(ETHToken))

	ex, err = ExplorerByName("voyager", Mainnet)
	require.NoError(t, err)
	assert.Equal(t, "https://voyager.online/tx/0xabc", ex.Transaction("0xabc"))

	trailing := Starkscan{BaseURL: "https://example.com/"}
	assert.Equal(t, "https://example.com/tx/0x1", trailing.Transaction("0x1"))

	_, err = ExplorerByName("etherscan", Sepolia)
	assert.Error(t, err)
}
