package starknet

import (
	"errors"
	"strings"
)

// ErrNetworkNotFound is returned when a network name is not registered.
var ErrNetworkNotFound = errors.New("network not found")

// ETHToken is the ETH fee token; the address is identical on mainnet and Sepolia.
const ETHToken = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"

// Network holds the metadata for one Starknet network.
type Network struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	ChainID     string   `json:"chain_id"` // short string, e.g. "SN_SEPOLIA"
	Testnet     bool     `json:"testnet"`
	RPCs        []string `json:"rpcs"`
	Starkscan   string   `json:"starkscan"`
	Voyager     string   `json:"voyager"`
	StarknetID  string   `json:"starknet_id_api"`
	FaucetURL   string   `json:"faucet_url,omitempty"`
}

// Sepolia is the public Starknet testnet.
var Sepolia = Network{
	Name:        "sepolia",
	DisplayName: "Starknet Sepolia",
	ChainID:     "SN_SEPOLIA",
	Testnet:     true,
	RPCs: []string{
		"https://api.cartridge.gg/x/starknet/sepolia",
		"https://starknet-sepolia.public.blastapi.io/rpc/v0_7",
		"https://free-rpc.nethermind.io/sepolia-juno/v0_7",
	},
	Starkscan:  "https://sepolia.starkscan.co",
	Voyager:    "https://sepolia.voyager.online",
	StarknetID: "https://sepolia.api.starknet.id",
	FaucetURL:  "https://starknet-faucet.vercel.app",
}

// Mainnet is Starknet mainnet.
var Mainnet = Network{
	Name:        "mainnet",
	DisplayName: "Starknet",
	ChainID:     "SN_MAIN",
	RPCs: []string{
		"https://api.cartridge.gg/x/starknet/mainnet",
		"https://starknet-mainnet.public.blastapi.io/rpc/v0_7",
		"https://free-rpc.nethermind.io/mainnet-juno/v0_7",
	},
	Starkscan:  "https://starkscan.co",
	Voyager:    "https://voyager.online",
	StarknetID: "https://api.starknet.id",
}

// Networks lists every known network, testnet first.
func Networks() []Network {
	return []Network{Sepolia, Mainnet}
}

// NetworkByName finds a network by slug. "testnet" aliases Sepolia.
func NetworkByName(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sepolia", "testnet", "sn_sepolia":
		return Sepolia, nil
	case "mainnet", "main", "sn_main":
		return Mainnet, nil
	}
	return Network{}, ErrNetworkNotFound
}

// ChainIDFelt returns the chain id encoded as a felt.
func (n Network) ChainIDFelt() string {
	felt, _ := EncodeShortString(n.ChainID)
	return felt
}
