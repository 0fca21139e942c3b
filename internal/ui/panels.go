package ui

import (
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3stark/internal/dapp"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
)

var weiPerEther = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// FormatEther renders a wei amount (hex or decimal felt) in ETH without
// trailing zeros. Unparseable input is returned unchanged.
func FormatEther(amount string) string {
	v, err := starknet.ParseFelt(amount)
	if err != nil {
		return amount
	}
	s := new(big.Rat).Quo(new(big.Rat).SetInt(v), weiPerEther).FloatString(18)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " ETH"
}

// RenderConnection draws the connection panel: a connect button while no
// account is present, otherwise the account, its username once known and a
// disconnect button.
func RenderConnection(v dapp.ConnectionView, connecting bool) string {
	if v.Address == "" {
		label := "Connect"
		if connecting {
			label = "Connecting…"
		}
		return StyleBorder.Render(Meta("No wallet connected") + "\n\n" + Button("c", label, !connecting))
	}

	pairs := [][2]string{{"Account", Addr(v.Address)}}
	if v.Username != "" {
		pairs = append(pairs, [2]string{"Username", Val(v.Username)})
	}
	return KeyValueBlock("Wallet", pairs) + "\n" + Button("d", "Disconnect", true)
}

// RenderTransfer draws the transfer panel. It renders nothing unless an
// account is connected.
func RenderTransfer(v dapp.TransferView) string {
	if !v.Visible {
		return ""
	}

	pairs := [][2]string{{"Contract", Addr(v.Contract)}}
	if v.TxHash != "" {
		pairs = append(pairs, [2]string{"Transaction", Addr(v.TxHash)})
		if v.ExplorerURL != "" {
			pairs = append(pairs, [2]string{"Explorer", Meta(v.ExplorerURL)})
		}
	}

	label := "Transfer " + FormatEther(v.Amount) + " to self"
	if v.InFlight {
		label = "Submitting…"
	}
	return KeyValueBlock("Approve + transfer", pairs) + "\n" + Button("t", label, !v.InFlight)
}
