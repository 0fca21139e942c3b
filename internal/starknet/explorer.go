package starknet

import (
	"fmt"
	"strings"
)

// Explorer builds block-explorer links.
type Explorer interface {
	Name() string
	Transaction(hash string) string
	Contract(address string) string
}

// Starkscan links to starkscan.co.
type Starkscan struct {
	BaseURL string
}

func (s Starkscan) Name() string { return "starkscan" }

func (s Starkscan) Transaction(hash string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/tx/" + hash
}

func (s Starkscan) Contract(address string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/contract/" + address
}

// Voyager links to voyager.online.
type Voyager struct {
	BaseURL string
}

func (v Voyager) Name() string { return "voyager" }

func (v Voyager) Transaction(hash string) string {
	return strings.TrimRight(v.BaseURL, "/") + "/tx/" + hash
}

func (v Voyager) Contract(address string) string {
	return strings.TrimRight(v.BaseURL, "/") + "/contract/" + address
}

// ExplorerByName returns the named explorer for a network. An empty name
// selects starkscan.
func ExplorerByName(name string, n Network) (Explorer, error) {
	switch strings.ToLower(name) {
	case "", "starkscan":
		return Starkscan{BaseURL: n.Starkscan}, nil
	case "voyager":
		return Voyager{BaseURL: n.Voyager}, nil
	}
	return nil, fmt.Errorf("unknown explorer %q (starkscan, voyager)", name)
}
