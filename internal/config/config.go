package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3stark/internal/connector"
	"github.com/Mohsinsiddi/w3stark/internal/rpc"
	"github.com/Mohsinsiddi/w3stark/internal/starknet"
)

const (
	defaultNetwork   = "sepolia"
	defaultAlgorithm = "fastest"
	defaultExplorer  = "starkscan"
	defaultLogLevel  = "info"

	configFile = "config.json"
)

// ErrUnknownKey is returned by Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// DefaultDir is $W3STARK_CONFIG_DIR or ~/.w3stark.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3stark"), nil
}

// Load reads config from dir (or creates defaults). dir defaults to DefaultDir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ResolveNetwork returns the configured network, or override when non-empty.
func (c *Config) ResolveNetwork(override string) (starknet.Network, error) {
	if override != "" {
		return starknet.NetworkByName(override)
	}
	return starknet.NetworkByName(c.Network)
}

// TokenAddress is the token the transfer demo operates on.
func (c *Config) TokenAddress() string {
	if c.Token == "" {
		return starknet.ETHToken
	}
	return c.Token
}

// BridgeURL is where the wallet bridge listens.
func (c *Config) BridgeURL() string {
	if c.WalletBridge == "" {
		return connector.DefaultBridgeURL
	}
	return c.WalletBridge
}

// Keys lists the settable keys in display order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the display value of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "network":
		return c.Network, nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "explorer":
		return c.Explorer, nil
	case "wallet_bridge":
		return c.BridgeURL(), nil
	case "token":
		return c.TokenAddress(), nil
	case "auto_connect":
		return strconv.FormatBool(c.AutoConnect), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates and assigns value to key. Call Save to persist.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return set(c, strings.TrimSpace(value))
}

var setters = map[string]func(*Config, string) error{
	"network": func(c *Config, v string) error {
		n, err := starknet.NetworkByName(v)
		if err != nil {
			return err
		}
		c.Network = n.Name
		return nil
	},
	"rpc_algorithm": func(c *Config, v string) error {
		switch rpc.Algorithm(v) {
		case rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover:
			c.RPCAlgorithm = v
			return nil
		}
		return fmt.Errorf("unknown rpc algorithm %q (fastest, round-robin, failover)", v)
	},
	"explorer": func(c *Config, v string) error {
		if _, err := starknet.ExplorerByName(v, starknet.Sepolia); err != nil {
			return err
		}
		c.Explorer = strings.ToLower(v)
		return nil
	},
	"wallet_bridge": func(c *Config, v string) error {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("wallet bridge must be an http(s) URL, got %q", v)
		}
		c.WalletBridge = v
		return nil
	},
	"token": func(c *Config, v string) error {
		if err := starknet.ValidateAddress(v); err != nil {
			return fmt.Errorf("token: %w", err)
		}
		c.Token, _ = starknet.NormalizeAddress(v)
		return nil
	},
	"auto_connect": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("auto_connect: %w", err)
		}
		c.AutoConnect = b
		return nil
	},
	"log_level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
			return nil
		}
		return fmt.Errorf("unknown log level %q (debug, info, warn, error)", v)
	},
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:      defaultNetwork,
		RPCAlgorithm: defaultAlgorithm,
		Explorer:     defaultExplorer,
		AutoConnect:  true,
		LogLevel:     defaultLogLevel,
		CustomRPCs:   make(map[string][]string),
		configDir:    dir,
	}
}
