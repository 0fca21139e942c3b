package config

import "time"

// Timeouts shared by the commands.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark
	ConnectTimeout   = 2 * time.Minute  // user approving the connection in the wallet
	TxConfirmTimeout = 3 * time.Minute  // invoke acceptance wait
)

// EnvDir overrides the config directory.
const EnvDir = "W3STARK_CONFIG_DIR"
