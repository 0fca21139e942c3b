package config

// Config holds all w3stark configuration.
type Config struct {
	Network      string              `json:"network"`
	RPCAlgorithm string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs   map[string][]string `json:"custom_rpcs"`   // network name -> extra endpoints
	Explorer     string              `json:"explorer"`      // "starkscan" | "voyager"
	WalletBridge string              `json:"wallet_bridge"`
	Token        string              `json:"token"`
	AutoConnect  bool                `json:"auto_connect"`
	LogLevel     string              `json:"log_level"`

	// internal: config dir path used for Save()
	configDir string
}
