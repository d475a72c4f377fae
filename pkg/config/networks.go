package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Network represents a supported Bitcoin SV network configuration
type Network struct {
	Name          string `yaml:"name"`
	ExplorerTxURL string `yaml:"explorer_tx_url"` // %s is replaced by the tx hash
	UnitName      string `yaml:"unit_name"`
	UnitDecimals  int    `yaml:"unit_decimals"`
}

// NetworksConfig holds all supported networks
type NetworksConfig struct {
	Networks []Network `yaml:"networks"`

	// Lookup map for fast access
	byName map[string]*Network
}

// LoadNetworksConfig loads network configuration from a YAML file
func LoadNetworksConfig(path string) (*NetworksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks config file: %w", err)
	}

	var config NetworksConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse networks config: %w", err)
	}

	config.byName = make(map[string]*Network, len(config.Networks))
	for i := range config.Networks {
		network := &config.Networks[i]
		config.byName[network.Name] = network
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the networks configuration
func (c *NetworksConfig) Validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("at least one network must be configured")
	}

	seen := make(map[string]bool)
	for _, network := range c.Networks {
		if network.Name == "" {
			return fmt.Errorf("network name is required")
		}
		if network.ExplorerTxURL != "" && !strings.Contains(network.ExplorerTxURL, "%s") {
			return fmt.Errorf("explorer_tx_url for network %s must contain %%s", network.Name)
		}
		if network.UnitName == "" {
			return fmt.Errorf("unit_name is required for network %s", network.Name)
		}
		if network.UnitDecimals <= 0 {
			return fmt.Errorf("unit_decimals must be positive for network %s", network.Name)
		}
		if seen[network.Name] {
			return fmt.Errorf("duplicate network %s", network.Name)
		}
		seen[network.Name] = true
	}

	return nil
}

// GetNetwork returns the configuration for a named network
func (c *NetworksConfig) GetNetwork(name string) (*Network, bool) {
	network, ok := c.byName[name]
	return network, ok
}

// ExplorerTxLink builds a block-explorer link for a transaction, or an empty
// string when the network has no explorer configured.
func (c *NetworksConfig) ExplorerTxLink(name, txHash string) string {
	network, ok := c.byName[name]
	if !ok || network.ExplorerTxURL == "" {
		return ""
	}
	return fmt.Sprintf(network.ExplorerTxURL, txHash)
}

// IsSupported checks if a network name is configured
func (c *NetworksConfig) IsSupported(name string) bool {
	_, ok := c.byName[name]
	return ok
}
