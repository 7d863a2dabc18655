// Package config loads the node-level configuration file (network, storage
// and logging settings) that sits alongside the domain configuration in
// core.Config. Version: v0.2.0.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"archivechain/pkg/utils"
)

const Version = "v0.2.0"

// NodeConfig mirrors a node's YAML configuration file. Unlike
// core.Config (consensus/replication/gas constants shared network-wide),
// this is per-node operational configuration.
type NodeConfig struct {
	Network struct {
		ID             string   `yaml:"id"`
		ListenAddr     string   `yaml:"listen_addr"`
		MaxPeers       int      `yaml:"max_peers"`
		BootstrapPeers []string `yaml:"bootstrap_peers"`
		DiscoveryTag   string   `yaml:"discovery_tag"`
	} `yaml:"network"`

	Role struct {
		Kind   string `yaml:"kind"` // full-archive | light-storage | relay | gateway
		Region string `yaml:"region"`
	} `yaml:"role"`

	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Load reads and parses a node configuration file. It does not consult the
// environment or merge layered files: one file, one immutable result,
// per SPEC_FULL.md's no-hot-reload design note.
func Load(path string) (*NodeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.Wrap(err, "read config file")
	}
	var cfg NodeConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, utils.Wrap(err, "parse config file")
	}
	if cfg.Network.MaxPeers == 0 {
		cfg.Network.MaxPeers = 64
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return &cfg, nil
}
