package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InventoryHost is one target machine in the inventory file.
type InventoryHost struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
}

// Inventory is the YAML hosts file consumed by --inventory.
type Inventory struct {
	Hosts []InventoryHost `yaml:"hosts"`
}

// LoadInventory parses the inventory file at path.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var inventory Inventory
	if err := yaml.Unmarshal(data, &inventory); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	if len(inventory.Hosts) == 0 {
		return nil, fmt.Errorf("inventory %s names no hosts", path)
	}
	for i, host := range inventory.Hosts {
		if host.Hostname == "" {
			return nil, fmt.Errorf("inventory %s: host entry %d has no hostname", path, i)
		}
	}
	return &inventory, nil
}
