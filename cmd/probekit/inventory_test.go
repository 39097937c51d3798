package main

import (
	"os"
	"testing"
)

func TestLoadInventory(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "hosts*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	content := `hosts:
  - hostname: 192.0.2.10
    port: 22
    user: root
  - hostname: peer.example.com
    user: tester
`
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	inventory, err := LoadInventory(tmpFile.Name())
	if err != nil {
		t.Fatalf("Error loading inventory: %v", err)
	}

	if len(inventory.Hosts) != 2 {
		t.Fatalf("Expected 2 hosts, got %d", len(inventory.Hosts))
	}
	if inventory.Hosts[0].Hostname != "192.0.2.10" || inventory.Hosts[0].Port != 22 {
		t.Errorf("Unexpected first host: %+v", inventory.Hosts[0])
	}
	if inventory.Hosts[1].User != "tester" {
		t.Errorf("Unexpected second host: %+v", inventory.Hosts[1])
	}
}

func TestLoadInventoryMissingHostname(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "hosts*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte("hosts:\n  - user: root\n")); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if _, err := LoadInventory(tmpFile.Name()); err == nil {
		t.Errorf("Expected an error for a host entry without hostname")
	}
}

func TestLoadInventoryEmpty(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "hosts*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := LoadInventory(tmpFile.Name()); err == nil {
		t.Errorf("Expected an error for an empty inventory")
	}
}
