package commandmanager

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// SSHKeyManager supplies the private-key signers used for public-key
// authentication. getSSHConfig picks an implementation from the credentials:
// a passphrase selects file-based keys, otherwise the running agent is asked.
type SSHKeyManager interface {
	ReadPrivateKeys(keyPassphrase string) ([]ssh.Signer, error)
}

// AgentSSHKeyManager obtains signers from the SSH agent named by
// SSH_AUTH_SOCK.
type AgentSSHKeyManager struct{}

// FileSSHKeyManager parses the id_* private keys under ~/.ssh, decrypting
// them with the given passphrase.
type FileSSHKeyManager struct{}

func (km AgentSSHKeyManager) ReadPrivateKeys(_ string) ([]ssh.Signer, error) {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, fmt.Errorf("SSH_AUTH_SOCK not set")
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("could not connect to SSH agent: %w", err)
	}
	defer conn.Close()

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil, fmt.Errorf("could not get signers from SSH agent: %w", err)
	}
	return signers, nil
}

func (km FileSSHKeyManager) ReadPrivateKeys(keyPassphrase string) ([]ssh.Signer, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not locate home directory: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(home, ".ssh", "id_*"))
	if err != nil {
		return nil, err
	}

	var signers []ssh.Signer
	for _, file := range files {
		if strings.HasSuffix(file, ".pub") {
			continue
		}

		keyBytes, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		signer, err := parsePrivateKey(keyBytes, keyPassphrase)
		if err != nil {
			// Unparseable or wrong-passphrase key, try the next one.
			continue
		}
		signers = append(signers, signer)
	}

	if len(signers) == 0 {
		return nil, fmt.Errorf("no usable private keys under %s", filepath.Join(home, ".ssh"))
	}
	return signers, nil
}

func parsePrivateKey(keyBytes []byte, keyPassphrase string) (ssh.Signer, error) {
	if keyPassphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(keyPassphrase))
	}
	return ssh.ParsePrivateKey(keyBytes)
}
