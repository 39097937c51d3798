package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/probeops/probekit/logger"
	"github.com/probeops/probekit/probekit/network"
)

var (
	log = logrus.New()

	hostnameFlag       string
	portFlag           int
	usernameFlag       string
	passwordPrompt     bool
	keyPassPrompt      bool
	sudoPasswordPrompt bool
	inventoryFlag      string
	debugFlag          bool
)

var rootCmd = &cobra.Command{
	Use:   "probekit",
	Short: "Inspect and configure network interfaces and disks on test hosts",
	Long: `probekit drives the host-utility layer used by automated tests: it
configures network interfaces, checks links and MTUs, and inspects disks and
filesystems on the local machine or over SSH.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hostnameFlag, "host", "localhost", "Hostname to operate on")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", 22, "SSH port for remote hosts")
	rootCmd.PersistentFlags().StringVar(&usernameFlag, "username", "", "Username for the SSH connection")
	rootCmd.PersistentFlags().BoolVar(&passwordPrompt, "password", false, "Prompt for an SSH password")
	rootCmd.PersistentFlags().BoolVar(&keyPassPrompt, "keypass", false, "Prompt for the SSH key passphrase")
	rootCmd.PersistentFlags().BoolVar(&sudoPasswordPrompt, "sudo-password", false, "Prompt for the sudo password")
	rootCmd.PersistentFlags().StringVar(&inventoryFlag, "inventory", "", "YAML inventory of hosts to run against")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug log level")
}

func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}

func hostOptions(user string) ([]network.HostOption, error) {
	options := []network.HostOption{
		network.WithPort(portFlag),
		network.WithHostLogger(logger.New()),
	}
	if user != "" {
		options = append(options, network.WithUser(user))
	}
	if passwordPrompt {
		password, err := promptSecret("SSH password: ")
		if err != nil {
			return nil, err
		}
		options = append(options, network.WithPassword(password))
	}
	if keyPassPrompt {
		passphrase, err := promptSecret("Key passphrase: ")
		if err != nil {
			return nil, err
		}
		options = append(options, network.WithKeyPassphrase(passphrase))
	}
	if sudoPasswordPrompt {
		password, err := promptSecret("Sudo password: ")
		if err != nil {
			return nil, err
		}
		options = append(options, network.WithSudoPassword(password))
	}
	return options, nil
}

// forEachHost runs action against the --host target, or against every
// inventory host when --inventory is given. Per-host failures are collected
// rather than aborting the sweep.
func forEachHost(ctx context.Context, action func(*network.Host) error) error {
	type target struct {
		hostname string
		port     int
		user     string
	}

	targets := []target{{hostname: hostnameFlag, port: portFlag, user: usernameFlag}}
	if inventoryFlag != "" {
		inventory, err := LoadInventory(inventoryFlag)
		if err != nil {
			return err
		}
		targets = targets[:0]
		for _, h := range inventory.Hosts {
			targets = append(targets, target{hostname: h.Hostname, port: h.Port, user: h.User})
		}
	}

	var result *multierror.Error
	for _, tgt := range targets {
		options, err := hostOptions(tgt.user)
		if err != nil {
			return err
		}
		if tgt.port != 0 {
			options = append(options, network.WithPort(tgt.port))
		}

		host, err := network.NewHost(ctx, tgt.hostname, options...)
		if err != nil {
			log.WithField("host", tgt.hostname).Error(err)
			result = multierror.Append(result, err)
			continue
		}

		if err := action(host); err != nil {
			log.WithField("host", tgt.hostname).Error(err)
			result = multierror.Append(result, err)
		}
		if err := host.Close(); err != nil {
			log.WithField("host", tgt.hostname).Warn(err)
		}
	}
	return result.ErrorOrNil()
}
