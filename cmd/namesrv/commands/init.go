package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketmq-go/namesrv/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample namesrv configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/namesrv/config.yaml. Use --config to specify a custom path.

Examples:
  # Initialize with default location
  namesrv init

  # Initialize with custom path
  namesrv init --config /etc/namesrv/config.yaml

  # Force overwrite an existing config file
  namesrv init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	cfg := config.GetDefaultConfig()
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: namesrv start")
	fmt.Printf("  3. Or specify custom config: namesrv start --config %s\n", configPath)
	return nil
}
