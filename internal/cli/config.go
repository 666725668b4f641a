package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/smartcube/internal/config"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

var (
	initKey   string
	initMAC   string
	initMode  string
	initForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write a configuration file with defaults and the cube's key and MAC.

The key is the 16-byte AES key of the QiYi protocol as 32 hex digits.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().StringVar(&initKey, "key", "", "Cube AES key (32 hex digits)")
	configInitCmd.Flags().StringVar(&initMAC, "mac", "", "Cube MAC address (AA:BB:CC:DD:EE:FF)")
	configInitCmd.Flags().StringVar(&initMode, "mode", "cfop", "Default training mode (cfop, f2l, oll)")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	c := config.DefaultConfig()
	if initKey != "" {
		if _, err := protocol.ParseKey(initKey); err != nil {
			return err
		}
		c.Device.Key = initKey
	}
	if initMAC != "" {
		if _, err := protocol.HelloPayload(initMAC); err != nil {
			return err
		}
		c.Device.MAC = initMAC
	}
	c.Training.Mode = initMode
	if err := c.Validate(); err != nil {
		return err
	}

	if err := c.Save(cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.Device.Key != "" {
		shown.Device.Key = "********"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfgPath, data)
	return nil
}
