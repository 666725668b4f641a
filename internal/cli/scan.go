package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube"
)

var scanTimeout time.Duration

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for QiYi cubes",
	Long: `Scan for nearby QiYi smart cubes and remember the strongest one.

Make sure the cube is awake and not connected to a phone app.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Second, "How long to scan")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for %s devices...\n", cfg.Device.NamePrefix)

	devices, err := smartcube.Scan(cmd.Context(), scanTimeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No cubes found.")
		return nil
	}

	best := devices[0]
	for _, d := range devices {
		fmt.Printf("  %-24s %-20s %4d dBm\n", d.Name, d.Address, d.RSSI)
		if d.RSSI > best.RSSI {
			best = d
		}
	}

	state, err := openStateFile()
	if err != nil {
		return err
	}
	if err := state.SetLastDevice(best.Address, best.Name); err != nil {
		return err
	}
	logger.Info("device remembered", zap.String("name", best.Name), zap.String("address", best.Address))
	fmt.Printf("\nUsing %s next time.\n", best.Name)
	if cfg.Device.MAC == "" {
		fmt.Println("Set the cube's MAC with 'smartcube config init --mac' before training.")
	}
	return nil
}
