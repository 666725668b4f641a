package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <moves>",
	Short: "Print the frames a cube would send for a move sequence",
	Long: `Print the encrypted notification frames a solved cube would send while
the given moves are turned, one hex frame per line, starting with the
hello reply. The output can be piped into 'smartcube decode'.`,
	Example: `  smartcube simulate "R U R' U'" | smartcube decode`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	key, err := cubeKey()
	if err != nil {
		return err
	}
	moves, err := smartcube.ParseMoves(args[0])
	if err != nil {
		return err
	}

	sim := simulator.New(key, 0)
	hello, err := sim.Hello()
	if err != nil {
		return err
	}
	frames, err := sim.Play(moves)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range append([][]byte{hello}, frames...) {
		fmt.Fprintln(out, strings.ToUpper(hex.EncodeToString(f)))
	}
	return nil
}
