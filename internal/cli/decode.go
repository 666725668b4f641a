package cli

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/smartcube"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [frame-hex...]",
	Short: "Decrypt and decode captured notifications",
	Long: `Decrypt captured notification frames with the configured key and print
their content. Frames are read from the arguments, or one per line from
stdin. Turns are only printed once across frames, as during training.`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	key, err := cubeKey()
	if err != nil {
		return err
	}

	dec := smartcube.NewDecoder()
	out := cmd.OutOrStdout()
	if len(args) > 0 {
		for _, a := range args {
			decodeLine(out, dec, key, a)
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		decodeLine(out, dec, key, line)
	}
	return scanner.Err()
}

func decodeLine(out io.Writer, dec *smartcube.Decoder, key []byte, line string) {
	frame, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
	if err != nil {
		fmt.Fprintf(out, "invalid hex: %v\n", err)
		return
	}
	msg, err := protocol.Decrypt(frame, key)
	if err != nil {
		fmt.Fprintf(out, "dropped: %v\n", err)
		return
	}
	report, err := dec.Decode(msg)
	if err != nil {
		fmt.Fprintf(out, "%-12s ts=%-8d dropped: %v\n", protocol.OpcodeName(msg.Opcode), msg.Timestamp, err)
		return
	}

	fmt.Fprintf(out, "%-12s ts=%-8d", protocol.OpcodeName(report.Opcode), report.Timestamp)
	if report.Facelets != "" {
		fmt.Fprintf(out, " battery=%d%%", report.Battery)
	}
	if len(report.Moves) > 0 {
		var moves []string
		for _, m := range report.Moves {
			moves = append(moves, fmt.Sprintf("%s@%d", m.Move, m.Timestamp))
		}
		fmt.Fprintf(out, " moves=%s", strings.Join(moves, " "))
	}
	fmt.Fprintln(out)
	if report.Facelets != "" && verbose {
		fmt.Fprintln(out, report.Facelets.Net())
	}
	if msg.NeedsAck() {
		fmt.Fprintf(out, "  ack: % X\n", msg.Ack())
	}
}
