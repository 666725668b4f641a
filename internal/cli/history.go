package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/smartcube/internal/analysis"
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

// statsWindow is how many recent solves history stats covers.
const statsWindow = 100

var (
	historyMode  string
	historyLimit int
	showLast     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored solves",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [solve-id]",
	Short: "Show a solve with its splits and turns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryShow,
}

var historyBestCmd = &cobra.Command{
	Use:   "best",
	Short: "Show the fastest solve of a mode",
	RunE:  runHistoryBest,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show best, mean and rolling averages",
	RunE:  runHistoryStats,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <solve-id>",
	Short: "Delete a stored solve",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyMode, "mode", "m", "", "Training mode (cfop, f2l, oll)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of solves to list")
	historyShowCmd.Flags().BoolVar(&showLast, "last", false, "Show the last stored solve")

	historyCmd.AddCommand(historyShowCmd, historyBestCmd, historyStatsCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func withRepo(fn func(repo *storage.SolveRepository) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(storage.NewSolveRepository(db))
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withRepo(func(repo *storage.SolveRepository) error {
		solves, err := repo.List(cmd.Context(), historyMode, historyLimit)
		if err != nil {
			return err
		}
		if len(solves) == 0 {
			fmt.Println("No solves recorded yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-36s  %-5s  %-16s  %9s  %5s\n", "ID", "MODE", "STARTED", "TIME", "MOVES")
		for _, s := range solves {
			fmt.Fprintf(out, "%-36s  %-5s  %-16s  %9s  %5d\n",
				s.SolveID, s.Mode, s.StartedAt.Local().Format("2006-01-02 15:04"),
				formatDuration(s.Duration), s.MoveCount)
		}
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	var id string
	switch {
	case len(args) == 1:
		id = args[0]
	case showLast:
		state, err := openStateFile()
		if err != nil {
			return err
		}
		id = state.State().LastSolveID
		if id == "" {
			return fmt.Errorf("no solve recorded yet")
		}
	default:
		return fmt.Errorf("give a solve ID or --last")
	}

	return withRepo(func(repo *storage.SolveRepository) error {
		detail, err := repo.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printSolve(cmd.OutOrStdout(), detail)
		return nil
	})
}

func runHistoryBest(cmd *cobra.Command, args []string) error {
	mode := historyMode
	if mode == "" {
		mode = cfg.Training.Mode
	}
	return withRepo(func(repo *storage.SolveRepository) error {
		best, err := repo.Best(cmd.Context(), mode)
		if err != nil {
			return err
		}
		detail, err := repo.Get(cmd.Context(), best.SolveID)
		if err != nil {
			return err
		}
		printSolve(cmd.OutOrStdout(), detail)
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	mode := historyMode
	if mode == "" {
		mode = cfg.Training.Mode
	}
	return withRepo(func(repo *storage.SolveRepository) error {
		solves, err := repo.List(cmd.Context(), mode, statsWindow)
		if err != nil {
			return err
		}
		a := analysis.ComputeAverages(solves)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mode:   %s (%d solves)\n", mode, a.Count)
		if a.Count == 0 {
			return nil
		}
		fmt.Fprintf(out, "Best:   %s\n", formatDuration(a.Best))
		fmt.Fprintf(out, "Worst:  %s\n", formatDuration(a.Worst))
		fmt.Fprintf(out, "Mean:   %s\n", formatDuration(a.Mean))
		if a.Ao5 > 0 {
			fmt.Fprintf(out, "Ao5:    %s\n", formatDuration(a.Ao5))
		}
		if a.Ao12 > 0 {
			fmt.Fprintf(out, "Ao12:   %s\n", formatDuration(a.Ao12))
		}
		return nil
	})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	return withRepo(func(repo *storage.SolveRepository) error {
		if err := repo.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

func printSolve(out io.Writer, d *storage.SolveDetail) {
	fmt.Fprintf(out, "Solve:    %s\n", d.SolveID)
	fmt.Fprintf(out, "Mode:     %s\n", d.Mode)
	if d.CaseIndex >= 0 {
		fmt.Fprintf(out, "Case:     %d\n", d.CaseIndex)
	}
	fmt.Fprintf(out, "Scramble: %s\n", d.Scramble)
	if d.CrossFace != "" {
		fmt.Fprintf(out, "Cross:    %s\n", d.CrossFace)
	}
	fmt.Fprintf(out, "Started:  %s\n", d.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Time:     %s (%d moves)\n", formatDuration(d.Duration), d.MoveCount)
	if d.DeviceName != "" {
		fmt.Fprintf(out, "Device:   %s\n", d.DeviceName)
	}

	summary := analysis.Summarize(d)
	fmt.Fprintf(out, "TPS:      %.2f (longest pause %s, %d pauses)\n",
		summary.TPSOverall, formatDuration(time.Duration(summary.LongestPauseMs)*time.Millisecond), summary.PauseCount)

	if len(summary.PhaseStats) > 0 {
		fmt.Fprintln(out, "\nSplits:")
		for i, p := range summary.PhaseStats {
			fmt.Fprintf(out, "  %2d  %-14s %9s  (+%s, %d moves, %.2f tps)\n",
				i+1, p.Event,
				formatDuration(time.Duration(p.EndMs)*time.Millisecond),
				formatDuration(time.Duration(p.DurationMs)*time.Millisecond),
				p.MoveCount, p.TPS)
		}
	}

	if len(d.Moves) > 0 {
		notation := make([]string, len(d.Moves))
		for i, m := range d.Moves {
			notation[i] = m.Notation
		}
		fmt.Fprintf(out, "\nMoves:\n  %s\n", strings.Join(notation, " "))
	}
}

// formatDuration formats d as m:ss.cc, or s.cc under a minute.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d.Milliseconds() / 10
	mins := cs / 6000
	secs := (cs / 100) % 60
	frac := cs % 100
	if mins > 0 {
		return fmt.Sprintf("%d:%02d.%02d", mins, secs, frac)
	}
	return fmt.Sprintf("%d.%02d", secs, frac)
}
