package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/journal"
	"github.com/eggtimer-project/eggtimer/pkg/color"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the journal",
	Long: `Show recent runs from the journal.

Every start, pause, reset and finish of a run is appended to journal.jsonl
in the data directory, unless the journal is turned off in the config.

Examples:
  eggtimer history           # Show the last 20 events
  eggtimer history -n 0      # Show everything`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, err := loadConfig()
		if err != nil {
			return err
		}
		records, err := openJournal(d).List(historyLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if jsonOutput {
			if records == nil {
				records = []journal.Record{}
			}
			return outputJSON(out, records)
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "No runs yet.")
			return nil
		}

		for _, rec := range records {
			fmt.Fprintf(out, "%s  %s  %-8s  %s / %s\n",
				color.Dim(rec.Timestamp.Local().Format("2006-01-02 15:04:05")),
				eventLabel(rec.Event),
				rec.Label,
				engine.FormatClock(seconds(rec.ElapsedSeconds)),
				engine.FormatClock(seconds(rec.TotalSeconds)),
			)
		}
		return nil
	},
}

func eventLabel(ev engine.Event) string {
	s := fmt.Sprintf("%-8s", ev)
	switch ev {
	case engine.EventFinished:
		return color.Success(s)
	case engine.EventReset:
		return color.Warning(s)
	default:
		return s
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "limit number of entries (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
