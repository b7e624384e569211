package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/internal/journal"
	"github.com/eggtimer-project/eggtimer/pkg/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where eggtimer keeps its files",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDirs()
		if err != nil {
			return err
		}
		store, err := openNote()
		if err != nil {
			return err
		}

		info := map[string]any{
			"config_file":   filepath.Join(d.Config, config.FileName),
			"data_dir":      d.Data,
			"note_file":     store.Path(),
			"journal_file":  filepath.Join(d.Data, journal.FileName),
			"log_file":      filepath.Join(d.Data, logFileName),
			"speaker":       chime.SpeakerAvailable,
			"interactive":   isInteractive(),
			"sample_rate":   int(chime.DefaultSampleRate),
			"chime_seconds": chime.Length.Seconds(),
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, info)
		}

		fmt.Fprintf(out, "Config:  %s\n", info["config_file"])
		fmt.Fprintf(out, "Data:    %s\n", d.Data)
		fmt.Fprintf(out, "  Note:    %s\n", info["note_file"])
		fmt.Fprintf(out, "  Journal: %s\n", info["journal_file"])
		fmt.Fprintf(out, "  Log:     %s\n", info["log_file"])
		fmt.Fprintf(out, "Speaker: %v\n", chime.SpeakerAvailable)
		fmt.Fprintf(out, "Interactive terminal: %v\n", info["interactive"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
