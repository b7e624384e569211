package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/internal/doctor"
)

// errUnhealthy is returned when doctor finds a critical problem.
var errUnhealthy = errors.New("critical findings")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check what this machine can do",
	Long: `Check what this machine can do.

Runs diagnostic checks on the configuration, the data directory, audio
playback and the terminal, and reports anything that limits a run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDirs()
		if err != nil {
			return err
		}

		doc := doctor.NewDoctor(doctor.Env{
			Fs:        appFs,
			ConfigDir: d.Config,
			DataDir:   d.Data,
			Speaker:   chime.SpeakerAvailable,
			Terminal:  isInteractive(),
		})
		result := doc.Check()
		out := cmd.OutOrStdout()

		if jsonOutput {
			if err := outputJSON(out, result); err != nil {
				return err
			}
		} else if len(result.Findings) == 0 {
			fmt.Fprintln(out, "Everything is ready to boil.")
		} else {
			fmt.Fprintf(out, "Findings (%d):\n", len(result.Findings))
			for _, f := range result.Findings {
				fmt.Fprintf(out, "  [%s] %s: %s\n", f.Severity, f.Category, f.Description)
			}
		}

		if !result.Healthy {
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
