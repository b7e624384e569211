package cli

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/chime"
)

// newPlayer opens the audio output used by chime and run.
var newPlayer = chime.NewSpeaker

var (
	chimeOut        string
	chimeSampleRate int
)

var chimeCmd = &cobra.Command{
	Use:   "chime",
	Short: "Play the completion chime, or write it to a WAV file",
	Long: `Play the completion chime, or write it to a WAV file.

Examples:
  eggtimer chime                  # Play it through the speaker
  eggtimer chime --out chime.wav  # Render it to a file instead`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sr := beep.SampleRate(chimeSampleRate)
		if sr <= 0 {
			sr = chime.DefaultSampleRate
		}

		if chimeOut != "" {
			f, err := appFs.Create(chimeOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", chimeOut, err)
			}
			if err := chime.WriteWAV(f, sr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", chimeOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s at %d Hz)\n", chimeOut, chime.Length, int(sr))
			return nil
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		var failed error
		bell := &chime.Bell{
			Player:     recordErr(newPlayer(sr), &failed),
			SampleRate: sr,
			Volume:     cfg.Volume,
		}
		bell.Chime()
		if failed != nil {
			return failed
		}
		time.Sleep(chime.Length + 100*time.Millisecond)
		return nil
	},
}

// errRecorder remembers the last playback error.
type errRecorder struct {
	chime.Player
	err *error
}

func recordErr(p chime.Player, err *error) chime.Player {
	return &errRecorder{Player: p, err: err}
}

func (r *errRecorder) Play(s beep.Streamer) error {
	err := r.Player.Play(s)
	if err != nil {
		*r.err = err
	}
	return err
}

func init() {
	chimeCmd.Flags().StringVarP(&chimeOut, "out", "o", "", "write a WAV file instead of playing")
	chimeCmd.Flags().IntVar(&chimeSampleRate, "sample-rate", int(chime.DefaultSampleRate), "sample rate in Hz")
	rootCmd.AddCommand(chimeCmd)
}
