package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/pkg/color"
)

var (
	jsonOutput bool
	noColor    bool
	rootCmd    = &cobra.Command{
		Use:   "eggtimer",
		Short: "eggtimer - a terminal egg timer",
		Long: `eggtimer is a countdown timer for boiling eggs. Pick a preset or a
custom duration, start it, and get a chime, a bell and a burst of
confetti when the eggs are done.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmtErr("%v", err)
		os.Exit(1)
	}
}

// outputJSON writes v as indented JSON to w.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
