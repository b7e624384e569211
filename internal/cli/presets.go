package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/nameutil"
)

var presetsDebug preset.DebugFlag

type presetEntry struct {
	Key      int     `json:"key"`
	Name     string  `json:"name"`
	Minutes  float64 `json:"minutes"`
	Seconds  float64 `json:"run_seconds"`
	Builtin  bool    `json:"builtin"`
	Default  bool    `json:"default"`
	Duration string  `json:"duration"`
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available presets",
	Long: `List the available presets with their number keys.

Built-in presets are soft (6 min), medium (8 min) and hard (11 min). More
can be added under "presets" in config.yaml. With --debug the durations are
shown as scaled for a debug run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := preset.NewTable(cfg.Presets)
		if err != nil {
			return err
		}
		scale := presetsDebug.Scale()
		def := nameutil.Normalize(cfg.DefaultPreset)

		entries := make([]presetEntry, 0, table.Len())
		for i, p := range table.All() {
			entries = append(entries, presetEntry{
				Key:      i + 1,
				Name:     p.Name,
				Minutes:  p.Minutes,
				Seconds:  scale.RunSeconds(p.Minutes),
				Builtin:  p.Builtin,
				Default:  p.Name == def,
				Duration: scale.Badge(p.Minutes),
			})
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, entries)
		}

		if banner := scale.Banner(); banner != "" {
			fmt.Fprintln(out, color.Warning(banner))
		}
		for _, e := range entries {
			marker := ""
			if e.Default {
				marker = "  " + color.Header("[default]")
			}
			if !e.Builtin {
				marker += "  " + color.Dim("(config)")
			}
			fmt.Fprintf(out, "  %d  %-10s %s%s\n", e.Key, e.Name, e.Duration, marker)
		}
		fmt.Fprintf(out, "  %s  %-10s %s-%s %s\n", "±", "custom",
			scale.CustomLabel(preset.MinCustom), scale.CustomLabel(preset.MaxCustom), scale.Unit())
		return nil
	},
}

func init() {
	f := presetsCmd.Flags().VarPF(&presetsDebug, "debug", "", "show durations scaled so medium lasts this many seconds")
	f.NoOptDefVal = preset.NoOptDefault
	rootCmd.AddCommand(presetsCmd)
}
