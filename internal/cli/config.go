package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config <command>",
	Short: "Manage eggtimer configuration",
	Long: `Manage eggtimer configuration stored in config.yaml.

Configuration options:
  sound           - Play the chime when a run finishes (on, off)
  vibration       - Ring the terminal bell pattern (on, off)
  celebration     - Show confetti (on, off)
  volume          - Chime volume as a power of two (-6 to 2)
  default_preset  - Preset used when none is given
  display         - Renderer (auto, bar, plain)
  journal         - Record runs in the journal (on, off)
  logging.level   - Log level (debug, info, warn, error)
  logging.format  - Log format (text, json)

Presets are edited in the file directly:
  presets:
    - name: jammy
      minutes: 7

Available commands:
  show              - Show current configuration
  set <key> <value> - Set a configuration value
  get <key>         - Get a configuration value`,
	DisableFlagsInUseLine: true,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, d, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if jsonOutput {
			return outputJSON(out, cfg)
		}

		fmt.Fprintln(out, "# eggtimer configuration")
		fmt.Fprintf(out, "# Location: %s\n\n", filepath.Join(d.Config, config.FileName))
		for _, key := range config.Keys() {
			value, _ := cfg.Get(key)
			fmt.Fprintf(out, "%s: %s\n", key, value)
		}
		if len(cfg.Presets) > 0 {
			fmt.Fprintln(out, "presets:")
			for _, p := range cfg.Presets {
				fmt.Fprintf(out, "  - %s: %s min\n", p.Name, preset.FormatMinutes(p.Minutes))
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in config.yaml.

Examples:
  eggtimer config set sound off
  eggtimer config set default_preset soft
  eggtimer config set display plain
  eggtimer config set volume -1`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, d, err := loadConfig()
		if err != nil {
			return err
		}

		key := args[0]
		value := args[1]

		if err := cfg.Set(key, value); err != nil {
			return fmt.Errorf("set config: %w", err)
		}
		if key == "default_preset" {
			table, err := preset.NewTable(cfg.Presets)
			if err != nil {
				return err
			}
			if _, err := table.Lookup(cfg.DefaultPreset); err != nil {
				return err
			}
		}

		if err := config.Save(appFs, d.Config, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		got, _ := cfg.Get(key)
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, got)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value from config.yaml.

Examples:
  eggtimer config get sound
  eggtimer config get default_preset`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		key := args[0]
		value, err := cfg.Get(key)
		if err != nil {
			return fmt.Errorf("get config: %w", err)
		}

		if value == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (not set)\n", key)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), value)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}
