package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note <command>",
	Short: "Manage the note shown under the timer",
	Long: `Manage the note shown under the timer.

The note is a single line of free text kept in the data directory, such as
"two eggs for ramen". It is trimmed when saved.`,
	DisableFlagsInUseLine: true,
}

var noteGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the saved note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNote()
		if err != nil {
			return err
		}
		text, err := store.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, map[string]string{"note": text})
		}
		if text == "" {
			fmt.Fprintln(out, "(no note)")
			return nil
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

var noteSetCmd = &cobra.Command{
	Use:   "set <text>...",
	Short: "Save the note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNote()
		if err != nil {
			return err
		}
		text := strings.Join(args, " ")
		if err := store.Save(text); err != nil {
			return err
		}
		saved, err := store.Load()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved note: %s\n", saved)
		return nil
	},
}

var noteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNote()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Note cleared.")
		return nil
	},
}

func init() {
	noteCmd.AddCommand(noteGetCmd)
	noteCmd.AddCommand(noteSetCmd)
	noteCmd.AddCommand(noteClearCmd)
	rootCmd.AddCommand(noteCmd)
}
