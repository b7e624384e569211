package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var completionNoDesc bool

// shellGenerators renders a completion script for each supported shell.
var shellGenerators = []struct {
	shell string
	gen   func(root *cobra.Command, w io.Writer, desc bool) error
}{
	{"bash", func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenBashCompletionV2(w, desc)
	}},
	{"zsh", func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	}},
	{"fish", func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenFishCompletion(w, desc)
	}},
	{"powershell", func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	}},
}

func completionShells() []string {
	shells := make([]string, 0, len(shellGenerators))
	for _, g := range shellGenerators {
		shells = append(shells, g.shell)
	}
	return shells
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for bash, zsh, fish or powershell.

Preset names complete after "eggtimer run", and config keys after
"eggtimer config get" and "eggtimer config set".

  source <(eggtimer completion bash)
  eggtimer completion zsh > "${fpath[1]}/_eggtimer"
  eggtimer completion fish > ~/.config/fish/completions/eggtimer.fish
  eggtimer completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells(),
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, g := range shellGenerators {
			if g.shell != args[0] {
				continue
			}
			if err := g.gen(cmd.Root(), cmd.OutOrStdout(), !completionNoDesc); err != nil {
				return fmt.Errorf("generate %s completion: %w", g.shell, err)
			}
			return nil
		}
		return fmt.Errorf("unsupported shell %q", args[0])
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionNoDesc, "no-descriptions", false, "omit command descriptions from completions")
	rootCmd.AddCommand(completionCmd)
}
