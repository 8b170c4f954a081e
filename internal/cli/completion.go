package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// completionShells maps each supported shell to its script generator and
// the line that loads the script for every new session.
var completionShells = map[string]struct {
	gen     func(root *cobra.Command, w io.Writer) error
	persist string
}{
	"bash": {
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		persist: "tipscan completion bash > ~/.local/share/bash-completion/completions/tipscan",
	},
	"zsh": {
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
		persist: `tipscan completion zsh > "${fpath[1]}/_tipscan"`,
	},
	"fish": {
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
		persist: "tipscan completion fish > ~/.config/fish/completions/tipscan.fish",
	},
	"powershell": {
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
		persist: "tipscan completion powershell >> $PROFILE",
	},
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for tipscan. Completions cover the
subcommands (sweep, graph, view, serve, cache) and their flags, and offer
study files for sweep and graph and result files for view.

Load completions into the current shell:

  source <(tipscan completion bash)
  tipscan completion fish | source

To load them for every session, write the script where the shell looks for
completions, for example:

  tipscan completion bash > ~/.local/share/bash-completion/completions/tipscan
  tipscan completion zsh > "${fpath[1]}/_tipscan"`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := completionShells[args[0]]
			if err := shell.gen(cmd.Root(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("generate %s completion: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# load for every session: %s\n", shell.persist)
			return nil
		},
	}
}

// fileArg completes a single positional argument with files of the given
// extensions.
func fileArg(exts ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}
