package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/bench"
	"github.com/matzehuels/quicksilver/pkg/planner"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for quicksilver to stdout.

Besides subcommands and flags, the scripts complete the values of --strategy
and --mode, and file names for graph, workload and report arguments.`,
		Example: `  source <(quicksilver completion bash)
  quicksilver completion zsh > "${fpath[1]}/_quicksilver"
  quicksilver completion fish > ~/.config/fish/completions/quicksilver.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// flagValues lists the fixed values of enum-like flags, by flag name.
var flagValues = map[string][]string{
	"strategy": {string(planner.StrategyAuto), string(planner.StrategyGreedy), string(planner.StrategyExhaustive)},
	"mode":     {string(bench.ModeBoth), string(bench.ModeEstimator), string(bench.ModeEvaluator)},
}

// registerCompletions adds value completion for every flag in flagValues on
// cmd and its subcommands.
func registerCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	for _, sub := range cmd.Commands() {
		registerCompletions(sub)
	}
}
