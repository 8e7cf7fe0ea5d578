package cli

import (
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/binner"
	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for flowatlas.

Besides subcommands and flags, the scripts complete:
  --schema      the column presets (unhcr, owid, applications)
  --format      the formats the command renders (sankey: html, json, dot,
                svg, png; map and timelapse: svg, json, png)
  --scale       threshold, linear, log
  --palette     plasma, viridis and the ColorBrewer ramps
  options       the field argument (year, origin, asylum)

Bash:
  $ source <(flowatlas completion bash)

Zsh:
  $ flowatlas completion zsh > "${fpath[1]}/_flowatlas"

Fish:
  $ flowatlas completion fish > ~/.config/fish/completions/flowatlas.fish

PowerShell:
  PS> flowatlas completion powershell | Out-String | Invoke-Expression
`,
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
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerCompletions attaches value completions to the flags of every
// subcommand that has them.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		formats := pipeline.MapFormats
		if cmd.Name() == "sankey" {
			formats = pipeline.FlowFormats
		}
		complete(cmd, "schema", dataset.PresetNames())
		complete(cmd, "map-schema", dataset.PresetNames())
		complete(cmd, "format", sortedKeys(formats))
		complete(cmd, "scale", sortedKeys(pipeline.ValidScales))
		complete(cmd, "palette", binner.PaletteNames())
	}
}

func complete(cmd *cobra.Command, flag string, values []string) {
	if cmd.Flags().Lookup(flag) == nil {
		return
	}
	values = slices.Clone(values)
	_ = cmd.RegisterFlagCompletionFunc(flag, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	})
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
