package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/extrapolate"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/network"
)

var (
	// Flags for info command
	infoTarget    string
	infoDOT       bool
	infoCanonical bool
)

var infoCmd = &cobra.Command{
	Use:   "info <input>",
	Short: "Show the modules of a network and how its target would be watched",
	Long: `Print every module with its kind, outputs and inputs, the sinks, and the
watch plan the min command would use for the target.

Examples:
  pulse info testdata/counters.txt
  pulse info input.txt --target rx
  pulse info input.txt --dot | dot -Tsvg > network.svg
  pulse info input.txt --canonical > normalized.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoTarget, "target", "t", "",
		"module to plan watchers for (default from config, rx)")
	infoCmd.Flags().BoolVar(&infoDOT, "dot", false,
		"print the network in Graphviz format instead")
	infoCmd.Flags().BoolVar(&infoCanonical, "canonical", false,
		"print the declarations in canonical input format instead")
}

func runInfo(cmd *cobra.Command, args []string) error {
	net, err := netlist.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	if infoDOT {
		fmt.Print(net.ExportDOT())
		return nil
	}
	if infoCanonical {
		return netlist.Format(os.Stdout, net)
	}

	target := settings.Target
	if infoTarget != "" {
		target = infoTarget
	}

	names := net.Names()
	fmt.Printf("Modules: %d  Wires: %d  Sinks: %d\n\n", len(names), net.EdgeCount(), len(net.Sinks()))

	fmt.Printf("%-16s %-12s %-30s %s\n", "MODULE", "KIND", "OUTPUTS", "INPUTS")
	for _, name := range names {
		kind, _ := net.Kind(name)
		fmt.Printf("%-16s %-12s %-30s %s\n",
			kind.Prefix()+name, kind,
			strings.Join(net.Outputs(name), ", "),
			strings.Join(net.Inputs(name), ", "))
	}

	if sinks := net.Sinks(); len(sinks) > 0 {
		fmt.Printf("\nSinks: %s\n", strings.Join(sinks, ", "))
	}

	if verbose {
		groups := net.Components(network.Entry).Groups()
		fmt.Printf("\nSub-networks without the broadcaster: %d\n", len(groups))
		for i, g := range groups {
			fmt.Printf("  [%d] %s\n", i, strings.Join(g, ", "))
		}
	}

	fmt.Println()
	plan, err := extrapolate.Plan(net, target)
	if err != nil {
		fmt.Printf("Watch plan for %s: none (%v)\n", target, err)
		return nil
	}
	fmt.Printf("Watch plan for %s: %s\n", target, plan)
	return nil
}
