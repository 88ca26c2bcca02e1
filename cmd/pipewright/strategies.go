package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipewright/internal/types"
)

var strategyHelp = map[types.MergeStrategy]string{
	types.PreferManual:     "Manual settings win every conflict; analysis fills the gaps.",
	types.PreferAnalysis:   "Detected settings win every conflict; manual fills the gaps.",
	types.IntelligentMerge: "Precedence follows analysis confidence, field by field.",
	types.AnalysisOnly:     "Detection only; manual settings are ignored except variables.",
	types.ManualOnly:       "Manual settings only; the project is not analyzed.",
}

// strategiesCmd documents the available merge strategies.
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available merge strategies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Merge strategies (default: intelligent):")
		fmt.Fprintln(cmd.OutOrStdout())
		for _, s := range types.Strategies() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", s, strategyHelp[s])
		}
	},
}
