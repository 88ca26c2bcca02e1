package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pipewright/internal/aggregate"
	"pipewright/internal/analyzer"
	"pipewright/internal/repo"
	"pipewright/internal/types"
)

var analyzeJSON bool

// analyzeCmd runs the signal analyzers without generating anything.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Inspect a project and report what was detected",
	Long: `Runs every signal analyzer against the project and prints the
aggregated result: detected project type, frameworks, dependencies,
existing CI, containers and deployment layout, each with a confidence
rating. Nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the raw analysis result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	provider, err := repo.NewLocal(root)
	if err != nil {
		return err
	}

	runner := analyzer.NewRunner(logger, analyzer.WithTimeout(timeout))
	signals, warnings := runner.Run(cmd.Context(), provider)
	result := aggregate.Aggregate(signals, warnings)

	if analyzeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), report(&result))
	return nil
}

// report renders the human-readable analysis summary.
func report(res *types.ProjectAnalysisResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project type:     %s (%s confidence)\n",
		res.ProjectType, res.AreaConfidence[types.AreaProject])
	if res.LanguageVersion != "" {
		fmt.Fprintf(&sb, "Language version: %s\n", res.LanguageVersion)
	}
	if res.Framework != nil {
		fmt.Fprintf(&sb, "Framework:        %s\n", res.Framework.Name)
	}
	if res.BuildTool != nil {
		fmt.Fprintf(&sb, "Build tool:       %s\n", res.BuildTool.Name)
	}
	if len(res.Dependencies) > 0 {
		fmt.Fprintf(&sb, "Dependencies:     %d detected\n", len(res.Dependencies))
	}
	if res.ExistingCI != nil {
		fmt.Fprintf(&sb, "Existing CI:      %s\n", res.ExistingCI.System)
	}
	if res.Container != nil && res.Container.BaseImage != "" {
		fmt.Fprintf(&sb, "Container image:  %s\n", res.Container.BaseImage)
	}
	if res.Deployment != nil && len(res.Deployment.Environments) > 0 {
		names := make([]string, len(res.Deployment.Environments))
		for i, env := range res.Deployment.Environments {
			names[i] = env.Name
		}
		fmt.Fprintf(&sb, "Environments:     %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "Overall:          %s confidence\n", res.Overall)
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", w.Message)
	}
	return sb.String()
}
