package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pipewright/internal/aggregate"
	"pipewright/internal/analyzer"
	"pipewright/internal/config"
	"pipewright/internal/emit"
	"pipewright/internal/merge"
	"pipewright/internal/repo"
	"pipewright/internal/template"
	"pipewright/internal/types"
	"pipewright/internal/watch"
	"pipewright/internal/wizard"
)

var (
	flagStrategy    string
	flagType        string
	flagVersion     string
	flagStages      []string
	flagVars        map[string]string
	flagEnvs        []string
	flagOutput      string
	flagDryRun      bool
	flagWatch       bool
	flagInteractive bool
)

// generateCmd is the main entry point: analyze, merge, assemble, write.
var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate the CI pipeline file for a project",
	Long: `Analyzes the project, merges the analysis with .pipewright.yaml under
the selected strategy, and writes the assembled pipeline.

Command-line overrides behave like entries in the configuration file:
a --type or --stage flag is manual configuration with the same
precedence rules.

Examples:
  pipewright generate
  pipewright generate --strategy prefer-manual --type nodejs
  pipewright generate --watch
  pipewright generate --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagStrategy, "strategy", "s", "", "merge strategy (see 'pipewright strategies')")
	generateCmd.Flags().StringVarP(&flagType, "type", "t", "", "override the detected project type")
	generateCmd.Flags().StringVar(&flagVersion, "language-version", "", "override the detected language version")
	generateCmd.Flags().StringSliceVar(&flagStages, "stage", nil, "pipeline stage, repeatable")
	generateCmd.Flags().StringToStringVar(&flagVars, "var", nil, "pipeline variable KEY=VALUE, repeatable")
	generateCmd.Flags().StringSliceVar(&flagEnvs, "env", nil, "deployment environment name, repeatable")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default .gitlab-ci.yml in the project)")
	generateCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the pipeline instead of writing it")
	generateCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "keep running and regenerate on file changes")
	generateCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "configure via the setup wizard first")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFileName)
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}

	if flagInteractive {
		answers, err := wizard.Run()
		if err != nil {
			return err
		}
		if answers == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled, nothing written.")
			return nil
		}
		cfg = answers
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", cfgPath)
	}

	if err := applyOverrides(cfg); err != nil {
		return err
	}

	output := flagOutput
	if output == "" {
		output = cfg.Output
	}
	if output == "" {
		output = filepath.Join(root, ".gitlab-ci.yml")
	}

	gen := &generator{
		root:     root,
		cfg:      cfg,
		output:   output,
		dryRun:   flagDryRun,
		registry: template.NewRegistry(),
		out:      cmd.OutOrStdout(),
	}

	if err := gen.run(cmd.Context()); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}

	w, err := watch.New(root, gen.run,
		watch.WithIgnore(filepath.Base(output), filepath.Base(cfgPath)),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := w.Start(cmd.Context()); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes, Ctrl+C to stop.")
	<-cmd.Context().Done()
	return nil
}

// applyOverrides folds command-line flags into the manual configuration.
func applyOverrides(cfg *config.File) error {
	if flagStrategy != "" {
		strategy, ok := types.ParseStrategy(flagStrategy)
		if !ok {
			return fmt.Errorf("unknown merge strategy %q (see 'pipewright strategies')", flagStrategy)
		}
		cfg.Strategy = strategy
	}
	if flagType != "" {
		cfg.Manual.ProjectType = types.Set(strings.ToLower(flagType))
	}
	if flagVersion != "" {
		cfg.Manual.LanguageVersion = types.Set(flagVersion)
	}
	if len(flagStages) > 0 {
		cfg.Manual.Stages = flagStages
	}
	for k, v := range flagVars {
		if cfg.Manual.Variables == nil {
			cfg.Manual.Variables = make(map[string]string)
		}
		cfg.Manual.Variables[k] = v
	}
	for _, name := range flagEnvs {
		cfg.Manual.Environments = append(cfg.Manual.Environments, types.Environment{Name: name})
	}
	return nil
}

// generator holds everything one generation pass needs, so watch mode can
// rerun it on demand.
type generator struct {
	root     string
	cfg      *config.File
	output   string
	dryRun   bool
	registry *template.Registry
	out      io.Writer
}

func (g *generator) run(ctx context.Context) error {
	provider, err := repo.NewLocal(g.root)
	if err != nil {
		return err
	}

	runner := analyzer.NewRunner(logger, analyzer.WithTimeout(timeout))
	signals, warnings := runner.Run(ctx, provider)
	analysis := aggregate.Aggregate(signals, warnings)

	logger.Info("analysis complete",
		zap.String("run_id", analysis.RunID),
		zap.String("summary", aggregate.Describe(&analysis)),
	)

	spec, mergeWarnings := merge.Merge(analysis, &g.cfg.Manual, g.cfg.Strategy)
	for _, w := range append(analysis.Warnings, mergeWarnings...) {
		fmt.Fprintf(g.out, "warning: %s\n", w.Message)
	}

	pipeline, err := template.Assemble(&spec, g.registry)
	if err != nil {
		return err
	}

	data, err := emit.GitLabCI(pipeline)
	if err != nil {
		return err
	}

	if g.dryRun {
		_, err = g.out.Write(data)
		return err
	}
	if err := emit.WriteFile(g.output, data); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Wrote %s (%s, %s strategy)\n", g.output, spec.ProjectType, g.cfg.Strategy)
	return nil
}
