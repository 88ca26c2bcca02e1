// Package wizard is the interactive configuration dialogue. The step state
// machine is plain logic driven by text input; the terminal shell around it
// lives in model.go so the flow is testable without a TTY.
package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"pipewright/internal/config"
	"pipewright/internal/types"
)

// Step identifies the current wizard step.
type Step int

const (
	StepProjectType Step = iota
	StepLanguageVersion
	StepStages
	StepTests
	StepLint
	StepSecurity
	StepDeploy
	StepEnvironments
	StepStrategy
	StepReview
	StepDone
)

// knownTypes are offered as numbered choices. Anything else typed in is
// accepted as-is; the generic template will pick it up.
var knownTypes = []string{"nodejs", "python", "golang", "java", "dotnet"}

// State is the wizard state machine. Empty input means "skip": the field
// stays unset and detection decides later.
type State struct {
	Step      Step
	File      config.File
	Err       string
	Cancelled bool
}

// NewState starts the wizard at the first step.
func NewState() *State {
	return &State{File: config.File{Strategy: types.IntelligentMerge}}
}

// Prompt returns the text shown for the current step.
func (s *State) Prompt() string {
	switch s.Step {
	case StepProjectType:
		var sb strings.Builder
		sb.WriteString("Project type (Enter to auto-detect):\n")
		for i, t := range knownTypes {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, t)
		}
		return sb.String()
	case StepLanguageVersion:
		return "Language version, e.g. 20 or 3.12 (Enter to auto-detect):"
	case StepStages:
		return "Pipeline stages, comma separated (Enter for build, test, deploy):"
	case StepTests:
		return "Run tests? [y/n, Enter to auto-detect]:"
	case StepLint:
		return "Run linting? [y/n, Enter to auto-detect]:"
	case StepSecurity:
		return "Run dependency security scans? [y/n, Enter to auto-detect]:"
	case StepDeploy:
		return "Generate deploy jobs? [y/n, Enter to auto-detect]:"
	case StepEnvironments:
		return "Deployment environments, comma separated (Enter to skip):"
	case StepStrategy:
		var sb strings.Builder
		sb.WriteString("Merge strategy (Enter for intelligent):\n")
		for i, strat := range types.Strategies() {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, strat)
		}
		return sb.String()
	case StepReview:
		return s.review()
	}
	return ""
}

// Apply feeds one line of input to the current step. Invalid input sets Err
// and stays on the step.
func (s *State) Apply(input string) {
	input = strings.TrimSpace(input)
	s.Err = ""

	switch s.Step {
	case StepProjectType:
		if input != "" {
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(knownTypes) {
				input = knownTypes[n-1]
			}
			s.File.Manual.ProjectType = types.Set(strings.ToLower(input))
		}
		s.Step = StepLanguageVersion
	case StepLanguageVersion:
		if input != "" {
			s.File.Manual.LanguageVersion = types.Set(input)
		}
		s.Step = StepStages
	case StepStages:
		if input != "" {
			stages := splitList(input)
			if len(stages) == 0 {
				s.Err = "enter at least one stage name"
				return
			}
			s.File.Manual.Stages = stages
		}
		s.Step = StepTests
	case StepTests:
		s.applyFlag(input, &s.File.Manual.TestsEnabled, StepLint)
	case StepLint:
		s.applyFlag(input, &s.File.Manual.LintEnabled, StepSecurity)
	case StepSecurity:
		s.applyFlag(input, &s.File.Manual.SecurityScan, StepDeploy)
	case StepDeploy:
		s.applyFlag(input, &s.File.Manual.DeployEnabled, StepEnvironments)
		if s.Step == StepEnvironments {
			if v, set := s.File.Manual.DeployEnabled.Get(); set && !v {
				s.Step = StepStrategy
			}
		}
	case StepEnvironments:
		for _, name := range splitList(input) {
			s.File.Manual.Environments = append(s.File.Manual.Environments, types.Environment{Name: name})
		}
		s.Step = StepStrategy
	case StepStrategy:
		if input != "" {
			strategies := types.Strategies()
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(strategies) {
				s.File.Strategy = strategies[n-1]
			} else {
				strategy, ok := types.ParseStrategy(input)
				if !ok {
					s.Err = fmt.Sprintf("unknown strategy %q", input)
					return
				}
				s.File.Strategy = strategy
			}
		}
		s.Step = StepReview
	case StepReview:
		switch strings.ToLower(input) {
		case "y", "yes", "":
			s.Step = StepDone
		default:
			s.Cancelled = true
			s.Step = StepDone
		}
	}
}

// applyFlag parses a yes/no answer, leaving the flag unset on Enter.
func (s *State) applyFlag(input string, flag *types.Opt[bool], next Step) {
	switch strings.ToLower(input) {
	case "":
	case "y", "yes":
		*flag = types.Set(true)
	case "n", "no":
		*flag = types.Set(false)
	default:
		s.Err = "answer y, n, or Enter to skip"
		return
	}
	s.Step = next
}

// Done reports whether the wizard finished, by saving or cancelling.
func (s *State) Done() bool {
	return s.Step == StepDone
}

// Result returns the collected configuration, or nil when cancelled.
func (s *State) Result() *config.File {
	if s.Cancelled {
		return nil
	}
	return &s.File
}

func (s *State) review() string {
	m := &s.File.Manual
	var sb strings.Builder
	sb.WriteString("Configuration review:\n")
	fmt.Fprintf(&sb, "  project type:  %s\n", orDetect(m.ProjectType))
	fmt.Fprintf(&sb, "  version:       %s\n", orDetect(m.LanguageVersion))
	if m.Stages != nil {
		fmt.Fprintf(&sb, "  stages:        %s\n", strings.Join(m.Stages, ", "))
	} else {
		sb.WriteString("  stages:        (default)\n")
	}
	fmt.Fprintf(&sb, "  tests:         %s\n", flagLabel(m.TestsEnabled))
	fmt.Fprintf(&sb, "  lint:          %s\n", flagLabel(m.LintEnabled))
	fmt.Fprintf(&sb, "  security scan: %s\n", flagLabel(m.SecurityScan))
	fmt.Fprintf(&sb, "  deploy:        %s\n", flagLabel(m.DeployEnabled))
	if len(m.Environments) > 0 {
		names := make([]string, len(m.Environments))
		for i, env := range m.Environments {
			names[i] = env.Name
		}
		fmt.Fprintf(&sb, "  environments:  %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "  strategy:      %s\n", s.File.Strategy)
	sb.WriteString("\nSave? [Y/n]:")
	return sb.String()
}

func orDetect(o types.Opt[string]) string {
	if v, set := o.Get(); set {
		return v
	}
	return "(auto-detect)"
}

func flagLabel(o types.Opt[bool]) string {
	v, set := o.Get()
	switch {
	case !set:
		return "(auto-detect)"
	case v:
		return "yes"
	default:
		return "no"
	}
}

func splitList(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
