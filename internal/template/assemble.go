package template

import (
	"fmt"
	"sort"
	"strings"

	"pipewright/internal/types"
)

// Assemble turns a resolved spec into the final pipeline shape. Stage
// invariants are enforced here regardless of template; template validation
// runs before any output is produced, so a failure yields no partial result.
func Assemble(spec *types.UnifiedPipelineSpec, reg *Registry) (*Pipeline, error) {
	tmpl, err := reg.For(spec.ProjectType)
	if err != nil {
		return nil, err
	}
	// The generic fallback accepts anything; a dedicated template must
	// still declare the type it was selected for.
	if tmpl != reg.generic && !supports(tmpl, spec.ProjectType) {
		return nil, &ValidationError{
			Template: tmpl.Name(),
			Reason:   fmt.Sprintf("project type %q outside supported set", spec.ProjectType),
		}
	}
	if err := tmpl.Validate(spec); err != nil {
		return nil, err
	}

	p := &Pipeline{
		Stages:    orderStages(spec),
		Jobs:      make(map[string]Job),
		Variables: make(map[string]string),
	}

	// Spec values first, then template defaults additively: default
	// variables only fill unset keys, the default image only applies when
	// the spec has none, default paths are appended.
	for k, v := range spec.Variables {
		p.Variables[k] = v
	}
	defaults := tmpl.Defaults(spec)
	for k, v := range defaults.Variables {
		if _, ok := p.Variables[k]; !ok {
			p.Variables[k] = v
		}
	}
	p.Defaults.Image = spec.Image
	if p.Defaults.Image == "" {
		p.Defaults.Image = defaults.Image
	}
	p.Defaults.CachePaths = appendUnique(spec.CachePaths, defaults.CachePaths...)
	p.Defaults.ArtifactPaths = appendUnique(spec.ArtifactPaths, defaults.ArtifactPaths...)

	jobs := tmpl.Jobs(spec)
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.addJob(name, jobs[name])
	}
	addCustomJobs(spec, p)
	ensureJobStages(p)

	tmpl.Finalize(spec, p)
	return p, nil
}

// orderStages builds the ordered stage list: case-insensitive de-dup,
// "build" forced first when present, "test" inserted immediately after
// "build" when tests are enabled and the stage is not already there.
func orderStages(spec *types.UnifiedPipelineSpec) []string {
	var stages []string
	seen := make(map[string]bool)
	for _, s := range spec.Stages {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		stages = append(stages, key)
	}

	for i, s := range stages {
		if s == "build" && i > 0 {
			out := []string{"build"}
			out = append(out, stages[:i]...)
			out = append(out, stages[i+1:]...)
			stages = out
			break
		}
	}

	if spec.TestsEnabled && !seen["test"] {
		if len(stages) > 0 && stages[0] == "build" {
			stages = append(stages[:1], append([]string{"test"}, stages[1:]...)...)
		} else {
			stages = append([]string{"test"}, stages...)
		}
	}
	return stages
}

// addCustomJobs installs user-declared jobs, extending the stage list when
// a custom job names a stage the spec did not include.
func addCustomJobs(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	for _, cj := range spec.CustomJobs {
		if cj.Name == "" {
			continue
		}
		stage := strings.ToLower(cj.Stage)
		if stage == "" {
			if len(p.Stages) > 0 {
				stage = p.Stages[len(p.Stages)-1]
			} else {
				stage = "build"
			}
		}
		p.addJob(cj.Name, Job{
			Stage:  stage,
			Script: append([]string(nil), cj.Script...),
		})
	}
}

// ensureJobStages appends any job stage missing from the stage list.
func ensureJobStages(p *Pipeline) {
	seen := make(map[string]bool, len(p.Stages))
	for _, s := range p.Stages {
		seen[s] = true
	}
	for _, name := range p.JobOrder {
		stage := p.Jobs[name].Stage
		if !seen[stage] {
			seen[stage] = true
			p.Stages = append(p.Stages, stage)
		}
	}
}

func appendUnique(existing []string, add ...string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	out := append([]string(nil), existing...)
	for _, v := range add {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
