package template

import "pipewright/internal/types"

// genericTemplate is the fallback for project types without a dedicated
// template. It accepts any spec and emits placeholder jobs the user is
// expected to fill in.
type genericTemplate struct{}

func (t *genericTemplate) Name() string { return "generic" }

func (t *genericTemplate) Supports() []string {
	return []string{types.GenericType}
}

func (t *genericTemplate) Validate(_ *types.UnifiedPipelineSpec) error {
	return nil
}

func (t *genericTemplate) Defaults(_ *types.UnifiedPipelineSpec) TemplateDefaults {
	return TemplateDefaults{Image: "alpine:latest"}
}

func (t *genericTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:  stageFor(spec, "build", "build"),
			Script: []string{"echo add your build commands here"},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:  stageFor(spec, "test", "build"),
			Script: testScript(spec, "echo add your test commands here"),
		}
	}
	deployJobs(spec, jobs)
	return jobs
}

func (t *genericTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachEnvironmentVariables(spec, p)
}
