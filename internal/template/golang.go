package template

import (
	"fmt"
	"strings"

	"pipewright/internal/types"
)

type goTemplate struct{}

func (t *goTemplate) Name() string { return "golang" }

func (t *goTemplate) Supports() []string {
	return []string{"golang", "go"}
}

func (t *goTemplate) Validate(spec *types.UnifiedPipelineSpec) error {
	if v := spec.LanguageVersion; v != "" && !strings.HasPrefix(v, "1.") {
		return &ValidationError{
			Template: t.Name(),
			Reason:   fmt.Sprintf("unsupported go version %q", v),
		}
	}
	return nil
}

func (t *goTemplate) Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults {
	version := "1.22"
	if spec.LanguageVersion != "" {
		version = spec.LanguageVersion
	}
	return TemplateDefaults{
		Image: "golang:" + version,
		Variables: map[string]string{
			"GOCACHE": "$CI_PROJECT_DIR/.go-build-cache",
		},
		CachePaths: []string{".go-build-cache/"},
	}
}

func (t *goTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:  stageFor(spec, "build", "build"),
			Script: []string{"go build ./..."},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:         stageFor(spec, "test", "build"),
			Script:        testScript(spec, "go test -coverprofile=coverage.out ./..."),
			ArtifactPaths: []string{"coverage.out"},
		}
	}
	lintJob(spec, jobs, "go vet ./...")
	securityJob(spec, jobs, "govulncheck ./...")
	deployJobs(spec, jobs)
	return jobs
}

func (t *goTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachEnvironmentVariables(spec, p)
}
