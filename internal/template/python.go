package template

import (
	"fmt"

	"pipewright/internal/types"
)

var pythonVersions = []string{"3.9", "3.10", "3.11", "3.12", "3.13"}

type pythonTemplate struct{}

func (t *pythonTemplate) Name() string { return "python" }

func (t *pythonTemplate) Supports() []string {
	return []string{"python"}
}

func (t *pythonTemplate) Validate(spec *types.UnifiedPipelineSpec) error {
	if spec.LanguageVersion != "" && !versionIn(spec.LanguageVersion, pythonVersions) {
		return versionError(t.Name(), spec.LanguageVersion, pythonVersions)
	}
	return nil
}

func (t *pythonTemplate) Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults {
	version := "3.12"
	if spec.LanguageVersion != "" {
		version = spec.LanguageVersion
	}
	return TemplateDefaults{
		Image: fmt.Sprintf("python:%s-slim", version),
		Variables: map[string]string{
			"PIP_CACHE_DIR": "$CI_PROJECT_DIR/.cache/pip",
		},
		CachePaths: []string{".cache/pip/"},
	}
}

func (t *pythonTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:  stageFor(spec, "build", "build"),
			Script: []string{"pip install -r requirements.txt"},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:  stageFor(spec, "test", "build"),
			Script: append([]string{"pip install -r requirements.txt"}, testScript(spec, "pytest --junitxml=report.xml")...),
		}
	}
	lintJob(spec, jobs, "pip install ruff", "ruff check .")
	securityJob(spec, jobs, "pip install pip-audit", "pip-audit -r requirements.txt")
	deployJobs(spec, jobs)
	return jobs
}

func (t *pythonTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachTestReport(p, "junit", "report.xml")
	attachEnvironmentVariables(spec, p)
}
