package template

import (
	"fmt"

	"pipewright/internal/types"
)

// nodeVersions is the enumerated set of supported Node.js major versions.
var nodeVersions = []string{"16", "18", "20", "22"}

type nodeTemplate struct{}

func (t *nodeTemplate) Name() string { return "nodejs" }

func (t *nodeTemplate) Supports() []string {
	return []string{"nodejs", "javascript", "typescript"}
}

func (t *nodeTemplate) Validate(spec *types.UnifiedPipelineSpec) error {
	if spec.LanguageVersion != "" && !versionIn(spec.LanguageVersion, nodeVersions) {
		return versionError(t.Name(), spec.LanguageVersion, nodeVersions)
	}
	return nil
}

func (t *nodeTemplate) Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults {
	version := "20"
	if spec.LanguageVersion != "" {
		version = versionMajor(spec.LanguageVersion)
	}
	return TemplateDefaults{
		Image: fmt.Sprintf("node:%s-alpine", version),
		Variables: map[string]string{
			"NPM_CONFIG_CACHE": ".npm/",
		},
		CachePaths: []string{"node_modules/", ".npm/"},
	}
}

func (t *nodeTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:         stageFor(spec, "build", "build"),
			Script:        []string{"npm ci", "npm run build --if-present"},
			ArtifactPaths: []string{"dist/"},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:  stageFor(spec, "test", "build"),
			Script: append([]string{"npm ci"}, testScript(spec, "npm test")...),
		}
	}
	lintJob(spec, jobs, "npm ci", "npm run lint")
	securityJob(spec, jobs, "npm audit --audit-level=high")
	deployJobs(spec, jobs)
	return jobs
}

func (t *nodeTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachTestReport(p, "junit", "junit.xml")
	attachEnvironmentVariables(spec, p)
}
