package template

import "pipewright/internal/types"

var dotnetVersions = []string{"6.0", "7.0", "8.0", "9.0"}

type dotnetTemplate struct{}

func (t *dotnetTemplate) Name() string { return "dotnet" }

func (t *dotnetTemplate) Supports() []string {
	return []string{"dotnet", "csharp"}
}

func (t *dotnetTemplate) Validate(spec *types.UnifiedPipelineSpec) error {
	if spec.LanguageVersion != "" && !versionIn(spec.LanguageVersion, dotnetVersions) {
		return versionError(t.Name(), spec.LanguageVersion, dotnetVersions)
	}
	return nil
}

func (t *dotnetTemplate) Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults {
	version := "8.0"
	if spec.LanguageVersion != "" {
		version = spec.LanguageVersion
	}
	return TemplateDefaults{
		Image: "mcr.microsoft.com/dotnet/sdk:" + version,
		Variables: map[string]string{
			"NUGET_PACKAGES": "$CI_PROJECT_DIR/.nuget/packages",
		},
		CachePaths: []string{".nuget/packages/"},
	}
}

func (t *dotnetTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:         stageFor(spec, "build", "build"),
			Script:        []string{"dotnet restore", "dotnet build --no-restore"},
			ArtifactPaths: []string{"bin/"},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:  stageFor(spec, "test", "build"),
			Script: testScript(spec, "dotnet test --no-build --logger trx"),
		}
	}
	lintJob(spec, jobs, "dotnet format --verify-no-changes")
	securityJob(spec, jobs, "dotnet list package --vulnerable")
	deployJobs(spec, jobs)
	return jobs
}

func (t *dotnetTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachEnvironmentVariables(spec, p)
}
