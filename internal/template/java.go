package template

import "pipewright/internal/types"

var javaVersions = []string{"8", "11", "17", "21"}

type javaTemplate struct{}

func (t *javaTemplate) Name() string { return "java" }

func (t *javaTemplate) Supports() []string {
	return []string{"java", "kotlin"}
}

func (t *javaTemplate) Validate(spec *types.UnifiedPipelineSpec) error {
	if spec.LanguageVersion != "" && !versionIn(spec.LanguageVersion, javaVersions) {
		return versionError(t.Name(), spec.LanguageVersion, javaVersions)
	}
	return nil
}

func (t *javaTemplate) Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults {
	version := "17"
	if spec.LanguageVersion != "" {
		version = versionMajor(spec.LanguageVersion)
	}
	return TemplateDefaults{
		Image: "maven:3.9-eclipse-temurin-" + version,
		Variables: map[string]string{
			"MAVEN_OPTS": "-Dmaven.repo.local=$CI_PROJECT_DIR/.m2/repository",
		},
		CachePaths: []string{".m2/repository/"},
	}
}

func (t *javaTemplate) Jobs(spec *types.UnifiedPipelineSpec) map[string]Job {
	jobs := map[string]Job{
		"build": {
			Stage:         stageFor(spec, "build", "build"),
			Script:        []string{"mvn compile"},
			ArtifactPaths: []string{"target/"},
		},
	}
	if spec.TestsEnabled {
		jobs["test"] = Job{
			Stage:  stageFor(spec, "test", "build"),
			Script: testScript(spec, "mvn test"),
		}
	}
	lintJob(spec, jobs, "mvn checkstyle:check")
	securityJob(spec, jobs, "mvn org.owasp:dependency-check-maven:check")
	deployJobs(spec, jobs)
	return jobs
}

func (t *javaTemplate) Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	attachTestReport(p, "junit", "target/surefire-reports/TEST-*.xml")
	attachEnvironmentVariables(spec, p)
}
