package template

import (
	"fmt"
	"strings"

	"pipewright/internal/types"
)

// stageFor returns want when the spec's stage list contains it, otherwise
// the fallback (jobs must land on a declared stage or extend the list).
func stageFor(spec *types.UnifiedPipelineSpec, want, fallback string) string {
	for _, s := range spec.Stages {
		if strings.EqualFold(s, want) {
			return want
		}
	}
	return fallback
}

// versionMajor extracts the leading numeric component of a version string.
func versionMajor(v string) string {
	return strings.SplitN(strings.TrimSpace(v), ".", 2)[0]
}

// versionIn checks a version against an enumerated supported set, matching
// on the same precision the set uses.
func versionIn(v string, supported []string) bool {
	v = strings.TrimSpace(v)
	for _, s := range supported {
		if v == s || versionMajor(v) == s {
			return true
		}
	}
	return false
}

// versionError builds the standard unsupported-version rejection.
func versionError(tmpl, version string, supported []string) error {
	return &ValidationError{
		Template: tmpl,
		Reason: fmt.Sprintf("unsupported version %q (supported: %s)",
			version, strings.Join(supported, ", ")),
	}
}

// deployJobs emits one deploy job per environment, or a single production
// job when deployment is enabled without named environments.
func deployJobs(spec *types.UnifiedPipelineSpec, jobs map[string]Job) {
	if !spec.DeployEnabled {
		return
	}
	stage := stageFor(spec, "deploy", "deploy")
	envs := spec.Environments
	if len(envs) == 0 {
		envs = []types.Environment{{Name: "production"}}
	}
	for _, env := range envs {
		e := env
		jobs["deploy-"+strings.ToLower(env.Name)] = Job{
			Stage:       stage,
			Script:      []string{fmt.Sprintf("echo deploying to %s", env.Name)},
			Environment: &e,
		}
	}
}

// lintJob adds a lint job on the test stage when linting is enabled.
func lintJob(spec *types.UnifiedPipelineSpec, jobs map[string]Job, script ...string) {
	if !spec.LintEnabled {
		return
	}
	jobs["lint"] = Job{
		Stage:  stageFor(spec, "test", "build"),
		Script: script,
	}
}

// securityJob adds a dependency-audit job on the test stage. Audit findings
// should not block a pipeline that was never configured to gate on them.
func securityJob(spec *types.UnifiedPipelineSpec, jobs map[string]Job, script ...string) {
	if !spec.SecurityScan {
		return
	}
	jobs["security-scan"] = Job{
		Stage:        stageFor(spec, "test", "build"),
		Script:       script,
		AllowFailure: true,
	}
}

// testScript prefers the spec's detected test commands over the fallback.
func testScript(spec *types.UnifiedPipelineSpec, fallback ...string) []string {
	if len(spec.TestCommands) > 0 {
		return append([]string(nil), spec.TestCommands...)
	}
	return fallback
}

// attachEnvironmentVariables is the shared post-generation mutation copying
// per-environment variables onto their deploy jobs.
func attachEnvironmentVariables(spec *types.UnifiedPipelineSpec, p *Pipeline) {
	for name, job := range p.Jobs {
		if job.Environment == nil || len(job.Environment.Variables) == 0 {
			continue
		}
		if job.Variables == nil {
			job.Variables = make(map[string]string)
		}
		for k, v := range job.Environment.Variables {
			job.Variables[k] = v
		}
		p.Jobs[name] = job
	}
}

// attachTestReport is the shared post-generation mutation wiring a report
// artifact onto the test job.
func attachTestReport(p *Pipeline, format, path string) {
	job, ok := p.Jobs["test"]
	if !ok {
		return
	}
	if job.Reports == nil {
		job.Reports = make(map[string]string)
	}
	job.Reports[format] = path
	p.Jobs["test"] = job
}
