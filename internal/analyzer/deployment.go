package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// DeploymentAnalyzer detects deployment configuration: Kubernetes manifest
// directories, Helm charts, Procfiles, and per-environment dotenv files.
type DeploymentAnalyzer struct{}

func (a *DeploymentAnalyzer) Name() string { return "deployment" }

// deployDirs are directories that conventionally hold deployment manifests.
var deployDirs = []string{"k8s", "kubernetes", "deploy", "deployment", "manifests", "helm", "charts"}

func (a *DeploymentAnalyzer) Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error) {
	files, err := provider.ListFiles(ctx, "", false, 0)
	if err != nil {
		return nil, fmt.Errorf("list root: %w", err)
	}
	rootNames := make(map[string]bool, len(files))
	rootDirs := make(map[string]bool, len(files))
	for _, f := range files {
		if f.IsDir {
			rootDirs[f.Name] = true
		} else {
			rootNames[f.Name] = true
		}
	}

	sig := &types.Signal{Confidence: types.ConfidenceMedium}
	dep := &types.Deployment{}

	for _, dir := range deployDirs {
		if !rootDirs[dir] {
			continue
		}
		sub, err := provider.ListFiles(ctx, dir, true, 3)
		if err != nil {
			continue
		}
		if hasYAML(sub) || dir == "helm" || dir == "charts" {
			dep.HasConfig = true
			dep.Environments = appendEnvs(dep.Environments, overlayEnvs(sub)...)
		}
	}

	if rootNames["Procfile"] {
		dep.HasConfig = true
		dep.Commands = append(dep.Commands, "procfile release")
	}

	// .env.staging / .env.production style files name their environments.
	for name := range rootNames {
		if env, ok := strings.CutPrefix(name, ".env."); ok && env != "example" && env != "local" {
			dep.HasConfig = true
			dep.Environments = appendEnvs(dep.Environments, env)
		}
	}

	if !dep.HasConfig {
		return sig, nil // nothing observed, absent rather than false
	}

	sort.Slice(dep.Environments, func(i, j int) bool {
		return dep.Environments[i].Name < dep.Environments[j].Name
	})
	sig.Deployment = dep
	sig.DeployEnabled = types.Set(true)
	return sig, nil
}

// overlayEnvs derives environment names from kustomize-style overlay
// directories (overlays/staging, overlays/production).
func overlayEnvs(files []repo.File) []string {
	var envs []string
	for _, f := range files {
		if !f.IsDir {
			continue
		}
		parts := strings.Split(f.Path, "/")
		for i, p := range parts {
			if (p == "overlays" || p == "environments" || p == "envs") && i+1 < len(parts) {
				envs = append(envs, parts[i+1])
			}
		}
	}
	return envs
}

// appendEnvs unions environment names case-insensitively.
func appendEnvs(existing []types.Environment, names ...string) []types.Environment {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(e.Name)] = true
	}
	for _, n := range names {
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		existing = append(existing, types.Environment{Name: n})
	}
	return existing
}
