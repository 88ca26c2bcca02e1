package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// DependencyAnalyzer extracts package dependencies from manifests and
// derives cache and security-scan recommendations from them.
type DependencyAnalyzer struct{}

func (a *DependencyAnalyzer) Name() string { return "dependency" }

func (a *DependencyAnalyzer) Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error) {
	files, err := provider.ListFiles(ctx, "", false, 0)
	if err != nil {
		return nil, fmt.Errorf("list root: %w", err)
	}
	rootNames := make(map[string]bool, len(files))
	for _, f := range files {
		rootNames[f.Name] = true
	}

	sig := &types.Signal{Confidence: types.ConfidenceMedium}

	switch {
	case rootNames["package.json"]:
		a.scanNode(ctx, provider, sig, rootNames)
	case rootNames["go.mod"]:
		a.scanGoMod(ctx, provider, sig)
	case rootNames["requirements.txt"]:
		a.scanRequirements(ctx, provider, sig)
	}

	// A lockfile means reproducible installs, which makes dependency
	// audit results stable enough to gate on.
	for _, lock := range []string{"package-lock.json", "yarn.lock", "go.sum", "poetry.lock", "Pipfile.lock", "Cargo.lock"} {
		if rootNames[lock] {
			sig.SecurityScan = types.Set(true)
			break
		}
	}
	return sig, nil
}

func (a *DependencyAnalyzer) scanNode(ctx context.Context, provider repo.Provider, sig *types.Signal, rootNames map[string]bool) {
	data, err := provider.ReadFile(ctx, "package.json")
	if err != nil {
		return
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return
	}
	sig.Confidence = types.ConfidenceHigh
	for name, version := range pkg.Dependencies {
		sig.Dependencies = append(sig.Dependencies, types.Dependency{Name: name, Version: cleanSemver(version)})
	}
	for name, version := range pkg.DevDependencies {
		sig.Dependencies = append(sig.Dependencies, types.Dependency{Name: name, Version: cleanSemver(version), Dev: true})
	}
	sig.CachePaths = append(sig.CachePaths, "node_modules/")
	if rootNames["yarn.lock"] {
		sig.CachePaths = append(sig.CachePaths, ".yarn/cache/")
	}
}

var goRequireRe = regexp.MustCompile(`(?m)^\s*([\w./-]+\.[\w./-]+)\s+(v[\w.+-]+)`)

func (a *DependencyAnalyzer) scanGoMod(ctx context.Context, provider repo.Provider, sig *types.Signal) {
	data, err := provider.ReadFile(ctx, "go.mod")
	if err != nil {
		return
	}
	sig.Confidence = types.ConfidenceHigh
	for _, m := range goRequireRe.FindAllStringSubmatch(string(data), -1) {
		sig.Dependencies = append(sig.Dependencies, types.Dependency{Name: m[1], Version: m[2]})
	}
	sig.CachePaths = append(sig.CachePaths, ".go-build-cache/")
}

func (a *DependencyAnalyzer) scanRequirements(ctx context.Context, provider repo.Provider, sig *types.Signal) {
	data, err := provider.ReadFile(ctx, "requirements.txt")
	if err != nil {
		return
	}
	sig.Confidence = types.ConfidenceHigh
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name, version := line, ""
		for _, sep := range []string{"==", ">=", "<=", "~=", ">"} {
			if idx := strings.Index(line, sep); idx > 0 {
				name = strings.TrimSpace(line[:idx])
				version = strings.TrimSpace(line[idx+len(sep):])
				break
			}
		}
		sig.Dependencies = append(sig.Dependencies, types.Dependency{Name: name, Version: version})
	}
	sig.CachePaths = append(sig.CachePaths, ".cache/pip/")
}
