package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// markerSets maps a project type to the root-level files that indicate it.
// Every match becomes a prominence marker on the emitted signal; the
// aggregator scores conflicting type claims by these markers.
var markerSets = map[string][]string{
	"nodejs": {"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml"},
	"python": {"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"},
	"golang": {"go.mod", "go.sum"},
	"java":   {"pom.xml", "build.gradle", "build.gradle.kts"},
	"dotnet": {"global.json", "*.csproj", "*.sln"},
	"rust":   {"Cargo.toml", "Cargo.lock"},
	"docker": {"Dockerfile", "docker-compose.yml", "docker-compose.yaml"},
}

// ProjectAnalyzer detects the project type, framework, build tool, and
// language version from root-level marker files and manifests.
type ProjectAnalyzer struct{}

func (a *ProjectAnalyzer) Name() string { return "project" }

func (a *ProjectAnalyzer) Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error) {
	files, err := provider.ListFiles(ctx, "", false, 0)
	if err != nil {
		return nil, fmt.Errorf("list root: %w", err)
	}

	rootNames := make(map[string]bool, len(files))
	for _, f := range files {
		if !f.IsDir {
			rootNames[f.Name] = true
		}
	}

	best, markers := bestMarkerMatch(rootNames)
	if best == "" {
		return &types.Signal{Confidence: types.ConfidenceLow}, nil
	}

	sig := &types.Signal{
		Confidence:  types.ConfidenceMedium,
		ProjectType: best,
		Markers:     markers,
	}

	// Manifest contents upgrade confidence and fill framework details.
	switch best {
	case "nodejs":
		a.enrichNode(ctx, provider, sig)
	case "golang":
		a.enrichGo(ctx, provider, sig)
	case "python":
		a.enrichPython(ctx, provider, sig, rootNames)
	case "java":
		a.enrichJava(sig, rootNames)
	case "dotnet":
		a.enrichDotnet(ctx, provider, sig, rootNames)
	}
	return sig, nil
}

// bestMarkerMatch returns the type with the most root markers. Ties are not
// broken here; the aggregator owns conflict resolution.
func bestMarkerMatch(rootNames map[string]bool) (string, []string) {
	var best string
	var bestMarkers []string
	for ptype, patterns := range markerSets {
		var matched []string
		for _, pat := range patterns {
			if strings.ContainsAny(pat, "*?") {
				for name := range rootNames {
					if ok, _ := filepath.Match(pat, name); ok {
						matched = append(matched, name)
					}
				}
			} else if rootNames[pat] {
				matched = append(matched, pat)
			}
		}
		// Docker markers describe packaging, not the source project; the
		// container analyzer reports those.
		if ptype == "docker" {
			continue
		}
		if len(matched) > len(bestMarkers) {
			best = ptype
			bestMarkers = matched
		}
	}
	return best, bestMarkers
}

// nodeFrameworks maps a package.json dependency to the framework it implies,
// in detection priority order.
var nodeFrameworks = []struct {
	dep  string
	name string
}{
	{"next", "nextjs"},
	{"nuxt", "nuxt"},
	{"@angular/core", "angular"},
	{"react", "react"},
	{"vue", "vue"},
	{"svelte", "svelte"},
	{"@nestjs/core", "nestjs"},
	{"fastify", "fastify"},
	{"express", "express"},
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
	Engines         struct {
		Node string `json:"node"`
	} `json:"engines"`
}

func (a *ProjectAnalyzer) enrichNode(ctx context.Context, provider repo.Provider, sig *types.Signal) {
	data, err := provider.ReadFile(ctx, "package.json")
	if err != nil {
		return
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return // malformed manifest, keep the marker-only finding
	}
	sig.Confidence = types.ConfidenceHigh

	for _, fw := range nodeFrameworks {
		if _, ok := pkg.Dependencies[fw.dep]; ok {
			sig.Framework = &types.Framework{
				Name:    fw.name,
				Version: cleanSemver(pkg.Dependencies[fw.dep]),
			}
			break
		}
	}
	if v := cleanSemver(pkg.Engines.Node); v != "" {
		sig.LanguageVersion = v
	}
	if cmd, ok := pkg.Scripts["test"]; ok && cmd != "" {
		sig.TestCommands = append(sig.TestCommands, "npm test")
		sig.TestsEnabled = types.Set(true)
	}
	if _, ok := pkg.Scripts["lint"]; ok {
		sig.LintEnabled = types.Set(true)
	}
	if _, ok := pkg.Scripts["build"]; ok {
		sig.ArtifactPaths = append(sig.ArtifactPaths, "dist/")
	}
	sig.BuildTool = &types.BuildTool{Name: "npm"}
}

var goVersionRe = regexp.MustCompile(`(?m)^go\s+(\d+\.\d+(?:\.\d+)?)`)

func (a *ProjectAnalyzer) enrichGo(ctx context.Context, provider repo.Provider, sig *types.Signal) {
	data, err := provider.ReadFile(ctx, "go.mod")
	if err != nil {
		return
	}
	sig.Confidence = types.ConfidenceHigh
	sig.BuildTool = &types.BuildTool{Name: "go"}
	sig.TestCommands = append(sig.TestCommands, "go test ./...")
	sig.TestsEnabled = types.Set(true)

	if m := goVersionRe.FindSubmatch(data); m != nil {
		sig.LanguageVersion = string(m[1])
	}
	content := string(data)
	switch {
	case strings.Contains(content, "github.com/gin-gonic/gin"):
		sig.Framework = &types.Framework{Name: "gin"}
	case strings.Contains(content, "github.com/labstack/echo"):
		sig.Framework = &types.Framework{Name: "echo"}
	case strings.Contains(content, "github.com/gofiber/fiber"):
		sig.Framework = &types.Framework{Name: "fiber"}
	}
}

func (a *ProjectAnalyzer) enrichPython(ctx context.Context, provider repo.Provider, sig *types.Signal, rootNames map[string]bool) {
	sig.BuildTool = &types.BuildTool{Name: "pip"}
	if rootNames["pyproject.toml"] {
		if data, err := provider.ReadFile(ctx, "pyproject.toml"); err == nil {
			content := string(data)
			sig.Confidence = types.ConfidenceHigh
			if strings.Contains(content, "[tool.poetry]") {
				sig.BuildTool = &types.BuildTool{Name: "poetry"}
			}
			if strings.Contains(content, "django") {
				sig.Framework = &types.Framework{Name: "django"}
			} else if strings.Contains(content, "fastapi") {
				sig.Framework = &types.Framework{Name: "fastapi"}
			} else if strings.Contains(content, "flask") {
				sig.Framework = &types.Framework{Name: "flask"}
			}
			if strings.Contains(content, "pytest") {
				sig.TestCommands = append(sig.TestCommands, "pytest")
				sig.TestsEnabled = types.Set(true)
			}
		}
	}
	if rootNames["manage.py"] {
		sig.Framework = &types.Framework{Name: "django"}
		sig.Confidence = types.ConfidenceHigh
	}
}

func (a *ProjectAnalyzer) enrichJava(sig *types.Signal, rootNames map[string]bool) {
	switch {
	case rootNames["pom.xml"]:
		sig.BuildTool = &types.BuildTool{Name: "maven"}
		sig.TestCommands = append(sig.TestCommands, "mvn test")
	case rootNames["build.gradle"], rootNames["build.gradle.kts"]:
		sig.BuildTool = &types.BuildTool{Name: "gradle"}
		sig.TestCommands = append(sig.TestCommands, "gradle test")
	}
	if len(sig.TestCommands) > 0 {
		sig.TestsEnabled = types.Set(true)
	}
}

type globalJSON struct {
	SDK struct {
		Version string `json:"version"`
	} `json:"sdk"`
}

func (a *ProjectAnalyzer) enrichDotnet(ctx context.Context, provider repo.Provider, sig *types.Signal, rootNames map[string]bool) {
	sig.BuildTool = &types.BuildTool{Name: "dotnet"}
	sig.TestCommands = append(sig.TestCommands, "dotnet test")
	sig.TestsEnabled = types.Set(true)
	if rootNames["global.json"] {
		if data, err := provider.ReadFile(ctx, "global.json"); err == nil {
			var gj globalJSON
			if json.Unmarshal(data, &gj) == nil && gj.SDK.Version != "" {
				sig.LanguageVersion = majorMinor(gj.SDK.Version)
				sig.Confidence = types.ConfidenceHigh
			}
		}
	}
}

// cleanSemver strips range operators from a version constraint.
func cleanSemver(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "^~>=<")
}

// majorMinor reduces "9.0.103" to "9.0".
func majorMinor(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return v
}
