package analyzer

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// ContainerAnalyzer detects container packaging: Dockerfiles and compose
// files. A Dockerfile also counts as a weak "docker" project-type claim so
// repositories with nothing but packaging still resolve to a usable type.
type ContainerAnalyzer struct{}

func (a *ContainerAnalyzer) Name() string { return "container" }

type composeFile struct {
	Services map[string]any `yaml:"services"`
}

func (a *ContainerAnalyzer) Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error) {
	files, err := provider.ListFiles(ctx, "", false, 0)
	if err != nil {
		return nil, fmt.Errorf("list root: %w", err)
	}
	rootNames := make(map[string]bool, len(files))
	for _, f := range files {
		rootNames[f.Name] = true
	}

	sig := &types.Signal{Confidence: types.ConfidenceMedium}

	if rootNames["Dockerfile"] {
		container := &types.Container{HasDockerfile: true}
		if data, err := provider.ReadFile(ctx, "Dockerfile"); err == nil {
			container.BaseImage = firstFromImage(string(data))
			sig.Confidence = types.ConfidenceHigh
		}
		sig.Container = container
		sig.ProjectType = "docker"
		sig.Markers = []string{"Dockerfile"}
	}

	for _, name := range []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"} {
		if !rootNames[name] {
			continue
		}
		if sig.Container == nil {
			sig.Container = &types.Container{}
		}
		if data, err := provider.ReadFile(ctx, name); err == nil {
			var cf composeFile
			if yaml.Unmarshal(data, &cf) == nil {
				for svc := range cf.Services {
					sig.Container.ComposeServices = append(sig.Container.ComposeServices, svc)
				}
			}
		}
		break
	}

	return sig, nil
}

// firstFromImage extracts the image of the first FROM instruction.
func firstFromImage(dockerfile string) string {
	for _, line := range strings.Split(dockerfile, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "FROM ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return ""
		}
		return fields[1]
	}
	return ""
}
