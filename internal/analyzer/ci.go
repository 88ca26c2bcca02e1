package analyzer

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// CIAnalyzer detects CI systems already configured in the repository and,
// for GitLab CI, the stage names they declare.
type CIAnalyzer struct{}

func (a *CIAnalyzer) Name() string { return "ci" }

type gitlabCIFile struct {
	Stages []string `yaml:"stages"`
}

func (a *CIAnalyzer) Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error) {
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

	switch {
	case rootNames[".gitlab-ci.yml"]:
		sig.ExistingCI = &types.ExistingCI{System: "gitlab"}
		if data, err := provider.ReadFile(ctx, ".gitlab-ci.yml"); err == nil {
			var cf gitlabCIFile
			if yaml.Unmarshal(data, &cf) == nil && len(cf.Stages) > 0 {
				sig.ExistingCI.Stages = cf.Stages
				sig.Confidence = types.ConfidenceHigh
			}
		}
	case rootDirs[".github"]:
		wf, err := provider.ListFiles(ctx, ".github/workflows", false, 0)
		if err == nil && hasYAML(wf) {
			sig.ExistingCI = &types.ExistingCI{System: "github-actions"}
			sig.Confidence = types.ConfidenceHigh
		}
	case rootNames["Jenkinsfile"]:
		sig.ExistingCI = &types.ExistingCI{System: "jenkins"}
	case rootDirs[".circleci"]:
		sig.ExistingCI = &types.ExistingCI{System: "circleci"}
	}

	return sig, nil
}

func hasYAML(files []repo.File) bool {
	for _, f := range files {
		if strings.HasSuffix(f.Name, ".yml") || strings.HasSuffix(f.Name, ".yaml") {
			return true
		}
	}
	return false
}
