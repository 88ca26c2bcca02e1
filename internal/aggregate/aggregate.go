// Package aggregate joins the analyzers' signals into one
// ProjectAnalysisResult. It owns conflict resolution between signals:
// competing project-type claims are scored by marker prominence, and the
// overall confidence is the conservative minimum across contributing areas.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pipewright/internal/types"
)

// UnknownType is reported when no signal produced a type claim with markers.
const UnknownType = "unknown"

// typePriority is the fixed tiebreak order for equal prominence scores.
var typePriority = []string{"nodejs", "python", "golang", "java", "dotnet", "rust", "docker"}

// Aggregate merges all signals into a single result. Warnings from failed
// analyzers are carried through; a failed analyzer's fields are simply
// absent. Aggregate never fails.
func Aggregate(signals []types.Signal, warnings []types.Warning) types.ProjectAnalysisResult {
	res := types.ProjectAnalysisResult{
		RunID:          uuid.NewString(),
		AreaConfidence: make(map[types.Area]types.Confidence),
		Warnings:       warnings,
	}

	resolveType(&res, signals)
	unionFields(&res, signals)
	scoreAreas(&res, signals)
	res.Overall = overallConfidence(res.AreaConfidence)
	return res
}

// confidenceWeight converts a grade into a prominence multiplier.
func confidenceWeight(c types.Confidence) int {
	switch c {
	case types.ConfidenceHigh:
		return 3
	case types.ConfidenceMedium:
		return 2
	case types.ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// resolveType picks the project type among competing claims. Score is the
// count of root marker files weighted by the claiming signal's confidence;
// ties fall back to the fixed priority order.
func resolveType(res *types.ProjectAnalysisResult, signals []types.Signal) {
	scores := make(map[string]int)
	confs := make(map[string]types.Confidence)
	for _, s := range signals {
		if s.ProjectType == "" {
			continue
		}
		scores[s.ProjectType] += len(s.Markers) * confidenceWeight(s.Confidence)
		if s.Confidence > confs[s.ProjectType] {
			confs[s.ProjectType] = s.Confidence
		}
	}

	best, bestScore := "", 0
	for _, candidate := range typePriority {
		if sc, ok := scores[candidate]; ok && sc > bestScore {
			best, bestScore = candidate, sc
		}
	}
	// Claims outside the priority list still count, after listed ones.
	for ptype, sc := range scores {
		if sc > bestScore {
			best, bestScore = ptype, sc
		}
	}

	if best == "" || bestScore == 0 {
		res.ProjectType = UnknownType
		res.AreaConfidence[types.AreaProject] = types.ConfidenceLow
		return
	}
	res.ProjectType = best
	res.AreaConfidence[types.AreaProject] = confs[best]
}

// unionFields merges the non-type fields of every signal. The type winner's
// project details take precedence; everything else fills gaps or unions.
func unionFields(res *types.ProjectAnalysisResult, signals []types.Signal) {
	// Signals claiming the winning type go first so their details win.
	ordered := make([]types.Signal, 0, len(signals))
	for _, s := range signals {
		if s.ProjectType == res.ProjectType {
			ordered = append(ordered, s)
		}
	}
	for _, s := range signals {
		if s.ProjectType != res.ProjectType {
			ordered = append(ordered, s)
		}
	}

	for _, s := range ordered {
		if res.Framework == nil && s.Framework != nil {
			res.Framework = s.Framework
		}
		if res.BuildTool == nil && s.BuildTool != nil {
			res.BuildTool = s.BuildTool
		}
		if res.LanguageVersion == "" && s.LanguageVersion != "" {
			res.LanguageVersion = s.LanguageVersion
		}
		res.TestCommands = unionStrings(res.TestCommands, s.TestCommands)
		res.ArtifactPaths = unionStrings(res.ArtifactPaths, s.ArtifactPaths)
		res.CachePaths = unionStrings(res.CachePaths, s.CachePaths)
		res.Dependencies = unionDeps(res.Dependencies, s.Dependencies)
		res.Variables = unionVars(res.Variables, s.Variables)

		res.TestsEnabled = orFlag(res.TestsEnabled, s.TestsEnabled)
		res.LintEnabled = orFlag(res.LintEnabled, s.LintEnabled)
		res.SecurityScan = orFlag(res.SecurityScan, s.SecurityScan)
		res.DeployEnabled = orFlag(res.DeployEnabled, s.DeployEnabled)

		if s.Deployment != nil {
			res.Deployment = mergeDeployment(res.Deployment, s.Deployment)
		}
		if res.Container == nil && s.Container != nil {
			res.Container = s.Container
		}
		if res.ExistingCI == nil && s.ExistingCI != nil {
			res.ExistingCI = s.ExistingCI
		}
	}
}

// scoreAreas records per-area confidence: the strongest contributing signal
// per area. Areas with no data stay absent and never drag the overall down.
func scoreAreas(res *types.ProjectAnalysisResult, signals []types.Signal) {
	for _, s := range signals {
		for _, area := range s.Areas() {
			if s.Confidence > res.AreaConfidence[area] {
				res.AreaConfidence[area] = s.Confidence
			}
		}
	}
}

// overallConfidence is the minimum grade among areas that contributed data.
func overallConfidence(areas map[types.Area]types.Confidence) types.Confidence {
	overall := types.ConfidenceNone
	for _, c := range areas {
		if overall == types.ConfidenceNone || c < overall {
			overall = c
		}
	}
	if overall == types.ConfidenceNone {
		return types.ConfidenceLow
	}
	return overall
}

func orFlag(a, b types.Opt[bool]) types.Opt[bool] {
	if !a.IsSet() && !b.IsSet() {
		return a
	}
	return types.Set(a.Value() || b.Value())
}

func unionStrings(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range add {
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		existing = append(existing, v)
	}
	return existing
}

func unionDeps(existing, add []types.Dependency) []types.Dependency {
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[d.Name] = true
	}
	for _, d := range add {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		existing = append(existing, d)
	}
	return existing
}

func unionVars(existing, add map[string]string) map[string]string {
	if len(add) == 0 {
		return existing
	}
	if existing == nil {
		existing = make(map[string]string, len(add))
	}
	for k, v := range add {
		if _, ok := existing[k]; !ok {
			existing[k] = v
		}
	}
	return existing
}

func mergeDeployment(existing, add *types.Deployment) *types.Deployment {
	if existing == nil {
		cp := *add
		return &cp
	}
	existing.HasConfig = existing.HasConfig || add.HasConfig
	existing.Commands = unionStrings(existing.Commands, add.Commands)
	for _, env := range add.Environments {
		if !hasEnv(existing.Environments, env.Name) {
			existing.Environments = append(existing.Environments, env)
		}
	}
	return existing
}

func hasEnv(envs []types.Environment, name string) bool {
	for _, e := range envs {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// Describe summarizes the result for log output.
func Describe(res *types.ProjectAnalysisResult) string {
	return fmt.Sprintf("type=%s overall=%s areas=%d warnings=%d",
		res.ProjectType, res.Overall, len(res.AreaConfidence), len(res.Warnings))
}
