// Package merge implements the configuration merge engine: a pure function
// combining an aggregated analysis result with optional manual configuration
// under a named strategy, producing one fully resolved pipeline spec.
//
// Merge never fails. Missing required fields are filled from documented
// defaults and surfaced as warnings; everything else follows the per-field-
// kind rules: scalars are last-writer-wins by precedence, lists and maps
// union, keyed collections union by key with the precedent source replacing
// conflicting entries.
package merge

import (
	"fmt"
	"strings"

	"pipewright/internal/aggregate"
	"pipewright/internal/types"
)

// precedence says which source wins a field both sources explicitly set.
type precedence int

const (
	precManual precedence = iota
	precAnalysis
)

// merger carries per-run state: the inputs are never mutated, the output is
// built fresh, so Merge on identical inputs is structurally idempotent.
type merger struct {
	analysis *types.ProjectAnalysisResult
	manual   *types.ManualConfiguration
	strategy types.MergeStrategy

	// medium is true only for IntelligentMerge at medium overall
	// confidence, where the selective per-field policy applies.
	medium bool
	prec   precedence

	spec     types.UnifiedPipelineSpec
	warnings []types.Warning
}

// Merge combines analysis and manual configuration under the strategy.
// A nil manual configuration is treated as entirely unset.
func Merge(analysis types.ProjectAnalysisResult, manual *types.ManualConfiguration, strategy types.MergeStrategy) (types.UnifiedPipelineSpec, []types.Warning) {
	if manual == nil {
		manual = &types.ManualConfiguration{}
	}
	m := &merger{
		analysis: &analysis,
		manual:   manual,
		strategy: strategy,
	}
	m.spec.Provenance = make(map[string]types.Origin)

	switch strategy {
	case types.PreferAnalysis, types.AnalysisOnly:
		m.prec = precAnalysis
	case types.IntelligentMerge:
		switch {
		case analysis.Overall.AtLeast(types.ConfidenceHigh):
			m.prec = precAnalysis
		case analysis.Overall == types.ConfidenceMedium:
			m.prec = precManual
			m.medium = true
		default:
			m.prec = precManual
		}
	default: // PreferManual, ManualOnly
		m.prec = precManual
	}

	m.resolveScalars()
	m.resolveFlags()
	m.resolveStages()
	m.resolveLists()
	m.resolveVariables()
	m.resolveEnvironments()
	m.resolveJobs()
	m.fillRequiredDefaults()

	return m.spec, m.warnings
}

// manualCounts reports whether manual input participates in decisions.
func (m *merger) manualCounts() bool {
	return m.strategy != types.AnalysisOnly
}

// analysisCounts reports whether analysis input participates in decisions.
func (m *merger) analysisCounts() bool {
	return m.strategy != types.ManualOnly
}

// =============================================================================
// SCALARS
// =============================================================================

// scalar resolves one string field under the given precedence. A source
// only wins if it explicitly set the field; an unset precedent source falls
// back to the other.
func (m *merger) scalar(prec precedence, manual types.Opt[string], analysisVal string) (string, types.Origin) {
	manualSet := m.manualCounts() && manual.IsSet()
	analysisSet := m.analysisCounts() && analysisVal != ""

	switch {
	case manualSet && (!analysisSet || prec == precManual):
		return manual.Value(), types.OriginManual
	case analysisSet:
		return analysisVal, types.OriginAnalysis
	case manualSet:
		return manual.Value(), types.OriginManual
	}
	return "", types.OriginDefault
}

func (m *merger) setScalar(field string, value string, origin types.Origin) {
	if value == "" {
		return
	}
	switch field {
	case "project_type":
		m.spec.ProjectType = value
	case "language_version":
		m.spec.LanguageVersion = value
	case "image":
		m.spec.Image = value
	}
	m.spec.Provenance[field] = origin
}

func (m *merger) resolveScalars() {
	analysisType := m.analysis.ProjectType
	if analysisType == aggregate.UnknownType {
		analysisType = "" // an unknown claim never wins over anything
	}

	typeManual := m.manual.ProjectType
	typePrec := m.prec
	if m.medium {
		// At medium confidence a non-generic manual type is considered
		// deliberate and outranks the heuristic claim.
		if t, ok := typeManual.Get(); ok && t != "" && t != types.GenericType {
			typePrec = precManual
		} else {
			typePrec = precAnalysis
		}
	}
	typeVal, typeOrigin := m.scalar(typePrec, typeManual, analysisType)
	m.setScalar("project_type", typeVal, typeOrigin)

	// Exact versions and images supplied by hand are assumed more
	// authoritative than inferred ones, so the medium branch prefers
	// manual for both.
	versionPrec, imagePrec := m.prec, m.prec
	if m.medium {
		versionPrec, imagePrec = precManual, precManual
	}

	analysisImage := ""
	if m.analysis.Container != nil {
		analysisImage = m.analysis.Container.BaseImage
	}
	versionVal, versionOrigin := m.scalar(versionPrec, m.manual.LanguageVersion, m.analysis.LanguageVersion)
	m.setScalar("language_version", versionVal, versionOrigin)
	imageVal, imageOrigin := m.scalar(imagePrec, m.manual.Image, analysisImage)
	m.setScalar("image", imageVal, imageOrigin)
}

// =============================================================================
// BOOLEAN FLAGS
// =============================================================================

func (m *merger) flag(name string, manual, analysis types.Opt[bool]) (bool, types.Origin) {
	manualSet := m.manualCounts() && manual.IsSet()
	analysisSet := m.analysisCounts() && analysis.IsSet()

	if m.medium && (manualSet || analysisSet) {
		// OR-combination is a conservative bias toward enabling optional
		// quality stages when either source suggests them.
		v := (manualSet && manual.Value()) || (analysisSet && analysis.Value())
		origin := types.OriginAnalysis
		if manualSet && manual.Value() == v {
			origin = types.OriginManual
		}
		if name == "deploy_enabled" && manualSet && analysisSet && manual.Value() != analysis.Value() && v {
			m.warn(types.WarnAutoEnabled, "",
				"deployment enabled by medium-confidence OR-combination despite one source disabling it")
		}
		return v, origin
	}

	switch {
	case manualSet && (!analysisSet || m.prec == precManual):
		return manual.Value(), types.OriginManual
	case analysisSet:
		return analysis.Value(), types.OriginAnalysis
	case manualSet:
		return manual.Value(), types.OriginManual
	}
	return false, types.OriginDefault
}

func (m *merger) resolveFlags() {
	set := func(name string, manual, analysis types.Opt[bool], dst *bool) {
		v, origin := m.flag(name, manual, analysis)
		*dst = v
		m.spec.Provenance[name] = origin
	}
	set("tests_enabled", m.manual.TestsEnabled, m.analysis.TestsEnabled, &m.spec.TestsEnabled)
	set("lint_enabled", m.manual.LintEnabled, m.analysis.LintEnabled, &m.spec.LintEnabled)
	set("security_scan", m.manual.SecurityScan, m.analysis.SecurityScan, &m.spec.SecurityScan)
	set("deploy_enabled", m.manual.DeployEnabled, m.analysis.DeployEnabled, &m.spec.DeployEnabled)
}

// =============================================================================
// LISTS
// =============================================================================

// unionList unions case-insensitively. The precedent source's ordering is
// preserved; the other source's novel items are appended in their order.
func unionList(first, second []string) []string {
	var out []string
	seen := make(map[string]bool, len(first)+len(second))
	for _, src := range [][]string{first, second} {
		for _, v := range src {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

func (m *merger) orderedPair(manual, analysis []string) []string {
	if !m.manualCounts() {
		manual = nil
	}
	if !m.analysisCounts() {
		analysis = nil
	}
	if m.prec == precAnalysis && !m.medium {
		return unionList(analysis, manual)
	}
	return unionList(manual, analysis)
}

func (m *merger) resolveStages() {
	var analysisStages []string
	if m.analysis.ExistingCI != nil {
		analysisStages = m.analysis.ExistingCI.Stages
	}

	stages := m.orderedPair(m.manual.Stages, analysisStages)
	if len(stages) > 0 {
		origin := types.OriginAnalysis
		if m.manualCounts() && len(m.manual.Stages) > 0 {
			origin = types.OriginManual
		}
		m.spec.Provenance["stages"] = origin
	}
	m.spec.Stages = buildFirst(stages)
}

func (m *merger) resolveLists() {
	m.spec.Tags = m.orderedPair(m.manual.Tags, nil)
	m.spec.CachePaths = m.orderedPair(m.manual.CachePaths, m.analysis.CachePaths)
	m.spec.ArtifactPaths = m.orderedPair(m.manual.ArtifactPaths, m.analysis.ArtifactPaths)
	if m.analysisCounts() {
		m.spec.TestCommands = append([]string(nil), m.analysis.TestCommands...)
	}
}

// buildFirst forces the "build" stage to the front when present.
func buildFirst(stages []string) []string {
	for i, s := range stages {
		if strings.EqualFold(s, "build") && i > 0 {
			out := make([]string, 0, len(stages))
			out = append(out, stages[i])
			out = append(out, stages[:i]...)
			out = append(out, stages[i+1:]...)
			return out
		}
	}
	return stages
}

// =============================================================================
// MAPS AND KEYED COLLECTIONS
// =============================================================================

func (m *merger) resolveVariables() {
	manualVars := m.manual.Variables
	analysisVars := m.analysis.Variables
	if !m.analysisCounts() {
		analysisVars = nil
	}
	// Variables are independent key/value facts, not conflicting
	// configuration intent: even AnalysisOnly unions manual entries in
	// additively, and a manual entry wins its key.
	manualWins := m.prec == precManual || m.strategy == types.AnalysisOnly

	if len(manualVars) == 0 && len(analysisVars) == 0 {
		return
	}
	out := make(map[string]string, len(manualVars)+len(analysisVars))
	for k, v := range analysisVars {
		out[k] = v
	}
	for k, v := range manualVars {
		if _, clash := out[k]; !clash || manualWins {
			out[k] = v
		}
	}
	m.spec.Variables = out
}

func (m *merger) resolveEnvironments() {
	var analysisEnvs []types.Environment
	if m.analysisCounts() && m.analysis.Deployment != nil {
		analysisEnvs = m.analysis.Deployment.Environments
	}
	manualEnvs := m.manual.Environments
	if !m.manualCounts() {
		manualEnvs = nil
	}

	first, second := manualEnvs, analysisEnvs
	if m.prec == precAnalysis && !m.medium {
		first, second = analysisEnvs, manualEnvs
	}

	seen := make(map[string]bool, len(first)+len(second))
	var out []types.Environment
	for _, src := range [][]types.Environment{first, second} {
		for _, e := range src {
			key := strings.ToLower(e.Name)
			if key == "" || seen[key] {
				continue // precedent entry fully replaces the other source's
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	m.spec.Environments = out
}

func (m *merger) resolveJobs() {
	if !m.manualCounts() {
		return
	}
	m.spec.CustomJobs = append([]types.CustomJob(nil), m.manual.CustomJobs...)
}

// =============================================================================
// REQUIRED DEFAULTS
// =============================================================================

func (m *merger) fillRequiredDefaults() {
	if m.spec.ProjectType == "" {
		m.spec.ProjectType = types.GenericType
		m.spec.Provenance["project_type"] = types.OriginDefault
		m.warn(types.WarnMissingRequiredField, types.AreaProject,
			fmt.Sprintf("project type undetermined, defaulting to %q", types.GenericType))
	}
	if len(m.spec.Stages) == 0 {
		m.spec.Stages = types.DefaultStages()
		m.spec.Provenance["stages"] = types.OriginDefault
		m.warn(types.WarnMissingRequiredField, "",
			"no stages supplied by any source, defaulting to build/test/deploy")
	}
}

func (m *merger) warn(kind types.WarnKind, area types.Area, msg string) {
	m.warnings = append(m.warnings, types.Warning{Kind: kind, Area: area, Message: msg})
}
