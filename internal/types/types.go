// Package types defines the domain model shared by the analyzers, the
// aggregator, the merge engine, and the template assembler: confidence-graded
// signals, the aggregated analysis result, tri-state manual configuration,
// and the fully resolved pipeline spec.
package types

import "strings"

// =============================================================================
// ANALYSIS AREAS
// =============================================================================

// Area names one concern an analyzer can report on. Per-area confidence on
// the aggregate result is keyed by Area.
type Area string

const (
	AreaProject      Area = "project"
	AreaDependencies Area = "dependencies"
	AreaCI           Area = "ci"
	AreaContainer    Area = "container"
	AreaDeployment   Area = "deployment"
)

// =============================================================================
// WARNINGS
// =============================================================================

// WarnKind classifies a non-fatal condition attached to a result.
type WarnKind string

const (
	// WarnPartialSignalFailure - one analyzer failed or timed out; its
	// fields are treated as absent and aggregation continues.
	WarnPartialSignalFailure WarnKind = "partial_signal_failure"

	// WarnMissingRequiredField - neither source supplied a mandatory
	// field; a documented default was substituted.
	WarnMissingRequiredField WarnKind = "missing_required_field"

	// WarnAutoEnabled - a boolean stage flag was OR-combined on at medium
	// confidence without either source confirming it at high confidence.
	WarnAutoEnabled WarnKind = "auto_enabled"
)

// Warning is a non-fatal finding surfaced to the caller alongside a result.
type Warning struct {
	Kind    WarnKind `yaml:"kind" json:"kind"`
	Area    Area     `yaml:"area,omitempty" json:"area,omitempty"`
	Message string   `yaml:"message" json:"message"`
}

// =============================================================================
// SIGNAL - one analyzer's partial finding
// =============================================================================

// Framework describes a detected application framework.
type Framework struct {
	Name     string            `yaml:"name" json:"name"`
	Version  string            `yaml:"version,omitempty" json:"version,omitempty"`
	Features []string          `yaml:"features,omitempty" json:"features,omitempty"`
	Config   map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

// BuildTool describes a detected build tool.
type BuildTool struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// Dependency is one package dependency extracted from a manifest.
type Dependency struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	Dev     bool   `yaml:"dev,omitempty" json:"dev,omitempty"`
}

// Environment is one deployment target. Environments are keyed by Name,
// compared case-insensitively.
type Environment struct {
	Name      string            `yaml:"name" json:"name"`
	URL       string            `yaml:"url,omitempty" json:"url,omitempty"`
	Variables map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Deployment captures detected deployment configuration.
type Deployment struct {
	HasConfig    bool          `yaml:"has_config" json:"has_config"`
	Environments []Environment `yaml:"environments,omitempty" json:"environments,omitempty"`
	Commands     []string      `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// Container captures detected container configuration.
type Container struct {
	HasDockerfile   bool     `yaml:"has_dockerfile" json:"has_dockerfile"`
	BaseImage       string   `yaml:"base_image,omitempty" json:"base_image,omitempty"`
	ComposeServices []string `yaml:"compose_services,omitempty" json:"compose_services,omitempty"`
}

// ExistingCI captures a CI system already configured in the repository.
type ExistingCI struct {
	System string   `yaml:"system" json:"system"`
	Stages []string `yaml:"stages,omitempty" json:"stages,omitempty"`
}

// Signal is one analyzer's partial, confidence-graded finding. Every field
// is individually optional: an empty string, nil pointer, or nil slice means
// "not observed", which is distinct from an explicit false or empty value
// (Opt fields carry that distinction for booleans).
type Signal struct {
	Analyzer   string
	Confidence Confidence

	ProjectType     string
	Markers         []string // root-level marker files supporting ProjectType
	Framework       *Framework
	BuildTool       *BuildTool
	LanguageVersion string

	TestCommands  []string
	ArtifactPaths []string
	CachePaths    []string
	Dependencies  []Dependency
	Variables     map[string]string

	TestsEnabled  Opt[bool]
	LintEnabled   Opt[bool]
	SecurityScan  Opt[bool]
	DeployEnabled Opt[bool]

	Deployment *Deployment
	Container  *Container
	ExistingCI *ExistingCI
}

// Areas lists the analysis areas this signal actually contributed data to.
func (s *Signal) Areas() []Area {
	var areas []Area
	if s.ProjectType != "" || s.Framework != nil || s.BuildTool != nil || s.LanguageVersion != "" {
		areas = append(areas, AreaProject)
	}
	if len(s.Dependencies) > 0 || s.SecurityScan.IsSet() || len(s.CachePaths) > 0 {
		areas = append(areas, AreaDependencies)
	}
	if s.ExistingCI != nil {
		areas = append(areas, AreaCI)
	}
	if s.Container != nil {
		areas = append(areas, AreaContainer)
	}
	if s.Deployment != nil {
		areas = append(areas, AreaDeployment)
	}
	return areas
}

// =============================================================================
// AGGREGATED ANALYSIS RESULT
// =============================================================================

// ProjectAnalysisResult is the union of all signals for one analysis run.
// Created fresh per run and discarded after merging.
type ProjectAnalysisResult struct {
	RunID string `yaml:"run_id" json:"run_id"`

	ProjectType     string     `yaml:"project_type,omitempty" json:"project_type,omitempty"`
	Framework       *Framework `yaml:"framework,omitempty" json:"framework,omitempty"`
	BuildTool       *BuildTool `yaml:"build_tool,omitempty" json:"build_tool,omitempty"`
	LanguageVersion string     `yaml:"language_version,omitempty" json:"language_version,omitempty"`

	TestCommands  []string          `yaml:"test_commands,omitempty" json:"test_commands,omitempty"`
	ArtifactPaths []string          `yaml:"artifact_paths,omitempty" json:"artifact_paths,omitempty"`
	CachePaths    []string          `yaml:"cache_paths,omitempty" json:"cache_paths,omitempty"`
	Dependencies  []Dependency      `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Variables     map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`

	TestsEnabled  Opt[bool] `yaml:"-" json:"-"`
	LintEnabled   Opt[bool] `yaml:"-" json:"-"`
	SecurityScan  Opt[bool] `yaml:"-" json:"-"`
	DeployEnabled Opt[bool] `yaml:"-" json:"-"`

	Deployment *Deployment `yaml:"deployment,omitempty" json:"deployment,omitempty"`
	Container  *Container  `yaml:"container,omitempty" json:"container,omitempty"`
	ExistingCI *ExistingCI `yaml:"existing_ci,omitempty" json:"existing_ci,omitempty"`

	AreaConfidence map[Area]Confidence `yaml:"area_confidence,omitempty" json:"area_confidence,omitempty"`
	Overall        Confidence          `yaml:"overall_confidence" json:"overall_confidence"`
	Warnings       []Warning           `yaml:"warnings,omitempty" json:"warnings,omitempty"`
}

// =============================================================================
// MANUAL CONFIGURATION
// =============================================================================

// CustomJob is a user-declared pipeline job.
type CustomJob struct {
	Name   string   `yaml:"name" json:"name"`
	Stage  string   `yaml:"stage" json:"stage"`
	Script []string `yaml:"script" json:"script"`
}

// ManualConfiguration is the user-declared subset of pipeline options.
// Every scalar and boolean is tri-state via Opt; nil slices and nil maps
// mean "not specified" while non-nil empty ones are deliberate.
type ManualConfiguration struct {
	ProjectType     Opt[string]
	LanguageVersion Opt[string]
	Image           Opt[string]

	Stages []string
	Tags   []string

	TestsEnabled  Opt[bool]
	LintEnabled   Opt[bool]
	SecurityScan  Opt[bool]
	DeployEnabled Opt[bool]

	Variables    map[string]string
	Environments []Environment
	CustomJobs   []CustomJob

	CachePaths    []string
	ArtifactPaths []string
}

// IsZero reports whether no field at all was specified.
func (m *ManualConfiguration) IsZero() bool {
	if m == nil {
		return true
	}
	return !m.ProjectType.IsSet() && !m.LanguageVersion.IsSet() && !m.Image.IsSet() &&
		m.Stages == nil && m.Tags == nil &&
		!m.TestsEnabled.IsSet() && !m.LintEnabled.IsSet() &&
		!m.SecurityScan.IsSet() && !m.DeployEnabled.IsSet() &&
		m.Variables == nil && m.Environments == nil && m.CustomJobs == nil &&
		m.CachePaths == nil && m.ArtifactPaths == nil
}

// =============================================================================
// UNIFIED PIPELINE SPEC
// =============================================================================

// Origin records where a resolved field's value came from.
type Origin string

const (
	OriginManual   Origin = "manual"
	OriginAnalysis Origin = "analysis"
	OriginDefault  Origin = "default"
)

// UnifiedPipelineSpec is the fully resolved configuration consumed by the
// template assembler. No required field is unset. Provenance maps field
// names to the source that decided them, for auditability.
type UnifiedPipelineSpec struct {
	ProjectType     string `yaml:"project_type" json:"project_type"`
	LanguageVersion string `yaml:"language_version,omitempty" json:"language_version,omitempty"`
	Image           string `yaml:"image,omitempty" json:"image,omitempty"`

	Stages []string `yaml:"stages" json:"stages"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	TestsEnabled  bool `yaml:"tests_enabled" json:"tests_enabled"`
	LintEnabled   bool `yaml:"lint_enabled" json:"lint_enabled"`
	SecurityScan  bool `yaml:"security_scan" json:"security_scan"`
	DeployEnabled bool `yaml:"deploy_enabled" json:"deploy_enabled"`

	Variables    map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
	Environments []Environment     `yaml:"environments,omitempty" json:"environments,omitempty"`
	CustomJobs   []CustomJob       `yaml:"custom_jobs,omitempty" json:"custom_jobs,omitempty"`

	CachePaths    []string `yaml:"cache_paths,omitempty" json:"cache_paths,omitempty"`
	ArtifactPaths []string `yaml:"artifact_paths,omitempty" json:"artifact_paths,omitempty"`
	TestCommands  []string `yaml:"test_commands,omitempty" json:"test_commands,omitempty"`

	Provenance map[string]Origin `yaml:"provenance,omitempty" json:"provenance,omitempty"`
}

// GenericType is the fallback project type when neither source decides one.
const GenericType = "generic"

// DefaultStages is the documented default stage list.
func DefaultStages() []string {
	return []string{"build", "test", "deploy"}
}

// =============================================================================
// MERGE STRATEGY
// =============================================================================

// MergeStrategy names a policy for reconciling analysis-derived and manual
// configuration.
type MergeStrategy string

const (
	PreferManual     MergeStrategy = "prefer-manual"
	PreferAnalysis   MergeStrategy = "prefer-analysis"
	IntelligentMerge MergeStrategy = "intelligent"
	AnalysisOnly     MergeStrategy = "analysis-only"
	ManualOnly       MergeStrategy = "manual-only"
)

// Strategies lists every merge strategy in display order.
func Strategies() []MergeStrategy {
	return []MergeStrategy{PreferManual, PreferAnalysis, IntelligentMerge, AnalysisOnly, ManualOnly}
}

// ParseStrategy maps a flag value to a MergeStrategy.
func ParseStrategy(s string) (MergeStrategy, bool) {
	switch MergeStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case PreferManual:
		return PreferManual, true
	case PreferAnalysis:
		return PreferAnalysis, true
	case IntelligentMerge:
		return IntelligentMerge, true
	case AnalysisOnly:
		return AnalysisOnly, true
	case ManualOnly:
		return ManualOnly, true
	}
	return "", false
}
