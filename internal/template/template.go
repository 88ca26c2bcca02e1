// Package template turns a resolved pipeline spec into the final pipeline
// shape: an ordered stage list, a job map, and variable/default maps.
// Templates are registered per project type; a generic template catches
// everything without a dedicated one. Stage invariants are enforced by the
// assembler regardless of which template runs.
package template

import (
	"fmt"
	"sort"
	"strings"

	"pipewright/internal/types"
)

// TemplateDefaults are the template's additive defaults: variables only fill
// unset keys, the image only applies when the spec has none, and cache and
// artifact paths are appended to, never overwritten.
type TemplateDefaults struct {
	Variables     map[string]string
	Image         string
	CachePaths    []string
	ArtifactPaths []string
}

// Template generates the pipeline shape for the project types it supports.
type Template interface {
	Name() string

	// Supports lists the project types this template accepts. A spec
	// outside this set is a validation error.
	Supports() []string

	// Validate checks template-specific constraints (e.g. the language
	// version belongs to the supported set). Runs before any output is
	// produced; a failure aborts assembly with no partial result.
	Validate(spec *types.UnifiedPipelineSpec) error

	// Defaults returns the template's additive defaults.
	Defaults(spec *types.UnifiedPipelineSpec) TemplateDefaults

	// Jobs builds the job map for the spec's stages.
	Jobs(spec *types.UnifiedPipelineSpec) map[string]Job

	// Finalize applies post-generation mutations to the assembled
	// pipeline, e.g. attaching test-report paths to test jobs.
	Finalize(spec *types.UnifiedPipelineSpec, p *Pipeline)
}

// =============================================================================
// ERRORS
// =============================================================================

// IncompatibleError means no template (and no generic fallback) accepts the
// spec's project type. Fatal; remediation messaging is the caller's job.
type IncompatibleError struct {
	Type      string
	Supported []string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("no template for project type %q (supported: %s)",
		e.Type, strings.Join(e.Supported, ", "))
}

// ValidationError means a template rejected the spec. Fatal; assembly
// aborts before producing any partial output.
type ValidationError struct {
	Template string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("template %s rejected spec: %s", e.Template, e.Reason)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry maps project types to templates. Adding a project type means
// registering a template variant; the merge engine is untouched.
type Registry struct {
	byType  map[string]Template
	generic Template
}

// NewRegistry returns a registry with the built-in templates installed.
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Template)}
	r.Register(&nodeTemplate{})
	r.Register(&pythonTemplate{})
	r.Register(&goTemplate{})
	r.Register(&javaTemplate{})
	r.Register(&dotnetTemplate{})
	r.SetGeneric(&genericTemplate{})
	return r
}

// NewEmptyRegistry returns a registry with nothing installed, for callers
// composing their own template set.
func NewEmptyRegistry() *Registry {
	return &Registry{byType: make(map[string]Template)}
}

// Register installs a template for every project type it supports.
func (r *Registry) Register(t Template) {
	for _, ptype := range t.Supports() {
		r.byType[strings.ToLower(ptype)] = t
	}
}

// SetGeneric installs the fallback template.
func (r *Registry) SetGeneric(t Template) {
	r.generic = t
}

// For returns the template for a project type, falling back to the generic
// template when none is registered.
func (r *Registry) For(projectType string) (Template, error) {
	if t, ok := r.byType[strings.ToLower(projectType)]; ok {
		return t, nil
	}
	if r.generic != nil {
		return r.generic, nil
	}
	return nil, &IncompatibleError{Type: projectType, Supported: r.SupportedTypes()}
}

// SupportedTypes lists every registered project type, sorted.
func (r *Registry) SupportedTypes() []string {
	out := make([]string, 0, len(r.byType))
	for ptype := range r.byType {
		out = append(out, ptype)
	}
	sort.Strings(out)
	return out
}

// supports reports whether the template declares the given type.
func supports(t Template, projectType string) bool {
	for _, s := range t.Supports() {
		if strings.EqualFold(s, projectType) {
			return true
		}
	}
	return false
}
