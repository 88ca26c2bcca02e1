// Package config loads and saves the project configuration file. The file
// format is plain YAML; absent keys stay absent through the round trip, so
// an unset boolean is distinguishable from an explicit false downstream.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"pipewright/internal/types"
)

// DefaultFileName is the configuration file looked up at the repository root.
const DefaultFileName = ".pipewright.yaml"

// File is the parsed configuration: the manual pipeline options plus
// file-level settings that are not part of the merge input.
type File struct {
	Manual   types.ManualConfiguration
	Strategy types.MergeStrategy
	Output   string
}

// fileSchema is the on-disk shape. Pointers keep tri-state semantics: a nil
// pointer means the key was absent, not false or empty.
type fileSchema struct {
	ProjectType     *string `yaml:"project_type,omitempty"`
	LanguageVersion *string `yaml:"language_version,omitempty"`
	Image           *string `yaml:"image,omitempty"`

	Stages []string `yaml:"stages,omitempty"`
	Tags   []string `yaml:"tags,omitempty"`

	TestsEnabled  *bool `yaml:"tests_enabled,omitempty"`
	LintEnabled   *bool `yaml:"lint_enabled,omitempty"`
	SecurityScan  *bool `yaml:"security_scan,omitempty"`
	DeployEnabled *bool `yaml:"deploy_enabled,omitempty"`

	Variables    map[string]string   `yaml:"variables,omitempty"`
	Environments []types.Environment `yaml:"environments,omitempty"`
	CustomJobs   []types.CustomJob   `yaml:"custom_jobs,omitempty"`

	CachePaths    []string `yaml:"cache_paths,omitempty"`
	ArtifactPaths []string `yaml:"artifact_paths,omitempty"`

	Strategy string `yaml:"strategy,omitempty"`
	Output   string `yaml:"output,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadOrDefault behaves like Load but treats a missing file as an empty
// configuration, the normal state for analysis-only runs.
func LoadOrDefault(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{Strategy: types.IntelligentMerge}, nil
	}
	return f, err
}

// Parse decodes and validates configuration content. Unknown keys are
// rejected so typos surface instead of silently dropping settings.
func Parse(data []byte) (*File, error) {
	var schema fileSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	f := &File{
		Manual: types.ManualConfiguration{
			Stages:        schema.Stages,
			Tags:          schema.Tags,
			Variables:     schema.Variables,
			Environments:  schema.Environments,
			CustomJobs:    schema.CustomJobs,
			CachePaths:    schema.CachePaths,
			ArtifactPaths: schema.ArtifactPaths,
		},
		Strategy: types.IntelligentMerge,
		Output:   schema.Output,
	}
	setOpt(&f.Manual.ProjectType, schema.ProjectType)
	setOpt(&f.Manual.LanguageVersion, schema.LanguageVersion)
	setOpt(&f.Manual.Image, schema.Image)
	setOpt(&f.Manual.TestsEnabled, schema.TestsEnabled)
	setOpt(&f.Manual.LintEnabled, schema.LintEnabled)
	setOpt(&f.Manual.SecurityScan, schema.SecurityScan)
	setOpt(&f.Manual.DeployEnabled, schema.DeployEnabled)

	if schema.Strategy != "" {
		strategy, ok := types.ParseStrategy(schema.Strategy)
		if !ok {
			return nil, fmt.Errorf("unknown merge strategy %q", schema.Strategy)
		}
		f.Strategy = strategy
	}

	if err := validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Save writes the configuration back out, emitting only the keys that were
// actually set so the file stays minimal.
func Save(path string, f *File) error {
	schema := fileSchema{
		Stages:        f.Manual.Stages,
		Tags:          f.Manual.Tags,
		Variables:     f.Manual.Variables,
		Environments:  f.Manual.Environments,
		CustomJobs:    f.Manual.CustomJobs,
		CachePaths:    f.Manual.CachePaths,
		ArtifactPaths: f.Manual.ArtifactPaths,
		Output:        f.Output,
	}
	if f.Strategy != "" && f.Strategy != types.IntelligentMerge {
		schema.Strategy = string(f.Strategy)
	}
	schema.ProjectType = optPtr(f.Manual.ProjectType)
	schema.LanguageVersion = optPtr(f.Manual.LanguageVersion)
	schema.Image = optPtr(f.Manual.Image)
	schema.TestsEnabled = optPtr(f.Manual.TestsEnabled)
	schema.LintEnabled = optPtr(f.Manual.LintEnabled)
	schema.SecurityScan = optPtr(f.Manual.SecurityScan)
	schema.DeployEnabled = optPtr(f.Manual.DeployEnabled)

	data, err := yaml.Marshal(&schema)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func validate(f *File) error {
	seen := make(map[string]bool)
	for _, cj := range f.Manual.CustomJobs {
		if cj.Name == "" {
			return errors.New("custom job missing a name")
		}
		if seen[cj.Name] {
			return fmt.Errorf("duplicate custom job %q", cj.Name)
		}
		seen[cj.Name] = true
	}
	for _, env := range f.Manual.Environments {
		if env.Name == "" {
			return errors.New("environment missing a name")
		}
	}
	return nil
}

func setOpt[T any](dst *types.Opt[T], src *T) {
	if src != nil {
		*dst = types.Set(*src)
	}
}

func optPtr[T any](o types.Opt[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
