package template

import "pipewright/internal/types"

// Defaults is the pipeline-wide default block: applied to any job that does
// not override the corresponding field.
type Defaults struct {
	Image         string   `yaml:"image,omitempty" json:"image,omitempty"`
	CachePaths    []string `yaml:"cache_paths,omitempty" json:"cache_paths,omitempty"`
	ArtifactPaths []string `yaml:"artifact_paths,omitempty" json:"artifact_paths,omitempty"`
}

// Job is one pipeline job, attached to a stage.
type Job struct {
	Stage         string             `yaml:"stage" json:"stage"`
	Image         string             `yaml:"image,omitempty" json:"image,omitempty"`
	Script        []string           `yaml:"script" json:"script"`
	Variables     map[string]string  `yaml:"variables,omitempty" json:"variables,omitempty"`
	ArtifactPaths []string           `yaml:"artifact_paths,omitempty" json:"artifact_paths,omitempty"`
	Reports       map[string]string  `yaml:"reports,omitempty" json:"reports,omitempty"`
	Environment   *types.Environment `yaml:"environment,omitempty" json:"environment,omitempty"`
	Tags          []string           `yaml:"tags,omitempty" json:"tags,omitempty"`
	AllowFailure  bool               `yaml:"allow_failure,omitempty" json:"allow_failure,omitempty"`
}

// Pipeline is the assembled output: plain data with no behavior attached,
// ready for textual emission by the serialization layer.
type Pipeline struct {
	Stages    []string          `yaml:"stages" json:"stages"`
	Jobs      map[string]Job    `yaml:"jobs" json:"jobs"`
	Variables map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
	Defaults  Defaults          `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// JobOrder preserves a stable emission order for the job map.
	JobOrder []string `yaml:"-" json:"-"`
}

// addJob appends a job, keeping the emission order stable.
func (p *Pipeline) addJob(name string, job Job) {
	if _, exists := p.Jobs[name]; !exists {
		p.JobOrder = append(p.JobOrder, name)
	}
	p.Jobs[name] = job
}
