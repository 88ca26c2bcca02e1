// Package emit serializes an assembled pipeline to GitLab CI YAML. Output
// order is deterministic: stages, variables, defaults, then jobs in the
// assembler's emission order, with map keys sorted.
package emit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"pipewright/internal/template"
)

// GitLabCI renders the pipeline as .gitlab-ci.yml content.
func GitLabCI(p *template.Pipeline) ([]byte, error) {
	root := mapping()

	appendPair(root, "stages", stringSeq(p.Stages))

	if len(p.Variables) > 0 {
		appendPair(root, "variables", stringMap(p.Variables))
	}

	if def := defaultsNode(p.Defaults); def != nil {
		appendPair(root, "default", def)
	}

	for _, name := range p.JobOrder {
		job, ok := p.Jobs[name]
		if !ok {
			return nil, fmt.Errorf("job order references unknown job %q", name)
		}
		appendPair(root, name, jobNode(job))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding pipeline: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding pipeline: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the rendered pipeline atomically: content lands in a
// temp file first and is renamed into place, so watchers never observe a
// half-written config.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pipewright-*.yml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing pipeline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing pipeline: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func defaultsNode(d template.Defaults) *yaml.Node {
	node := mapping()
	if d.Image != "" {
		appendPair(node, "image", scalar(d.Image))
	}
	if len(d.CachePaths) > 0 {
		cache := mapping()
		appendPair(cache, "paths", stringSeq(d.CachePaths))
		appendPair(node, "cache", cache)
	}
	if len(d.ArtifactPaths) > 0 {
		artifacts := mapping()
		appendPair(artifacts, "paths", stringSeq(d.ArtifactPaths))
		appendPair(node, "artifacts", artifacts)
	}
	if len(node.Content) == 0 {
		return nil
	}
	return node
}

func jobNode(job template.Job) *yaml.Node {
	node := mapping()
	appendPair(node, "stage", scalar(job.Stage))
	if job.Image != "" {
		appendPair(node, "image", scalar(job.Image))
	}
	appendPair(node, "script", stringSeq(job.Script))
	if len(job.Variables) > 0 {
		appendPair(node, "variables", stringMap(job.Variables))
	}
	if len(job.ArtifactPaths) > 0 || len(job.Reports) > 0 {
		artifacts := mapping()
		if len(job.ArtifactPaths) > 0 {
			appendPair(artifacts, "paths", stringSeq(job.ArtifactPaths))
		}
		if len(job.Reports) > 0 {
			appendPair(artifacts, "reports", stringMap(job.Reports))
		}
		appendPair(node, "artifacts", artifacts)
	}
	if job.Environment != nil {
		env := mapping()
		appendPair(env, "name", scalar(job.Environment.Name))
		if job.Environment.URL != "" {
			appendPair(env, "url", scalar(job.Environment.URL))
		}
		appendPair(node, "environment", env)
	}
	if len(job.Tags) > 0 {
		appendPair(node, "tags", stringSeq(job.Tags))
	}
	if job.AllowFailure {
		appendPair(node, "allow_failure", boolScalar(true))
	}
	return node
}

// =============================================================================
// NODE HELPERS
// =============================================================================

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func boolScalar(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", v)}
}

func stringSeq(values []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		node.Content = append(node.Content, scalar(v))
	}
	return node
}

func stringMap(m map[string]string) *yaml.Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	node := mapping()
	for _, k := range keys {
		appendPair(node, k, scalar(m[k]))
	}
	return node
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}
