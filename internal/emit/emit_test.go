package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pipewright/internal/template"
	"pipewright/internal/types"
)

func samplePipeline() *template.Pipeline {
	return &template.Pipeline{
		Stages: []string{"build", "test", "deploy"},
		Jobs: map[string]template.Job{
			"build": {
				Stage:         "build",
				Script:        []string{"npm ci", "npm run build"},
				ArtifactPaths: []string{"dist/"},
			},
			"test": {
				Stage:   "test",
				Script:  []string{"npm test"},
				Reports: map[string]string{"junit": "junit.xml"},
			},
			"deploy-production": {
				Stage:       "deploy",
				Script:      []string{"echo deploying to production"},
				Environment: &types.Environment{Name: "production", URL: "https://example.com"},
			},
		},
		JobOrder:  []string{"build", "test", "deploy-production"},
		Variables: map[string]string{"NODE_ENV": "production"},
		Defaults: template.Defaults{
			Image:      "node:20-alpine",
			CachePaths: []string{"node_modules/"},
		},
	}
}

func TestGitLabCI(t *testing.T) {
	t.Run("output parses as yaml", func(t *testing.T) {
		data, err := GitLabCI(samplePipeline())
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Contains(t, doc, "stages")
		assert.Contains(t, doc, "build")
		assert.Contains(t, doc, "test")
		assert.Contains(t, doc, "deploy-production")
	})

	t.Run("stage order preserved", func(t *testing.T) {
		data, err := GitLabCI(samplePipeline())
		require.NoError(t, err)

		var doc struct {
			Stages []string `yaml:"stages"`
		}
		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Equal(t, []string{"build", "test", "deploy"}, doc.Stages)
	})

	t.Run("jobs emitted in assembler order", func(t *testing.T) {
		data, err := GitLabCI(samplePipeline())
		require.NoError(t, err)

		text := string(data)
		build := strings.Index(text, "\nbuild:")
		test := strings.Index(text, "\ntest:")
		deploy := strings.Index(text, "\ndeploy-production:")
		require.NotEqual(t, -1, build)
		require.NotEqual(t, -1, test)
		require.NotEqual(t, -1, deploy)
		assert.Less(t, build, test)
		assert.Less(t, test, deploy)
	})

	t.Run("environment and reports rendered", func(t *testing.T) {
		data, err := GitLabCI(samplePipeline())
		require.NoError(t, err)

		var doc struct {
			Deploy struct {
				Environment struct {
					Name string `yaml:"name"`
					URL  string `yaml:"url"`
				} `yaml:"environment"`
			} `yaml:"deploy-production"`
			Test struct {
				Artifacts struct {
					Reports map[string]string `yaml:"reports"`
				} `yaml:"artifacts"`
			} `yaml:"test"`
		}
		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Equal(t, "production", doc.Deploy.Environment.Name)
		assert.Equal(t, "https://example.com", doc.Deploy.Environment.URL)
		assert.Equal(t, "junit.xml", doc.Test.Artifacts.Reports["junit"])
	})

	t.Run("output is deterministic", func(t *testing.T) {
		first, err := GitLabCI(samplePipeline())
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := GitLabCI(samplePipeline())
			require.NoError(t, err)
			assert.Equal(t, string(first), string(again))
		}
	})

	t.Run("unknown job in order is an error", func(t *testing.T) {
		p := samplePipeline()
		p.JobOrder = append(p.JobOrder, "ghost")
		_, err := GitLabCI(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})
}

func TestWriteFile(t *testing.T) {
	t.Run("writes new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".gitlab-ci.yml")
		require.NoError(t, WriteFile(path, []byte("stages: [build]\n")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "stages: [build]\n", string(data))
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".gitlab-ci.yml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		require.NoError(t, WriteFile(path, []byte("new")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteFile(filepath.Join(dir, "out.yml"), []byte("x")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.yml", entries[0].Name())
	})
}
