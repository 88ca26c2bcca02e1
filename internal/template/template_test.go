package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipewright/internal/types"
)

func baseSpec(projectType string) *types.UnifiedPipelineSpec {
	return &types.UnifiedPipelineSpec{
		ProjectType:  projectType,
		Stages:       []string{"build", "test", "deploy"},
		TestsEnabled: true,
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	t.Run("dedicated template by type", func(t *testing.T) {
		tmpl, err := reg.For("nodejs")
		require.NoError(t, err)
		assert.Equal(t, "nodejs", tmpl.Name())
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		tmpl, err := reg.For("NodeJS")
		require.NoError(t, err)
		assert.Equal(t, "nodejs", tmpl.Name())
	})

	t.Run("unknown type falls back to generic", func(t *testing.T) {
		tmpl, err := reg.For("fortran")
		require.NoError(t, err)
		assert.Equal(t, "generic", tmpl.Name())
	})

	t.Run("no fallback yields incompatible error with supported set", func(t *testing.T) {
		empty := NewEmptyRegistry()
		empty.Register(&goTemplate{})
		_, err := empty.For("fortran")
		var incompat *IncompatibleError
		require.ErrorAs(t, err, &incompat)
		assert.Equal(t, "fortran", incompat.Type)
		assert.Contains(t, incompat.Supported, "golang")
	})
}

func TestAssembleStageInvariants(t *testing.T) {
	reg := NewRegistry()

	t.Run("build forced first", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.Stages = []string{"deploy", "test", "build"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		require.NotEmpty(t, p.Stages)
		assert.Equal(t, "build", p.Stages[0])
	})

	t.Run("test inserted after build when tests enabled", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.Stages = []string{"build", "deploy"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "test", "deploy"}, p.Stages)
	})

	t.Run("stages de-duplicated case-insensitively", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.Stages = []string{"Build", "build", "TEST", "test"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "test"}, p.Stages)
	})

	t.Run("every job lands on a declared stage", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.LintEnabled = true
		spec.SecurityScan = true
		spec.DeployEnabled = true
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		declared := make(map[string]bool)
		for _, s := range p.Stages {
			declared[s] = true
		}
		for name, job := range p.Jobs {
			assert.Truef(t, declared[job.Stage], "job %s references undeclared stage %s", name, job.Stage)
		}
	})
}

func TestAssembleAdditiveDefaults(t *testing.T) {
	reg := NewRegistry()

	t.Run("spec variables win over template defaults", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.Variables = map[string]string{"GOCACHE": "/custom/cache"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "/custom/cache", p.Variables["GOCACHE"])
	})

	t.Run("template variables fill unset keys", func(t *testing.T) {
		spec := baseSpec("golang")
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "$CI_PROJECT_DIR/.go-build-cache", p.Variables["GOCACHE"])
	})

	t.Run("spec image wins over template image", func(t *testing.T) {
		spec := baseSpec("python")
		spec.Image = "python:custom"
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "python:custom", p.Defaults.Image)
	})

	t.Run("template image applies when spec has none", func(t *testing.T) {
		spec := baseSpec("python")
		spec.LanguageVersion = "3.11"
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "python:3.11-slim", p.Defaults.Image)
	})

	t.Run("cache paths appended not overwritten", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.CachePaths = []string{"custom-cache/"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "custom-cache/", p.Defaults.CachePaths[0])
		assert.Greater(t, len(p.Defaults.CachePaths), 1)
	})
}

func TestAssembleValidation(t *testing.T) {
	reg := NewRegistry()

	t.Run("unsupported version aborts with no output", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.LanguageVersion = "14"
		p, err := Assemble(spec, reg)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "nodejs", verr.Template)
		assert.Nil(t, p)
	})

	t.Run("version in supported set passes", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.LanguageVersion = "20"
		_, err := Assemble(spec, reg)
		require.NoError(t, err)
	})

	t.Run("major version matched against set precision", func(t *testing.T) {
		spec := baseSpec("java")
		spec.LanguageVersion = "17.0.2"
		_, err := Assemble(spec, reg)
		require.NoError(t, err)
	})

	t.Run("go accepts any 1.x version", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.LanguageVersion = "1.23"
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "golang:1.23", p.Defaults.Image)
	})
}

func TestAssembleJobs(t *testing.T) {
	reg := NewRegistry()

	t.Run("test job omitted when tests disabled", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.TestsEnabled = false
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		_, ok := p.Jobs["test"]
		assert.False(t, ok)
	})

	t.Run("detected test commands used over template fallback", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.TestCommands = []string{"npm run test:ci"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Contains(t, p.Jobs["test"].Script, "npm run test:ci")
	})

	t.Run("deploy job per environment with variables attached", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.DeployEnabled = true
		spec.Environments = []types.Environment{
			{Name: "staging", Variables: map[string]string{"API_URL": "https://staging.example.com"}},
			{Name: "production"},
		}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		staging, ok := p.Jobs["deploy-staging"]
		require.True(t, ok)
		assert.Equal(t, "https://staging.example.com", staging.Variables["API_URL"])
		_, ok = p.Jobs["deploy-production"]
		assert.True(t, ok)
	})

	t.Run("deploy without environments targets production", func(t *testing.T) {
		spec := baseSpec("python")
		spec.DeployEnabled = true
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		_, ok := p.Jobs["deploy-production"]
		assert.True(t, ok)
	})

	t.Run("security scan job allows failure", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.SecurityScan = true
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		sec, ok := p.Jobs["security-scan"]
		require.True(t, ok)
		assert.True(t, sec.AllowFailure)
	})

	t.Run("custom job extends the stage list", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.CustomJobs = []types.CustomJob{
			{Name: "docs", Stage: "publish", Script: []string{"make docs"}},
		}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Contains(t, p.Stages, "publish")
		assert.Equal(t, "publish", p.Jobs["docs"].Stage)
	})

	t.Run("custom job without stage lands on the last stage", func(t *testing.T) {
		spec := baseSpec("golang")
		spec.CustomJobs = []types.CustomJob{
			{Name: "notify", Script: []string{"./notify.sh"}},
		}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, p.Stages[len(p.Stages)-1], p.Jobs["notify"].Stage)
	})

	t.Run("job order is deterministic", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.LintEnabled = true
		spec.SecurityScan = true
		first, err := Assemble(spec, reg)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := Assemble(spec, reg)
			require.NoError(t, err)
			assert.Equal(t, first.JobOrder, again.JobOrder)
		}
	})
}

func TestGenericTemplate(t *testing.T) {
	reg := NewRegistry()

	t.Run("generic accepts unknown project type", func(t *testing.T) {
		spec := baseSpec("elixir")
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "alpine:latest", p.Defaults.Image)
		require.Contains(t, p.Jobs, "build")
	})

	t.Run("generic never rejects a version", func(t *testing.T) {
		spec := baseSpec(types.GenericType)
		spec.LanguageVersion = "99"
		_, err := Assemble(spec, reg)
		require.NoError(t, err)
	})
}

func TestTemplateFinalize(t *testing.T) {
	reg := NewRegistry()

	t.Run("node test job gets junit report", func(t *testing.T) {
		spec := baseSpec("nodejs")
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "junit.xml", p.Jobs["test"].Reports["junit"])
	})

	t.Run("python test job gets junit report", func(t *testing.T) {
		spec := baseSpec("python")
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		assert.Equal(t, "report.xml", p.Jobs["test"].Reports["junit"])
	})

	t.Run("no report attached when tests disabled", func(t *testing.T) {
		spec := baseSpec("nodejs")
		spec.TestsEnabled = false
		spec.Stages = []string{"build"}
		p, err := Assemble(spec, reg)
		require.NoError(t, err)
		_, ok := p.Jobs["test"]
		assert.False(t, ok)
	})
}
