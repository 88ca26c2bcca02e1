package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

func newWorkspace(t *testing.T, files map[string]string) repo.Provider {
	t.Helper()
	tmp := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(tmp, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	l, err := repo.NewLocal(tmp)
	require.NoError(t, err)
	return l
}

func TestProjectAnalyzerNode(t *testing.T) {
	provider := newWorkspace(t, map[string]string{
		"package.json": `{
			"dependencies": {"express": "^4.18.0"},
			"scripts": {"test": "jest", "lint": "eslint .", "build": "tsc"},
			"engines": {"node": ">=18.0"}
		}`,
		"package-lock.json": "{}",
	})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)

	assert.Equal(t, "nodejs", sig.ProjectType)
	assert.Equal(t, types.ConfidenceHigh, sig.Confidence)
	assert.ElementsMatch(t, []string{"package.json", "package-lock.json"}, sig.Markers)
	require.NotNil(t, sig.Framework)
	assert.Equal(t, "express", sig.Framework.Name)
	assert.Equal(t, "18.0", sig.LanguageVersion)
	assert.Contains(t, sig.TestCommands, "npm test")
	assert.True(t, sig.TestsEnabled.Value())
	assert.True(t, sig.LintEnabled.Value())
}

func TestProjectAnalyzerNodeFrameworkPriority(t *testing.T) {
	// next depends on react; next must win.
	provider := newWorkspace(t, map[string]string{
		"package.json": `{"dependencies": {"react": "^18.0.0", "next": "^14.0.0"}}`,
	})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)
	require.NotNil(t, sig.Framework)
	assert.Equal(t, "nextjs", sig.Framework.Name)
}

func TestProjectAnalyzerGo(t *testing.T) {
	provider := newWorkspace(t, map[string]string{
		"go.mod": "module demo\n\ngo 1.22.1\n\nrequire github.com/gin-gonic/gin v1.11.0\n",
		"go.sum": "",
	})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)

	assert.Equal(t, "golang", sig.ProjectType)
	assert.Equal(t, "1.22.1", sig.LanguageVersion)
	require.NotNil(t, sig.Framework)
	assert.Equal(t, "gin", sig.Framework.Name)
	assert.Contains(t, sig.TestCommands, "go test ./...")
}

func TestProjectAnalyzerDotnet(t *testing.T) {
	provider := newWorkspace(t, map[string]string{
		"app.csproj":  "<Project/>",
		"global.json": `{"sdk": {"version": "9.0.103"}}`,
	})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)

	assert.Equal(t, "dotnet", sig.ProjectType)
	assert.Equal(t, "9.0", sig.LanguageVersion)
	assert.Equal(t, types.ConfidenceHigh, sig.Confidence)
}

func TestProjectAnalyzerEmptyRepo(t *testing.T) {
	provider := newWorkspace(t, map[string]string{"README.md": "# hi"})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)

	// Nothing found is absent data at low confidence, not an error.
	assert.Equal(t, "", sig.ProjectType)
	assert.Equal(t, types.ConfidenceLow, sig.Confidence)
	assert.Empty(t, sig.Markers)
}

func TestProjectAnalyzerMalformedManifest(t *testing.T) {
	provider := newWorkspace(t, map[string]string{"package.json": "{not json"})

	sig, err := (&ProjectAnalyzer{}).Analyze(context.Background(), provider)
	require.NoError(t, err)

	// Marker-only finding survives a malformed manifest.
	assert.Equal(t, "nodejs", sig.ProjectType)
	assert.Equal(t, types.ConfidenceMedium, sig.Confidence)
	assert.Nil(t, sig.Framework)
}
