package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipewright/internal/types"
)

func TestAggregateProminenceWins(t *testing.T) {
	// nodejs: 3 markers at medium (score 6) vs docker: 1 marker at high (score 3).
	signals := []types.Signal{
		{
			Analyzer: "project", Confidence: types.ConfidenceMedium,
			ProjectType: "nodejs",
			Markers:     []string{"package.json", "package-lock.json", "yarn.lock"},
		},
		{
			Analyzer: "container", Confidence: types.ConfidenceHigh,
			ProjectType: "docker", Markers: []string{"Dockerfile"},
			Container: &types.Container{HasDockerfile: true},
		},
	}

	res := Aggregate(signals, nil)

	assert.Equal(t, "nodejs", res.ProjectType)
	assert.NotEmpty(t, res.RunID)
	require.NotNil(t, res.Container)
	assert.True(t, res.Container.HasDockerfile)
}

func TestAggregateTiebreakUsesPriorityOrder(t *testing.T) {
	// Equal scores: one marker each at the same confidence. nodejs outranks
	// golang in the fixed priority order.
	signals := []types.Signal{
		{ProjectType: "golang", Markers: []string{"go.mod"}, Confidence: types.ConfidenceMedium},
		{ProjectType: "nodejs", Markers: []string{"package.json"}, Confidence: types.ConfidenceMedium},
	}

	res := Aggregate(signals, nil)
	assert.Equal(t, "nodejs", res.ProjectType)
}

func TestAggregateNoMarkersYieldsUnknownLow(t *testing.T) {
	res := Aggregate([]types.Signal{{Analyzer: "project", Confidence: types.ConfidenceLow}}, nil)

	assert.Equal(t, UnknownType, res.ProjectType)
	assert.Equal(t, types.ConfidenceLow, res.AreaConfidence[types.AreaProject])
	assert.Equal(t, types.ConfidenceLow, res.Overall)
}

func TestAggregateOverallIsConservativeMinimum(t *testing.T) {
	signals := []types.Signal{
		{
			Analyzer: "project", Confidence: types.ConfidenceHigh,
			ProjectType: "golang", Markers: []string{"go.mod", "go.sum"},
		},
		{
			Analyzer: "ci", Confidence: types.ConfidenceMedium,
			ExistingCI: &types.ExistingCI{System: "gitlab"},
		},
	}

	res := Aggregate(signals, nil)

	assert.Equal(t, types.ConfidenceHigh, res.AreaConfidence[types.AreaProject])
	assert.Equal(t, types.ConfidenceMedium, res.AreaConfidence[types.AreaCI])
	assert.Equal(t, types.ConfidenceMedium, res.Overall)
}

func TestAggregateEmptyAreasDoNotDragOverallDown(t *testing.T) {
	// One high-confidence area and several analyzers that found nothing.
	signals := []types.Signal{
		{
			Analyzer: "project", Confidence: types.ConfidenceHigh,
			ProjectType: "golang", Markers: []string{"go.mod"},
		},
		{Analyzer: "deployment", Confidence: types.ConfidenceMedium},
		{Analyzer: "ci", Confidence: types.ConfidenceLow},
	}

	res := Aggregate(signals, nil)
	assert.Equal(t, types.ConfidenceHigh, res.Overall)
}

func TestAggregateCarriesFailureWarnings(t *testing.T) {
	warnings := []types.Warning{{Kind: types.WarnPartialSignalFailure, Message: "analyzer ci: timeout"}}

	res := Aggregate(nil, warnings)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, types.WarnPartialSignalFailure, res.Warnings[0].Kind)
	assert.Equal(t, UnknownType, res.ProjectType)
}

func TestAggregateUnionsListsAndFlags(t *testing.T) {
	signals := []types.Signal{
		{
			ProjectType: "nodejs", Markers: []string{"package.json"}, Confidence: types.ConfidenceHigh,
			TestCommands: []string{"npm test"},
			TestsEnabled: types.Set(true),
			CachePaths:   []string{"node_modules/"},
		},
		{
			Confidence:   types.ConfidenceMedium,
			TestCommands: []string{"npm test", "npm run e2e"},
			CachePaths:   []string{"NODE_MODULES/"}, // case-insensitive duplicate
			SecurityScan: types.Set(true),
			Dependencies: []types.Dependency{{Name: "express", Version: "4.18.0"}},
		},
	}

	res := Aggregate(signals, nil)

	assert.Equal(t, []string{"npm test", "npm run e2e"}, res.TestCommands)
	assert.Equal(t, []string{"node_modules/"}, res.CachePaths)
	assert.True(t, res.TestsEnabled.Value())
	assert.True(t, res.SecurityScan.Value())
	assert.False(t, res.DeployEnabled.IsSet())
	require.Len(t, res.Dependencies, 1)
}

func TestAggregateMergesDeploymentEnvironmentsCaseInsensitively(t *testing.T) {
	signals := []types.Signal{
		{
			Confidence: types.ConfidenceMedium,
			Deployment: &types.Deployment{HasConfig: true, Environments: []types.Environment{{Name: "Staging"}}},
		},
		{
			Confidence: types.ConfidenceMedium,
			Deployment: &types.Deployment{HasConfig: true, Environments: []types.Environment{{Name: "staging"}, {Name: "production"}}},
		},
	}

	res := Aggregate(signals, nil)

	require.NotNil(t, res.Deployment)
	require.Len(t, res.Deployment.Environments, 2)
}
