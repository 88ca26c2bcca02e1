package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubAnalyzer is a controllable Analyzer for runner tests.
type stubAnalyzer struct {
	name   string
	signal *types.Signal
	err    error
	delay  time.Duration
	panics bool
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(ctx context.Context, _ repo.Provider) (*types.Signal, error) {
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.signal, s.err
}

func TestRunnerJoinsAllSignals(t *testing.T) {
	r := NewRunner(nil, WithAnalyzers(
		&stubAnalyzer{name: "a", signal: &types.Signal{ProjectType: "nodejs", Confidence: types.ConfidenceHigh}},
		&stubAnalyzer{name: "b", signal: &types.Signal{Confidence: types.ConfidenceLow}},
	))

	signals, warnings := r.Run(context.Background(), nil)

	require.Len(t, signals, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, "a", signals[0].Analyzer)
	assert.Equal(t, "b", signals[1].Analyzer)
}

func TestRunnerFailureBecomesWarning(t *testing.T) {
	r := NewRunner(nil, WithAnalyzers(
		&stubAnalyzer{name: "ok", signal: &types.Signal{ProjectType: "golang"}},
		&stubAnalyzer{name: "broken", err: errors.New("disk on fire")},
	))

	signals, warnings := r.Run(context.Background(), nil)

	require.Len(t, signals, 1)
	assert.Equal(t, "ok", signals[0].Analyzer)
	require.Len(t, warnings, 1)
	assert.Equal(t, types.WarnPartialSignalFailure, warnings[0].Kind)
	assert.Contains(t, warnings[0].Message, "broken")
	assert.Contains(t, warnings[0].Message, "disk on fire")
}

func TestRunnerTimeoutBecomesWarning(t *testing.T) {
	r := NewRunner(nil,
		WithTimeout(20*time.Millisecond),
		WithAnalyzers(
			&stubAnalyzer{name: "slow", delay: 5 * time.Second, signal: &types.Signal{}},
			&stubAnalyzer{name: "fast", signal: &types.Signal{ProjectType: "python"}},
		))

	start := time.Now()
	signals, warnings := r.Run(context.Background(), nil)

	assert.Less(t, time.Since(start), time.Second, "slow analyzer must not block the run")
	require.Len(t, signals, 1)
	assert.Equal(t, "fast", signals[0].Analyzer)
	require.Len(t, warnings, 1)
	assert.Equal(t, types.WarnPartialSignalFailure, warnings[0].Kind)
	assert.Contains(t, warnings[0].Message, "slow")
}

func TestRunnerPanicBecomesWarning(t *testing.T) {
	r := NewRunner(nil, WithAnalyzers(
		&stubAnalyzer{name: "panicky", panics: true},
		&stubAnalyzer{name: "fine", signal: &types.Signal{}},
	))

	signals, warnings := r.Run(context.Background(), nil)

	assert.Len(t, signals, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "panic")
}

func TestRunnerAgainstRealWorkspace(t *testing.T) {
	provider := newWorkspace(t, map[string]string{
		"package.json":   `{"dependencies": {"express": "^4.18.0"}, "scripts": {"test": "jest"}}`,
		".gitlab-ci.yml": "stages: [build, test]\n",
		"Dockerfile":     "FROM node:18\n",
	})

	signals, warnings := NewRunner(nil).Run(context.Background(), provider)

	assert.Empty(t, warnings)
	byName := map[string]types.Signal{}
	for _, s := range signals {
		byName[s.Analyzer] = s
	}
	assert.Equal(t, "nodejs", byName["project"].ProjectType)
	require.NotNil(t, byName["ci"].ExistingCI)
	assert.Equal(t, "gitlab", byName["ci"].ExistingCI.System)
	require.NotNil(t, byName["container"].Container)
	assert.True(t, byName["container"].Container.HasDockerfile)
}
