package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipewright/internal/types"
)

func drive(t *testing.T, s *State, inputs ...string) {
	t.Helper()
	for _, in := range inputs {
		require.False(t, s.Done(), "wizard finished before input %q", in)
		s.Apply(in)
		require.Empty(t, s.Err, "unexpected error on input %q", in)
	}
}

func TestWizardFullFlow(t *testing.T) {
	s := NewState()
	drive(t, s,
		"nodejs",         // project type
		"20",             // version
		"build, test",    // stages
		"y",              // tests
		"n",              // lint
		"",               // security: auto-detect
		"y",              // deploy
		"staging, prod",  // environments
		"prefer-manual",  // strategy
		"y",              // save
	)

	require.True(t, s.Done())
	f := s.Result()
	require.NotNil(t, f)

	assert.Equal(t, "nodejs", f.Manual.ProjectType.Value())
	assert.Equal(t, "20", f.Manual.LanguageVersion.Value())
	assert.Equal(t, []string{"build", "test"}, f.Manual.Stages)
	assert.Equal(t, types.PreferManual, f.Strategy)

	lint, set := f.Manual.LintEnabled.Get()
	assert.True(t, set)
	assert.False(t, lint)
	assert.False(t, f.Manual.SecurityScan.IsSet(), "skipped flag must stay unset")

	require.Len(t, f.Manual.Environments, 2)
	assert.Equal(t, "staging", f.Manual.Environments[0].Name)
	assert.Equal(t, "prod", f.Manual.Environments[1].Name)
}

func TestWizardSkipEverything(t *testing.T) {
	s := NewState()
	drive(t, s, "", "", "", "", "", "", "", "", "", "")

	require.True(t, s.Done())
	f := s.Result()
	require.NotNil(t, f)
	assert.True(t, f.Manual.IsZero(), "all-Enter run must produce an empty configuration")
	assert.Equal(t, types.IntelligentMerge, f.Strategy)
}

func TestWizardNumberedChoices(t *testing.T) {
	s := NewState()
	s.Apply("3") // golang
	assert.Equal(t, "golang", s.File.Manual.ProjectType.Value())

	drive(t, s, "", "", "", "", "", "", "")
	require.Equal(t, StepStrategy, s.Step)
	s.Apply("2")
	assert.Equal(t, types.Strategies()[1], s.File.Strategy)
}

func TestWizardDeployNoSkipsEnvironments(t *testing.T) {
	s := NewState()
	drive(t, s, "", "", "", "", "", "")
	require.Equal(t, StepDeploy, s.Step)
	s.Apply("n")
	assert.Equal(t, StepStrategy, s.Step, "deploy=no must not ask for environments")
}

func TestWizardInvalidInputStaysOnStep(t *testing.T) {
	t.Run("bad flag answer", func(t *testing.T) {
		s := NewState()
		drive(t, s, "", "", "")
		require.Equal(t, StepTests, s.Step)
		s.Apply("maybe")
		assert.NotEmpty(t, s.Err)
		assert.Equal(t, StepTests, s.Step)

		s.Apply("y")
		assert.Empty(t, s.Err)
		assert.Equal(t, StepLint, s.Step)
	})

	t.Run("bad strategy", func(t *testing.T) {
		s := NewState()
		drive(t, s, "", "", "", "", "", "", "n")
		require.Equal(t, StepStrategy, s.Step)
		s.Apply("yolo")
		assert.NotEmpty(t, s.Err)
		assert.Equal(t, StepStrategy, s.Step)
	})
}

func TestWizardCancelAtReview(t *testing.T) {
	s := NewState()
	drive(t, s, "", "", "", "", "", "", "n", "")
	require.Equal(t, StepReview, s.Step)
	s.Apply("n")

	require.True(t, s.Done())
	assert.Nil(t, s.Result())
}

func TestWizardReviewShowsChoices(t *testing.T) {
	s := NewState()
	drive(t, s, "python", "3.12", "", "y", "", "", "n", "")
	require.Equal(t, StepReview, s.Step)

	review := s.Prompt()
	assert.Contains(t, review, "python")
	assert.Contains(t, review, "3.12")
	assert.Contains(t, review, "intelligent")
}
