package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceHigh.AtLeast(ConfidenceMedium))
	assert.True(t, ConfidenceMedium.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceLow.AtLeast(ConfidenceMedium))
	assert.False(t, ConfidenceNone.AtLeast(ConfidenceLow))
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ParseConfidence("High"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence(" medium "))
	assert.Equal(t, ConfidenceLow, ParseConfidence("low"))
	assert.Equal(t, ConfidenceNone, ParseConfidence("bogus"))
}

func TestOptDistinguishesExplicitFalse(t *testing.T) {
	var unset Opt[bool]
	explicitFalse := Set(false)

	assert.False(t, unset.IsSet())
	assert.True(t, explicitFalse.IsSet())
	assert.False(t, explicitFalse.Value())

	// Or only falls back when unset.
	assert.True(t, unset.Or(true))
	assert.False(t, explicitFalse.Or(true))
}

func TestOptExplicitEmptyString(t *testing.T) {
	empty := Set("")
	v, ok := empty.Get()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestSignalAreas(t *testing.T) {
	t.Run("empty signal contributes nothing", func(t *testing.T) {
		s := &Signal{Analyzer: "project", Confidence: ConfidenceLow}
		assert.Empty(t, s.Areas())
	})

	t.Run("project finding", func(t *testing.T) {
		s := &Signal{ProjectType: "nodejs"}
		assert.Equal(t, []Area{AreaProject}, s.Areas())
	})

	t.Run("multiple areas", func(t *testing.T) {
		s := &Signal{
			ProjectType: "nodejs",
			Container:   &Container{HasDockerfile: true},
			ExistingCI:  &ExistingCI{System: "gitlab"},
		}
		assert.ElementsMatch(t, []Area{AreaProject, AreaCI, AreaContainer}, s.Areas())
	})

	t.Run("explicit security recommendation counts as dependency data", func(t *testing.T) {
		s := &Signal{SecurityScan: Set(true)}
		assert.Equal(t, []Area{AreaDependencies}, s.Areas())
	})
}

func TestManualConfigurationIsZero(t *testing.T) {
	var nilCfg *ManualConfiguration
	assert.True(t, nilCfg.IsZero())
	assert.True(t, (&ManualConfiguration{}).IsZero())

	withType := &ManualConfiguration{ProjectType: Set("dotnet")}
	assert.False(t, withType.IsZero())

	// A non-nil empty slice is a deliberate empty value, not unset.
	withEmptyStages := &ManualConfiguration{Stages: []string{}}
	assert.False(t, withEmptyStages.IsZero())
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, ok := ParseStrategy(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseStrategy("nope")
	assert.False(t, ok)
}
