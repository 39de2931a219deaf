package config_test

import (
	"testing"

	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentConfigRejectsOutOfRangeMaxSteps(t *testing.T) {
	mem, err := config.NewMemoryConfig(memory.StrategyFull, 0, nil)
	require.NoError(t, err)
	model, err := config.NewModelConfig("gpt", 0.5, 30_000, "")
	require.NoError(t, err)
	spawn, err := config.NewSpawnConfig(0, nil, nil)
	require.NoError(t, err)

	_, err = config.NewAgentConfig(0, "", nil, mem, model, spawn, 1)
	assert.Error(t, err)
	_, err = config.NewAgentConfig(1001, "", nil, mem, model, spawn, 1)
	assert.Error(t, err)
}

func TestModelConfigDetectsLocalEndpoint(t *testing.T) {
	m, err := config.NewModelConfig("local", 0.2, 1000, "http://localhost:8080")
	require.NoError(t, err)
	assert.True(t, m.IsLocal)

	remote, err := config.NewModelConfig("remote", 0.2, 1000, "https://api.example.com")
	require.NoError(t, err)
	assert.False(t, remote.IsLocal)
}

func TestModelConfigRejectsNonHTTPScheme(t *testing.T) {
	_, err := config.NewModelConfig("m", 0.2, 1000, "ftp://example.com")
	assert.Error(t, err)
}

func TestSpawnConfigDefaultsToolsToFinalAnswer(t *testing.T) {
	s, err := config.NewSpawnConfig(2, nil, nil)
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.True(t, s.AllowsTool("final_answer"))
	assert.False(t, s.AllowsTool("shell"))
	assert.True(t, s.AllowsModel("anything"), "empty allowed_models means allow-anything")
}

func TestSpawnConfigEnabledFollowsMaxChildren(t *testing.T) {
	s, err := config.NewSpawnConfig(0, nil, nil)
	require.NoError(t, err)
	assert.False(t, s.Enabled)
}

func TestWithMaxStepsProducesNewConfigWithoutMutatingOriginal(t *testing.T) {
	mem, _ := config.NewMemoryConfig(memory.StrategyFull, 0, nil)
	model, _ := config.NewModelConfig("m", 0.5, 1000, "")
	spawn, _ := config.NewSpawnConfig(0, nil, nil)
	original, err := config.NewAgentConfig(5, "", nil, mem, model, spawn, 1)
	require.NoError(t, err)

	updated, err := original.WithMaxSteps(10)
	require.NoError(t, err)
	assert.Equal(t, 5, original.MaxSteps)
	assert.Equal(t, 10, updated.MaxSteps)
}

func TestContextScopeRejectsUnknownLevel(t *testing.T) {
	_, err := config.NewContextScope("bogus")
	assert.Error(t, err)
}
