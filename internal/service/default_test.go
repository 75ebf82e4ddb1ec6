package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests exercise process-global state and must not run in parallel.

func TestDefaultCachesInstance(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	ResetDefault()
	t.Cleanup(ResetDefault)

	first, err := Default()
	require.NoError(t, err)

	second, err := Default()
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestDefaultRebuildsOnOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	ResetDefault()
	t.Cleanup(ResetDefault)

	first, err := Default()
	require.NoError(t, err)

	overridden, err := Default(WithProvider("openai"))
	require.NoError(t, err)
	assert.NotSame(t, first, overridden)
	assert.Equal(t, "openai", overridden.primaryName)

	// With no overrides the rebuilt instance stays cached, even though its
	// configuration no longer matches the environment defaults.
	cached, err := Default()
	require.NoError(t, err)
	assert.Same(t, overridden, cached)
}

func TestResetDefaultForcesRebuild(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	ResetDefault()
	t.Cleanup(ResetDefault)

	first, err := Default()
	require.NoError(t, err)

	ResetDefault()

	second, err := Default()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
