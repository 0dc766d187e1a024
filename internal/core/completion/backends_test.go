package completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsRouteByPrefix(t *testing.T) {
	g, err := NewGemini(context.Background(), "test-key", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Name())
	assert.True(t, g.Supports("google/gemini-pro"))
	assert.False(t, g.Supports("openai/gpt-4"))

	a := NewAnthropic("test-key", time.Second)
	require.NotNil(t, a)
	assert.True(t, a.Supports("anthropic/claude-3-haiku"))
	assert.False(t, a.Supports("google/gemini-pro"))
	assert.Nil(t, NewAnthropic("", time.Second))

	o := NewOpenRouter(OpenRouterConfig{APIKey: "test-key"})
	require.NotNil(t, o)
	assert.True(t, o.Supports("anthropic/claude-3-haiku"))

	c := New([]Backend{a, g, o})
	assert.Equal(t, "anthropic", c.backendFor("anthropic/claude-3-sonnet").Name())
	assert.Equal(t, "gemini", c.backendFor("google/gemini-pro").Name())
	assert.Equal(t, "openrouter", c.backendFor("openai/gpt-3.5-turbo").Name())
}
