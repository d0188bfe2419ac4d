package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFetcher struct {
	values map[string]string
	calls  int
}

func (f *countingFetcher) Fetch(_ context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestCachedFetcher_ExpiresAfterTTL(t *testing.T) {
	inner := &countingFetcher{values: map[string]string{"ANTHROPIC-API-KEY": "sk-ant"}}
	c := NewCachedFetcher(inner, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(context.Background(), "ANTHROPIC-API-KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk-ant", v)
	}
	assert.Equal(t, 1, inner.calls)

	now = now.Add(2 * time.Minute)
	_, err := c.Fetch(context.Background(), "ANTHROPIC-API-KEY")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	_, err = c.Fetch(context.Background(), "missing")
	assert.Error(t, err)
}

func TestProvider_EnvOverridesVault(t *testing.T) {
	inner := &countingFetcher{values: map[string]string{"OPENAI-API-KEY": "from-vault"}}
	p := NewProviderWithFetcher(inner, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), "OPENAI-API-KEY", "PRESALES_TEST_OPENAI_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("PRESALES_TEST_OPENAI_KEY", "from-env")
	v, err = p.GetSecretOrEnv(context.Background(), "OPENAI-API-KEY", "PRESALES_TEST_OPENAI_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
	assert.True(t, p.IsVaultEnabled())
}
