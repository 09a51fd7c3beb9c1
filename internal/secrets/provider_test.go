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

type fakeVault map[string]string

func (f fakeVault) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("AGENCY_TEST_SECRET", "s3cret")
	p := newProvider(SourceEnvironment, nil, zap.NewNop())

	v, err := p.GetSecret(context.Background(), "AGENCY_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = p.GetSecret(context.Background(), "AGENCY_TEST_MISSING")
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnvPrefersOverride(t *testing.T) {
	p := newProvider(SourceVault, fakeVault{"jwt-signing-secret": "from-vault"}, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), "jwt-signing-secret", "AGENCY_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("AGENCY_TEST_JWT", "from-env")
	v, err = p.GetSecretOrEnv(context.Background(), "jwt-signing-secret", "AGENCY_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}

func TestProvider_VaultWithoutClient(t *testing.T) {
	p := newProvider(SourceVault, nil, zap.NewNop())
	_, err := p.GetSecret(context.Background(), "anything")
	assert.Error(t, err)
}

func TestSecretCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newSecretCache(time.Minute, func() time.Time { return now })

	c.put("k", "v")
	v, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("k")
	assert.False(t, ok)

	var nilCache *secretCache
	nilCache.put("k", "v")
	_, ok = nilCache.get("k")
	assert.False(t, ok)
}
