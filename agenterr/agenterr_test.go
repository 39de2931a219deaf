package agenterr_test

import (
	"errors"
	"testing"

	"github.com/agentcore/reactor/agenterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsMessageToKind(t *testing.T) {
	err := agenterr.New(agenterr.KindTimeout, "")
	assert.Equal(t, "timeout", err.Message)
}

func TestWrapPreservesCauseChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := agenterr.Wrap(agenterr.KindService, "generate failed", cause)

	require.Error(t, err)
	assert.Equal(t, agenterr.KindService, err.Kind)
	assert.Equal(t, cause.Error(), err.Unwrap().Error())
}

func TestIsMatchesOnKindNotMessage(t *testing.T) {
	a := agenterr.New(agenterr.KindRateLimit, "provider said slow down")
	b := agenterr.New(agenterr.KindRateLimit, "a completely different message")
	c := agenterr.New(agenterr.KindTimeout, "provider said slow down")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestFromErrorPreservesExistingAgentError(t *testing.T) {
	original := agenterr.New(agenterr.KindAuthentication, "bad key")

	converted := agenterr.FromError(original)

	assert.Same(t, original, converted)
}

func TestFromErrorWrapsPlainErrorAsService(t *testing.T) {
	plain := errors.New("boom")

	converted := agenterr.FromError(plain)

	require.NotNil(t, converted)
	assert.Equal(t, agenterr.KindService, converted.Kind)
	assert.Equal(t, "boom", converted.Message)
}

func TestOfReportsKindWhenPresent(t *testing.T) {
	err := agenterr.Wrap(agenterr.KindSpawn, "too many children", errors.New("cause"))

	kind, ok := agenterr.Of(err)

	assert.True(t, ok)
	assert.Equal(t, agenterr.KindSpawn, kind)
}

func TestOfReportsFalseForPlainError(t *testing.T) {
	_, ok := agenterr.Of(errors.New("plain"))
	assert.False(t, ok)
}

func TestAuthenticationErrorsAreNeverClassifiedAsRetryable(t *testing.T) {
	// §7: "Authentication errors are never retried." This package does not
	// itself decide retry policy (that's resilience.RetryPolicy and
	// resilience.Classify), but the Kind
	// must be distinguishable so callers can special-case it.
	err := agenterr.New(agenterr.KindAuthentication, "invalid api key")
	kind, ok := agenterr.Of(err)
	assert.True(t, ok)
	assert.Equal(t, agenterr.KindAuthentication, kind)
	assert.NotEqual(t, agenterr.KindService, kind)
}
