package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	id := Identity{MachineName: "build-01", UserName: "ci", BoardSerial: "PF1X2Y3Z"}
	assert.Equal(t, id.Fingerprint(), id.Fingerprint())
	assert.Len(t, id.Fingerprint(), 64)
}

func TestFingerprintDiffersPerComponent(t *testing.T) {
	base := Identity{MachineName: "build-01", UserName: "ci", BoardSerial: "PF1X2Y3Z"}
	variants := []Identity{
		{MachineName: "build-02", UserName: "ci", BoardSerial: "PF1X2Y3Z"},
		{MachineName: "build-01", UserName: "dev", BoardSerial: "PF1X2Y3Z"},
		{MachineName: "build-01", UserName: "ci", BoardSerial: "OTHER"},
		{MachineName: "build-01c", UserName: "i", BoardSerial: "PF1X2Y3Z"},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.Fingerprint(), v.Fingerprint(), "%+v", v)
	}
}

func TestProviderCaches(t *testing.T) {
	calls := 0
	p := NewProviderFunc(func(context.Context) (Identity, error) {
		calls++
		return Identity{MachineName: "m", UserName: "u", BoardSerial: "s"}, nil
	})
	first, err := p.Fingerprint()
	require.NoError(t, err)
	second, err := p.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestProviderPropagatesError(t *testing.T) {
	p := NewProviderFunc(func(context.Context) (Identity, error) {
		return Identity{}, errors.New("no dmi")
	})
	_, err := p.Fingerprint()
	require.Error(t, err)
}

func TestUsableSerial(t *testing.T) {
	assert.False(t, usableSerial(""))
	assert.False(t, usableSerial("To Be Filled By O.E.M."))
	assert.False(t, usableSerial("Default string"))
	assert.True(t, usableSerial("PF1X2Y3Z"))
}

func TestCollectCurrentHost(t *testing.T) {
	id, err := Collect(context.Background())
	if err != nil {
		t.Skipf("host identity unavailable: %v", err)
	}
	again, err := Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id.Fingerprint(), again.Fingerprint())
}
