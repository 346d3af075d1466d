package profile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyFitsSpec(t *testing.T) {
	key, err := NewKey(256, 6)
	require.NoError(t, err)

	assert.NotContains(t, key, Separator)
	spec, err := ParseSpec("release" + Separator + key)
	require.NoError(t, err)
	assert.Equal(t, "release", spec.Name)
	assert.Equal(t, key, spec.Key)

	groups := strings.Split(key, keyGroupMark)
	raw := strings.Join(groups, "")
	// 256 bits over 62 runes needs 43 of them.
	assert.Len(t, raw, 43)
	for _, g := range groups[:len(groups)-1] {
		assert.Len(t, g, 6)
	}
	for _, r := range raw {
		assert.Contains(t, keyAlphabet, string(r))
	}
}

func TestNewKeyUnique(t *testing.T) {
	first, err := NewKey(128, 4)
	require.NoError(t, err)
	second, err := NewKey(128, 4)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNewKeyDiscardsBiasedBytes(t *testing.T) {
	// 6 bits fit in 2 runes. 248 and 255 are discarded, 61 and 247 both map
	// to the last rune.
	src := bytes.NewReader([]byte{255, 0, 248, 61, 247, 1})
	key, err := newKey(src, 6, 8)
	require.NoError(t, err)
	assert.Equal(t, "0z", key)

	src = bytes.NewReader([]byte{248, 255, 247, 3})
	key, err = newKey(src, 6, 1)
	require.NoError(t, err)
	assert.Equal(t, "z-3", key)
}

func TestNewKeyShortRandomSource(t *testing.T) {
	_, err := newKey(bytes.NewReader([]byte{250}), 6, 2)
	assert.Error(t, err)
}

func TestNewKeyRejectsBadInput(t *testing.T) {
	_, err := NewKey(0, 5)
	assert.Error(t, err)
	_, err = NewKey(128, 0)
	assert.Error(t, err)
}
