package profile

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	keyAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	keyGroupMark = "-"

	// Random bytes at or above keyByteLimit are discarded so every rune of
	// keyAlphabet is equally likely.
	keyByteLimit = 256 - 256%len(keyAlphabet)
)

// NewKey returns a random key for the key segment of a spec. It carries at
// least bits of entropy and is split into dash-joined groups of group runes.
func NewKey(bits, group int) (string, error) {
	return newKey(rand.Reader, bits, group)
}

func newKey(src io.Reader, bits, group int) (string, error) {
	if bits <= 0 {
		return "", errors.New("key bits must be positive")
	}
	if group <= 0 {
		return "", errors.New("key group size must be positive")
	}
	if strings.Contains(keyAlphabet+keyGroupMark, Separator) {
		return "", fmt.Errorf("key runes must not include spec separator %q", Separator)
	}

	n := int(math.Ceil(float64(bits) / math.Log2(float64(len(keyAlphabet)))))
	runes, err := drawKeyRunes(src, n)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(n + n/group)
	for i, r := range runes {
		if i > 0 && i%group == 0 {
			b.WriteString(keyGroupMark)
		}
		b.WriteByte(r)
	}
	return b.String(), nil
}

func drawKeyRunes(src io.Reader, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, err
		}
		for _, c := range buf {
			if int(c) >= keyByteLimit {
				continue
			}
			out = append(out, keyAlphabet[int(c)%len(keyAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return out, nil
}
