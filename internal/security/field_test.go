package security

import (
	"errors"
	"strings"
	"testing"
)

func TestFieldCipherRoundTrip(t *testing.T) {
	c, err := NewFieldCipher("device-key")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	sealed, err := c.Seal("api-token", []byte(`"hunter2"`))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, "hunter2") {
		t.Fatalf("sealed value leaks plaintext: %s", sealed)
	}
	plain, err := c.Open("api-token", sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != `"hunter2"` {
		t.Fatalf("unexpected plaintext: %s", plain)
	}
}

func TestFieldCipherFreshNonce(t *testing.T) {
	c, err := NewFieldCipher("k")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	a, _ := c.Seal("x", []byte("same"))
	b, _ := c.Seal("x", []byte("same"))
	if a == b {
		t.Fatal("expected distinct ciphertexts for equal plaintexts")
	}
}

func TestFieldCipherWrongKey(t *testing.T) {
	good, _ := NewFieldCipher("k1")
	bad, _ := NewFieldCipher("k2")
	sealed, err := good.Seal("x", []byte("value"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := bad.Open("x", sealed); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestFieldCipherBoundToName(t *testing.T) {
	c, _ := NewFieldCipher("k")
	sealed, err := c.Seal("api-token", []byte("value"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := c.Open("signing-password", sealed); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestFieldCipherMalformed(t *testing.T) {
	c, _ := NewFieldCipher("k")
	for _, in := range []string{"", "not base64 !!", "c2hvcnQ"} {
		if _, err := c.Open("x", in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected malformed error, got %v", in, err)
		}
	}
}

func TestNewFieldCipherEmptyKey(t *testing.T) {
	if _, err := NewFieldCipher(""); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected empty key error, got %v", err)
	}
}
