package crypto

import (
	"bytes"
	"strings"
	"testing"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func TestAESGCMRoundTrip(t *testing.T) {
	c, err := NewAESGCM(testKey)
	if err != nil {
		t.Fatal(err)
	}
	plain := []byte(`{"id":"t1","title":"pay rent"}`)
	sealed, err := c.Encrypt(plain)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed, []byte("pay rent")) {
		t.Fatal("ciphertext leaks plaintext")
	}
	got, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip = %q, want %q", got, plain)
	}
}

func TestAESGCMRejectsBadKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"not hex", "zz"},
		{"short key", "deadbeef"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewAESGCM(tc.key); err == nil {
				t.Fatal("expected key rejection")
			}
		})
	}
}

func TestAESGCMRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewAESGCM(testKey)
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := c.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := c.Decrypt(sealed); err == nil {
		t.Fatal("tampered ciphertext opened")
	}

	if _, err := c.Decrypt([]byte("short")); err == nil {
		t.Fatal("undersized ciphertext opened")
	}
}

func TestAESGCMNoncesDiffer(t *testing.T) {
	c, err := NewAESGCM(testKey)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Encrypt([]byte("same"))
	b, _ := c.Encrypt([]byte("same"))
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same payload are identical")
	}
}

func TestPlaintextPassThrough(t *testing.T) {
	c := Plaintext()
	in := []byte("untouched")
	out, err := c.Encrypt(in)
	if err != nil || !strings.Contains(string(out), "untouched") {
		t.Fatalf("plaintext encrypt = %q, %v", out, err)
	}
	back, err := c.Decrypt(out)
	if err != nil || !bytes.Equal(back, in) {
		t.Fatalf("plaintext decrypt = %q, %v", back, err)
	}
}
