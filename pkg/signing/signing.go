// Package signing issues and checks the tamper-evident signatures printed on
// batch codes. A single process-wide secret is stretched with HKDF-SHA256 into
// the HMAC-SHA256 key; signatures are lower-case hex.
//
// A missing or mismatching signature is a normal negative answer, so Verify
// returns false instead of an error.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo = "medtrace/batch-signature/v1"
	keySize = 32
)

// ErrEmptySecret is returned when a Signer is created without a secret.
var ErrEmptySecret = errors.New("signing secret must not be empty")

// Signer signs and verifies batch identifiers.
type Signer struct {
	key []byte
}

// NewSigner derives the HMAC key from secret. Returns ErrEmptySecret for an empty secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign returns the hex signature of batchID.
func (s *Signer) Sign(batchID string) string {
	return hex.EncodeToString(s.mac(batchID))
}

// Verify reports whether signature is the valid signature of batchID.
// Comparison is constant-time over the decoded MAC.
func (s *Signer) Verify(batchID, signature string) bool {
	if signature == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(batchID))
}

func (s *Signer) mac(batchID string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(batchID))
	return h.Sum(nil)
}
