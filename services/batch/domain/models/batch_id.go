package models

import (
	"fmt"
	"regexp"
)

// BatchID is the immutable public identifier of a batch, printed on scanned codes.
// Letters, digits and hyphens only; 2..64 characters.
type BatchID string

const (
	minBatchIDLength = 2
	maxBatchIDLength = 64
)

var batchIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// NewBatchID validates s as a batch identifier.
func NewBatchID(s string) (BatchID, error) {
	if len(s) < minBatchIDLength {
		return "", fmt.Errorf("batch id must be at least %d characters", minBatchIDLength)
	}
	if len(s) > maxBatchIDLength {
		return "", fmt.Errorf("batch id must not exceed %d characters", maxBatchIDLength)
	}
	if !batchIDPattern.MatchString(s) {
		return "", fmt.Errorf("batch id may only contain letters, digits and hyphens")
	}
	return BatchID(s), nil
}

// IsValidBatchID reports whether s is a well-formed batch identifier.
func IsValidBatchID(s string) bool {
	_, err := NewBatchID(s)
	return err == nil
}

// String returns the underlying string value.
func (id BatchID) String() string {
	return string(id)
}
