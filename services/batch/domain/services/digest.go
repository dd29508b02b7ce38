package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// IntegrityDigest hashes the display tuple of a batch so cached or offline
// payloads can be checked for tampering. It is not used for access control.
func IntegrityDigest(b *models.Batch) string {
	tuple := strings.Join([]string{
		b.ID.String(),
		b.Name,
		b.ExpiryDate.UTC().Format(time.DateOnly),
		b.LatestOwner().String(),
		string(b.Status),
	}, "|")
	sum := sha256.Sum256([]byte(tuple))
	return hex.EncodeToString(sum[:])
}
