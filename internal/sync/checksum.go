package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/xelth-com/huissierpro/internal/models"
)

// Checksum returns a SHA256 over the act's content. UpdatedAt is excluded so
// two copies that only differ by timestamp hash the same.
func Checksum(act models.Act) string {
	a := act.Clone()
	a.UpdatedAt = time.Time{}
	if a.Evidence == nil {
		a.Evidence = []models.Evidence{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
