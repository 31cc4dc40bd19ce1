package storage

import (
	"strings"
	"time"
)

// UploadKey derives the object key for a file uploaded at the given time.
// Format: {ISO date}/{filename with spaces replaced by underscores}.
//
// The derivation is intentionally non-unique: two uploads of the same
// filename on the same calendar day target the same key and the last
// writer wins at the storage layer. Callers needing uniqueness must
// pre-randomize their filenames.
func UploadKey(filename string, at time.Time) string {
	return at.UTC().Format("2006-01-02") + "/" + strings.ReplaceAll(filename, " ", "_")
}
