// AngelaMos | 2026
// ids.go

package core

import (
	"github.com/google/uuid"
)

func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id is a well-formed row id. Malformed ids are
// treated as missing rows by callers.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
