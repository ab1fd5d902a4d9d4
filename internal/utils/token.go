package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateResetToken returns an opaque single-use token for password
// reset requests.
func GenerateResetToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
