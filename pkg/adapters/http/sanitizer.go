package http

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/sessionlock/pkg/domain"
)

// MaxSessionIDSize bounds the length of a session id in bytes.
const MaxSessionIDSize = 256

// ValidateSessionID rejects ids that are empty, too large, not UTF-8 or that
// contain control characters. Ids are rejected rather than cleaned so that
// two different requests never map to the same key.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidSessionID)
	}
	if len(id) > MaxSessionIDSize {
		return fmt.Errorf("%w: size=%d limit=%d", domain.ErrInvalidSessionID, len(id), MaxSessionIDSize)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: invalid UTF-8", domain.ErrInvalidSessionID)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character %U", domain.ErrInvalidSessionID, r)
		}
	}
	return nil
}
