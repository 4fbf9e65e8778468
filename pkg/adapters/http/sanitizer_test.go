package http

import (
	"strings"
	"testing"

	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"Simple", "visitor-42", true},
		{"Unicode", "sessão-ç", true},
		{"At limit", strings.Repeat("a", MaxSessionIDSize), true},
		{"Empty", "", false},
		{"Too large", strings.Repeat("a", MaxSessionIDSize+1), false},
		{"Invalid UTF-8", "bad\xffid", false},
		{"ANSI escape", "id\x1b[31m", false},
		{"Newline", "id\nother", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
			}
		})
	}
}
