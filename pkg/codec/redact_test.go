package codec_test

import (
	"testing"

	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor(t *testing.T) {
	r, err := codec.NewRedactor(codec.DefaultRedactPatterns)
	require.NoError(t, err)

	items := domain.NewItems()
	items.Set("user", "ana")
	items.Set("Password", "hunter2")
	items.Set("billing", map[string]any{"card_number": "4111", "country": "BR"})

	got := r.Redact(items)
	assert.Equal(t, map[string]any{
		"user":     "ana",
		"Password": codec.Mask,
		"billing":  map[string]any{"card_number": codec.Mask, "country": "BR"},
	}, got)

	original, _ := items.Get("Password")
	assert.Equal(t, "hunter2", original, "input is not modified")
	nested, _ := items.Get("billing")
	assert.Equal(t, "4111", nested.(map[string]any)["card_number"])
}

func TestRedactor_NoPatterns(t *testing.T) {
	r, err := codec.NewRedactor(nil)
	require.NoError(t, err)

	items := domain.NewItems()
	items.Set("token", "abc")
	assert.Equal(t, map[string]any{"token": "abc"}, r.Redact(items))
	assert.Nil(t, r.Redact(nil))
}

func TestRedactor_InvalidPattern(t *testing.T) {
	_, err := codec.NewRedactor([]string{"("})
	assert.Error(t, err)
}
