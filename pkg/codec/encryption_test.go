package codec_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryptingSerializer_RoundTrip(t *testing.T) {
	s, err := codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)

	items := domain.NewItems()
	items.Set("secret", "swordfish")

	blob, err := s.Serialize(items)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "swordfish")

	got, err := s.Deserialize(blob)
	require.NoError(t, err)
	assert.True(t, items.Equal(got))
}

func TestEncryptingSerializer_KeyRotation(t *testing.T) {
	old, err := codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)

	items := domain.NewItems()
	items.Set("n", 1)
	blob, err := old.Serialize(items)
	require.NoError(t, err)

	rotated, err := codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{
		ActiveKey:    key(2),
		FallbackKeys: [][]byte{key(1)},
	})
	require.NoError(t, err)

	got, err := rotated.Deserialize(blob)
	require.NoError(t, err)
	assert.True(t, items.Equal(got))

	stranger, err := codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{ActiveKey: key(3)})
	require.NoError(t, err)
	_, err = stranger.Deserialize(blob)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestEncryptingSerializer_RejectsBadKeys(t *testing.T) {
	_, err := codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = codec.NewEncryptingSerializer(nil, codec.EncryptionConfig{
		ActiveKey:    key(1),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCodec_WithEncryptedPayload(t *testing.T) {
	s, err := codec.NewEncryptingSerializer(codec.GobSerializer{}, codec.EncryptionConfig{ActiveKey: key(9)})
	require.NoError(t, err)
	c := codec.New(s)

	r := domain.NewRecord(fixedNow, 15)
	r.Items.Set("cart", []string{"apple"})

	fields, err := c.Encode(r)
	require.NoError(t, err)
	got, ok := c.Decode(fields)
	require.True(t, ok)
	assert.True(t, r.Items.Equal(got.Items))
	assert.Equal(t, 15, got.Timeout)
}
