package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
)

func init() {
	// Values travel as interface{} and must be registered to cross gob.
	gob.Register(time.Time{})
	gob.Register(time.Duration(0))
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register([]string{})
}

type gobEntry struct {
	Key   string
	Value any
}

// GobSerializer is the default payload serializer. It preserves insertion order and
// the concrete Go types of basic values. Custom value types must be registered with
// gob.Register by the caller.
type GobSerializer struct{}

// Serialize encodes items as an ordered list of entries.
func (GobSerializer) Serialize(items *domain.Items) ([]byte, error) {
	entries := make([]gobEntry, 0, items.Len())
	items.Each(func(k string, v any) {
		entries = append(entries, gobEntry{Key: k, Value: v})
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a blob produced by Serialize.
func (GobSerializer) Deserialize(data []byte) (*domain.Items, error) {
	items := domain.NewItems()
	if len(data) == 0 {
		return items, nil
	}

	var entries []gobEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	for _, e := range entries {
		items.Set(e.Key, e.Value)
	}
	return items, nil
}
