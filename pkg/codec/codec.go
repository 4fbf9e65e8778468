package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/ports"
)

// Field names of the stored hash.
const (
	FieldCreated  = "created"
	FieldLocked   = "locked"
	FieldLockID   = "lockId"
	FieldLockDate = "lockDate"
	FieldTimeout  = "timeout"
	FieldFlags    = "flags"
	FieldItems    = "items"
)

// FieldCount is the number of fields of a complete record.
const FieldCount = 7

// zeroTime is the encoded form of time.Time{}, which has no unix-nanosecond representation.
const zeroTime = math.MinInt64

// Codec encodes records using a payload serializer for the items field.
type Codec struct {
	serializer ports.ItemSerializer
}

// New creates a Codec. A nil serializer selects GobSerializer.
func New(serializer ports.ItemSerializer) *Codec {
	if serializer == nil {
		serializer = GobSerializer{}
	}
	return &Codec{serializer: serializer}
}

// Encode produces the seven stored fields of r.
// lockId is written whenever it is non-zero, even while unlocked, so the lock
// sequence survives a release.
func (c *Codec) Encode(r *domain.Record) (map[string][]byte, error) {
	if r.Timeout < math.MinInt32 || r.Timeout > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d does not fit the timeout field", domain.ErrInvalidTimeout, r.Timeout)
	}
	items, err := c.encodeItems(r.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize items: %w", err)
	}

	fields := map[string][]byte{
		FieldCreated:  encodeTime(r.Created),
		FieldLocked:   encodeBool(r.Locked),
		FieldLockID:   {},
		FieldLockDate: {},
		FieldTimeout:  encodeInt32(int32(r.Timeout)),
		FieldFlags:    encodeInt32(int32(r.Flags)),
		FieldItems:    items,
	}
	if r.Locked || r.LockID != 0 {
		fields[FieldLockID] = encodeInt64(r.LockID)
	}
	if r.Locked {
		fields[FieldLockDate] = encodeTime(r.LockDate)
	}
	return fields, nil
}

// Decode rebuilds a record from stored fields. It reports false for anything that is
// not a complete, well-formed record, including an empty mapping.
func (c *Codec) Decode(fields map[string][]byte) (*domain.Record, bool) {
	r, err := c.Parse(fields)
	if err != nil {
		return nil, false
	}
	return r, true
}

// Parse is Decode with the reason for rejection. Errors wrap domain.ErrMalformedRecord.
func (c *Codec) Parse(fields map[string][]byte) (*domain.Record, error) {
	if len(fields) != FieldCount {
		return nil, fmt.Errorf("%w: %d fields, want %d", domain.ErrMalformedRecord, len(fields), FieldCount)
	}

	var (
		r   domain.Record
		err error
	)
	fixed := func(name string, width int, allowEmpty bool) ([]byte, error) {
		raw, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", domain.ErrMalformedRecord, name)
		}
		if len(raw) == 0 && allowEmpty {
			return nil, nil
		}
		if len(raw) != width {
			return nil, fmt.Errorf("%w: field %q has %d bytes, want %d", domain.ErrMalformedRecord, name, len(raw), width)
		}
		return raw, nil
	}

	raw, err := fixed(FieldCreated, 8, false)
	if err != nil {
		return nil, err
	}
	r.Created = decodeTime(raw)

	if raw, err = fixed(FieldLocked, 1, false); err != nil {
		return nil, err
	}
	r.Locked = raw[0] != 0

	if raw, err = fixed(FieldLockID, 8, true); err != nil {
		return nil, err
	}
	if raw != nil {
		r.LockID = int64(binary.LittleEndian.Uint64(raw))
	}

	if raw, err = fixed(FieldLockDate, 8, true); err != nil {
		return nil, err
	}
	if raw != nil {
		r.LockDate = decodeTime(raw)
	}

	if raw, err = fixed(FieldTimeout, 4, false); err != nil {
		return nil, err
	}
	r.Timeout = int(int32(binary.LittleEndian.Uint32(raw)))

	if raw, err = fixed(FieldFlags, 4, false); err != nil {
		return nil, err
	}
	r.Flags = domain.ActionFlags(int32(binary.LittleEndian.Uint32(raw)))

	blob, ok := fields[FieldItems]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", domain.ErrMalformedRecord, FieldItems)
	}
	if len(blob) == 0 {
		r.Items = domain.NewItems()
	} else {
		items, err := c.serializer.Deserialize(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
		}
		r.Items = items
	}

	return &r, nil
}

func (c *Codec) encodeItems(items *domain.Items) ([]byte, error) {
	if items.Len() == 0 {
		return []byte{}, nil
	}
	return c.serializer.Serialize(items)
}

func encodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func encodeInt32(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

func encodeInt64(v int64) []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(v))
}

func encodeTime(t time.Time) []byte {
	if t.IsZero() {
		return encodeInt64(zeroTime)
	}
	return encodeInt64(t.UnixNano())
}

func decodeTime(raw []byte) time.Time {
	n := int64(binary.LittleEndian.Uint64(raw))
	if n == zeroTime {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
