package domain

import "errors"

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrConfigInUse is returned when a configuration object is bound a second time.
var ErrConfigInUse = errors.New("configuration already bound to a synchronizer")

// ErrMalformedPayload is returned by serializers when an item blob cannot be decoded.
var ErrMalformedPayload = errors.New("malformed item payload")

// ErrMalformedRecord is returned when stored fields do not form a complete Session Record.
var ErrMalformedRecord = errors.New("malformed session record")

// ErrInvalidTimeout is returned when a session timeout is not a positive number of minutes
// or is too large to be expressed as a store TTL.
var ErrInvalidTimeout = errors.New("session timeout out of range")

// ErrInvalidSessionID is returned when a session identifier cannot be used as a key.
var ErrInvalidSessionID = errors.New("invalid session id")
