/*
Package codec converts a Session Record to and from the flat field mapping stored in a hash.

A record is stored as exactly seven fields:

	created   int64 unix nanoseconds, little-endian
	locked    one byte, 0 or 1
	lockId    int64 little-endian, or empty when the record is unlocked and was never locked
	lockDate  int64 unix nanoseconds, or empty when the record is unlocked
	timeout   int32 minutes
	flags     int32 action flags
	items     opaque payload blob, empty for an empty payload

Decoding is strict on the field count and fixed widths and lenient on empty
values: any mismatch yields "absent" rather than an error, so callers can treat
corruption and a missing session the same way.
*/
package codec
