/*
Package session implements the session synchronization protocol.

The Synchronizer runs every operation as a lock-guarded read, decide, write cycle
against the backing store: it claims the session's lock key, reads and decodes the
record, applies the operation's state transition in memory, and writes the result
back in one transaction that also re-applies the TTL. The claim is released on
every exit path.

Logical races never surface as errors. A lock that cannot be acquired in time, a
malformed record and a lock token that no longer matches all turn into "no data"
or "no change". Store failures are returned to the caller.

# States

	Absent         no record, or a record that does not decode
	Uninitialized  placeholder created by CreateUninitialized (flags=InitializeItem)
	Unlocked       payload available to shared and exclusive reads
	Locked         an exclusive holder owns the record until it releases or the record expires

The six host operations are described by ports.Provider.
*/
package session
