/*
Package ports defines the driven ports (interfaces) of the session synchronizer.

These interfaces decouple the synchronization protocol from the backing key-value
store, the lock implementation and the payload serializer.

# Key Interfaces

  - Store: Atomic hash, claim, expiry and transaction primitives of the backing store.
  - Locker: Claim-key mutual exclusion scoped to one session.
  - ItemSerializer: Converts the opaque session payload to and from bytes.
  - Provider: The six session operations a hosting layer calls into.
*/
package ports
