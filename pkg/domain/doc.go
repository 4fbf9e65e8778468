/*
Package domain contains the core models of the session synchronization protocol.

It defines the persisted Session Record, the ordered item payload carried inside it,
and the action flags that mark placeholder records. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Record: The unit of persistence, one per session identifier (seven fields).
  - Items: The user-visible payload, an insertion-ordered string to value mapping.
  - ActionFlags: Marks a record created as a placeholder awaiting its first population.
*/
package domain
