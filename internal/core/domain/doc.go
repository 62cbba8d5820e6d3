// Package domain defines the core entities of the scheme research tool.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A fetched, embedded document owned by the vector index
//   - RetrievalResult: A document paired with its distance to a query
//   - ChatTurn / ChatHistory: The append-only record of one session
//   - IndexSnapshot: The versioned, persistable image of an index
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
