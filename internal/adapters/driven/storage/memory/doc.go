// Package memory provides in-memory implementations of the storage ports.
// They back tests and the "memory" index backend, which keeps the index for
// the lifetime of the process only.
package memory
