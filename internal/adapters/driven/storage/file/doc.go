// Package file persists vector index snapshots as a JSON file on the local
// filesystem. Saves are atomic: the snapshot is written to a temporary file,
// synced and renamed into place.
package file
