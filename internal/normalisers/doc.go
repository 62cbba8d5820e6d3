// Package normalisers provides implementations of the Normaliser interface
// for the document formats the web loader understands. Each normaliser
// knows how to extract text content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; the loader hands
// every fetched body to the registry, which picks the highest-priority
// normaliser for the body's MIME type.
package normalisers
