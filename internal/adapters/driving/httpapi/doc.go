// Package httpapi exposes a retrieval session as a small JSON API.
//
// Routes:
//
//	GET  /health           liveness and index size
//	POST /ingest           load URLs into the index
//	POST /ask              answer a question
//	GET  /history          answered turns, oldest first
//	GET  /documents        indexed documents without content
//	GET  /documents/{id}   one document with content
//	POST /save             persist the current index
package httpapi
