// Package vectorstore defines the vector database abstraction used by
// the ingestion pipeline and query engine, along with shared vector
// math helpers.
//
// Two implementations are provided:
//
//   - vectorstore/memory: an in-process store for tests and small
//     deployments
//   - vectorstore/qdrant: a REST client to a Qdrant server
package vectorstore
