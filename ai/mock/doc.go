// Package mock provides deterministic test doubles for the ai
// interfaces. The default behaviors are designed so retrieval and
// query tests produce meaningful, repeatable results without external
// model services.
package mock
