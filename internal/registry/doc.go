// Package registry implements the application layer for the workflow
// definition registry.
//
// This package serves as a facade that bridges the domain layer to
// infrastructure concerns:
//   - Orchestrates CRUD, version snapshots and status transitions over the
//     persistence gateway
//   - Owns the two read caches (workflow-by-id, template-by-id)
//   - Routes template instantiation through the template engine
//   - Bundles and merges collections of definitions and templates for
//     transfer between registry instances
//
// # Architecture
//
// The application layer depends on:
//   - Domain layer (internal/workflows/domain): pure domain types and logic
//   - Infrastructure: a domain.DefinitionRepository implementation and the
//     cachemanager TTL caches
//
// # Consistency model
//
// Each operation is an independent unit of work. Single-item reads consult
// the cache first and fall back to persistence; bulk listing always
// re-reads persistence in full. Writes go to persistence first and then
// write through to the cache. No transaction spans two operations, and no
// cross-process cache invalidation exists unless a StoreWatcher is
// attached.
package registry
