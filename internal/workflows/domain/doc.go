// Package domain provides the pure domain layer for workflow definitions
// with no infrastructure dependencies.
//
// This package follows Domain-Driven Design (DDD) principles:
//   - Contains only pure Go code with standard library imports
//   - Defines the WorkflowDefinition, WorkflowVersion and WorkflowTemplate types
//   - Defines the DefinitionRepository interface for persistence abstraction
//   - Provides domain-specific error types
//
// # Core Types
//
// WorkflowDefinition is the persisted, versioned description of an automatable
// step sequence. Steps, config and trigger are opaque structured records; the
// registry stores them without interpreting their contents.
//
// WorkflowVersion is an immutable historical snapshot of a definition, taken
// once per mutating save. Snapshots are never mutated and are not deleted when
// their definition is deleted; history outlives the definition.
//
// WorkflowTemplate is a reusable definition: the embedded definition always
// carries IsTemplate=true and shares the template's ID. Templates live in the
// same underlying store as plain definitions (tagged variant, not a parallel
// schema).
//
// # Lifecycle
//
// Definitions are created in StatusDraft at version "1.0.0". Status moves one
// way only: draft -> published -> {archived, disabled}. Each update snapshots
// the pre-update state and bumps the patch component of the version.
//
// The domain layer has no knowledge of infrastructure concerns (databases,
// caches, file I/O, etc.).
package domain
