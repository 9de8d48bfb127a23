// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder generates deterministic vectors from a text hash, so
// tests get stable similarity orderings without an external service.
// Behavior can be overridden per test via the exported Func fields.
package mock
