// Package seed loads pre-defined fixtures into an empty knowledge base.
//
// Seeding is all-or-nothing idempotent: the presence of any resource in
// the store, fixture or not, makes Seed a no-op.
package seed
