// Copyright 2025 Lexemic Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for recall.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, allowing different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for public
// constructors to enforce abstraction:
//
//	repo, err := badger.NewResourceRepository(backend)  // storage.ResourceRepository
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ResourceRepository: operations for resources
//   - EmbeddingRepository: operations for embedding records, including
//     exact cosine similarity search
//   - Repository: transaction support and lifecycle shared by both
//
// # Invariants enforced at this boundary
//
//   - No orphan embedding records: every record must reference a stored
//     resource (ErrUnknownResource otherwise).
//   - One vector dimensionality per store, established by the first
//     inserted batch (ErrDimensionMismatch otherwise).
//   - Resource IDs are unique (ErrDuplicateKey otherwise).
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. Reads may race with
// concurrent inserts; a search is permitted to either see or not see an
// in-flight insert.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
