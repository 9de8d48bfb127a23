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


// Package ai provides the embedding provider abstraction for recall.
//
// The package defines the Embedder interface for converting text into
// fixed-dimension vectors. It follows the dependency inversion principle:
// the ingestion pipeline and the retriever depend on the interface, never
// on a concrete provider, so a deterministic fake can stand in for tests.
//
// # Implementation Packages
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public production constructors (openai.NewEmbedder) return the
// ai.Embedder INTERFACE to enforce abstraction and prevent accidental
// coupling to a concrete provider:
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types
// to enable behavior injection and assertions:
//
//	mockEmbed := mock.NewMockEmbedder()     // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextFunc = ...           // needs concrete type
//	count := mockEmbed.CallCount()          // test assertion
//
// # Dimensionality
//
// The output dimensionality is fixed by the chosen embedding model and
// assumed constant for the lifetime of a store. Changing models requires
// re-embedding the entire store; the reembed package does that as an
// explicit offline operation.
package ai
