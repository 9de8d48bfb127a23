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


package core

import "fmt"

// ValidateResource validates a Resource according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Content must not be empty
//
// NOT validated:
//   - CreatedAt (populated by the repository at insert time)
func ValidateResource(resource *Resource) error {
	if resource == nil {
		return fmt.Errorf("%w: resource is nil", ErrInvalidResource)
	}

	if resource.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResource, ErrEmptyResourceID)
	}

	if resource.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidResource, ErrEmptyContent)
	}

	return nil
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - ResourceID must not be empty
//   - Content must be at least MinChunkLen bytes
//   - Vector must not be empty
//
// NOT validated:
//   - ID (0 is valid, assigned from database sequences)
//   - Vector dimensionality (enforced against the store at insert time)
func ValidateEmbeddingRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}

	if record.ResourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyResourceID)
	}

	if len(record.Content) < MinChunkLen {
		return fmt.Errorf("%w: %w (%d < %d)", ErrInvalidEmbedding, ErrChunkTooShort, len(record.Content), MinChunkLen)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	return nil
}
