package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateResource(t *testing.T) {
	tests := []struct {
		name     string
		resource *Resource
		wantErr  error
	}{
		{
			name: "valid resource",
			resource: &Resource{
				ID:      "test-memory-1",
				Content: "Bought groceries at Whole Foods yesterday.",
			},
			wantErr: nil,
		},
		{
			name:     "nil resource",
			resource: nil,
			wantErr:  ErrInvalidResource,
		},
		{
			name: "empty id",
			resource: &Resource{
				ID:      "",
				Content: "Some content",
			},
			wantErr: ErrEmptyResourceID,
		},
		{
			name: "empty content",
			resource: &Resource{
				ID:      "test-memory-1",
				Content: "",
			},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResource(tt.resource)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateResource() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateResource() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *EmbeddingRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &EmbeddingRecord{
				ResourceID: "test-memory-1",
				Content:    "This chunk is comfortably long enough.",
				Vector:     []float32{0.1, 0.2, 0.3},
			},
			wantErr: nil,
		},
		{
			name: "valid record with ID 0",
			record: &EmbeddingRecord{
				ID:         0,
				ResourceID: "test-memory-1",
				Content:    "This chunk is comfortably long enough.",
				Vector:     []float32{0.1, 0.2, 0.3},
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "empty resource id",
			record: &EmbeddingRecord{
				ResourceID: "",
				Content:    "This chunk is comfortably long enough.",
				Vector:     []float32{0.1},
			},
			wantErr: ErrEmptyResourceID,
		},
		{
			name: "content below minimum length",
			record: &EmbeddingRecord{
				ResourceID: "test-memory-1",
				Content:    "too short",
				Vector:     []float32{0.1},
			},
			wantErr: ErrChunkTooShort,
		},
		{
			name: "content exactly at minimum length",
			record: &EmbeddingRecord{
				ResourceID: "test-memory-1",
				Content:    strings.Repeat("x", MinChunkLen),
				Vector:     []float32{0.1},
			},
			wantErr: nil,
		},
		{
			name: "empty vector",
			record: &EmbeddingRecord{
				ResourceID: "test-memory-1",
				Content:    "This chunk is comfortably long enough.",
				Vector:     nil,
			},
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbeddingRecord() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbeddingRecord() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
