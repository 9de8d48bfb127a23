package seed

import "errors"

// ErrPipelineRequired is returned when an ingestion pipeline is not provided.
var ErrPipelineRequired = errors.New("ingestion pipeline required")
