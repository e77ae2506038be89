package archive

import "context"

// Package archive stores finished run reports in S3-compatible object storage
// so scheduled audits leave an inspectable trail.

// Archive is the run-report sink. Implementations must not touch local disk.
type Archive interface {
	// Put stores one report document under the given key.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
