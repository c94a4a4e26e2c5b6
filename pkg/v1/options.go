package copc

import (
	"io"

	"go.uber.org/zap"

	"github.com/beetlebugorg/copc/internal/parser"
)

// ReaderOptions configures reader behavior.
type ReaderOptions struct {
	// CacheSizeMB sets the point cache memory cap in megabytes.
	// Default: 512.
	CacheSizeMB int

	// EstimatedBytesPerPoint is the memory accounting constant used by
	// the cache. Default: 100.
	EstimatedBytesPerPoint int

	// ChunkDecoderFactory supplies the LASzip chunk decoder. Defaults to
	// the stored-records decoder; plug a LASzip binding here for
	// arithmetic-coded files.
	ChunkDecoderFactory ChunkDecoderFactory

	// Logger receives warnings from batch loads where per-node failures
	// are skipped rather than propagated. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultReaderOptions returns reader options with defaults.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		CacheSizeMB:            512,
		EstimatedBytesPerPoint: 100,
		ChunkDecoderFactory:    parser.NewStoredChunkDecoder,
		Logger:                 zap.NewNop(),
	}
}

// UpdateOptions controls cache warm-up behavior.
type UpdateOptions struct {
	// DegreeOfParallelism is accepted for API stability and ignored: the
	// chunk decoder is not reentrant, so warm-up is sequential.
	DegreeOfParallelism int

	// Progress is an optional callback invoked after each node is
	// processed with (loaded, total) counts.
	Progress func(loaded, total int)

	// ErrorLog is an optional writer for per-node failure details.
	ErrorLog io.Writer
}

// DefaultUpdateOptions returns update options with defaults.
func DefaultUpdateOptions() UpdateOptions {
	return UpdateOptions{}
}
