// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face recognition constants
const (
	// EmbeddingDim is the dimension of face encodings produced by the extractor
	EmbeddingDim = 128

	// DefaultMatchTolerance is the maximum face distance considered a match.
	// Lower values = stricter matching
	DefaultMatchTolerance = 0.6

	// MaxImageSize is the maximum dimension (width or height) sent to the extractor
	MaxImageSize = 1920
)

// Upload constants
const (
	// MaxUploadSize is the maximum accepted multipart request size (32 MiB)
	MaxUploadSize = 32 << 20
)
