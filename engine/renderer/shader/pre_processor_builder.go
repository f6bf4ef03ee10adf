package shader

import (
	"io/fs"
	"log/slog"
)

// PreProcessorBuilderOption is a functional option used to configure a PreProcessor during construction.
type PreProcessorBuilderOption func(*preProcessor)

// WithFS makes the pre-processor read shader files from fsys instead of the host filesystem.
// Paths given to Process and used by directives are slash separated and relative to the root of fsys.
//
// Parameters:
//   - fsys: the filesystem holding the shader sources, e.g. an embed.FS
//
// Returns:
//   - PreProcessorBuilderOption: a function that sets the source filesystem
func WithFS(fsys fs.FS) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.reader = fsReader{fsys: fsys}
	}
}

// WithLogger sets the logger used for load and multi-use notices, overriding the package logger.
//
// Parameters:
//   - l: the logger to use; nil keeps the package logger
//
// Returns:
//   - PreProcessorBuilderOption: a function that sets the logger
func WithLogger(l *slog.Logger) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.logger = l
	}
}
