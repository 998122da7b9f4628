package seed

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped CSV seed files from the
// local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a gzipped CSV seed file and returns its catalogue items.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Item, error) {
	l.logger.Info().Str("file", filePath).Msg("loading catalogue seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filePath, err)
	}
	defer gzipReader.Close()

	var items []Item
	if err := gocsv.Unmarshal(gzipReader, &items); err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode seed CSV")
		return nil, fmt.Errorf("failed to decode seed file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("items", len(items)).
		Msg("catalogue seed file loaded")

	return items, nil
}
