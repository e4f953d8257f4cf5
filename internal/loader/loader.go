// Package loader reads OBJ files from disk or streams and hands the decoded
// text to the parser, enforcing caller-imposed size limits first.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objmodel/internal/config"
	"github.com/Faultbox/objmodel/internal/logger"
	"github.com/Faultbox/objmodel/pkg/encoding"
	"github.com/Faultbox/objmodel/pkg/formats"
)

// ErrInputTooLarge is returned when an input exceeds a configured limit.
var ErrInputTooLarge = errors.New("input too large")

// Options controls how inputs are read.
type Options struct {
	Encoding string
	MaxBytes int64 // 0 = unlimited
	MaxLines int   // 0 = unlimited
}

// OptionsFromConfig builds loader options from the parse settings.
func OptionsFromConfig(cfg config.ParseConfig) Options {
	return Options{
		Encoding: cfg.Encoding,
		MaxBytes: cfg.MaxBytes,
		MaxLines: cfg.MaxLines,
	}
}

// LoadFile parses the OBJ file at path.
func LoadFile(path string, opts Options) (*formats.OBJModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	return Load(f, path, opts)
}

// Load reads r completely and parses it. Name is used in logs and errors.
func Load(r io.Reader, name string, opts Options) (*formats.OBJModel, error) {
	start := time.Now()

	data, err := readLimited(r, opts.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	text, err := encoding.Decode(data, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	lines := countLines(text)
	if opts.MaxLines > 0 && lines > opts.MaxLines {
		return nil, fmt.Errorf("%s: %w: %d lines exceeds limit of %d", name, ErrInputTooLarge, lines, opts.MaxLines)
	}

	logger.Debug("parsing OBJ",
		zap.String("file", name),
		zap.Int("bytes", len(data)),
		zap.Int("lines", lines),
		zap.String("encoding", opts.Encoding))

	model, err := formats.ParseOBJ(text)
	if err != nil {
		logger.Warn("OBJ parse failed", zap.String("file", name), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	for keyword, n := range model.Ignored {
		logger.Debug("ignored unsupported directive",
			zap.String("file", name),
			zap.String("keyword", keyword),
			zap.Int("count", n))
	}

	logger.Info("parsed OBJ",
		zap.String("file", name),
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("faces", len(model.Faces)),
		zap.Duration("elapsed", time.Since(start)))

	return model, nil
}

// readLimited reads all of r, failing once more than maxBytes are available.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, err
	}

	// Anything left after the limit means the input is too large.
	var extra [1]byte
	n, err := io.ReadFull(r, extra[:])
	if n > 0 {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, maxBytes)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

// countLines counts lines the way the parser sees them; a final line
// without a terminator still counts.
func countLines(text string) int {
	n := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
