// Package download builds the downloadable forms of a generated dataset.
package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Sergiu-D/dataforge/internal/codec"
)

// Download formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const (
	CSVFilename  = "generated_data.csv"
	JSONFilename = "generated_data.json"
	CSVMimeType  = "text/csv"
	JSONMimeType = "application/json"
)

// ErrNoDataset is returned when there is nothing to download yet.
var ErrNoDataset = errors.New("no dataset has been generated")

// ErrUnknownFormat is returned for formats other than csv and json.
var ErrUnknownFormat = errors.New("unknown download format")

// Artifact is a file ready to hand to a Saver.
type Artifact struct {
	Content  string
	Filename string
	MimeType string
}

// Build renders dataset in format. CSV is the dataset verbatim; JSON is the
// pretty-printed record projection.
func Build(format, dataset string) (Artifact, error) {
	if dataset == "" {
		return Artifact{}, ErrNoDataset
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		return Artifact{Content: dataset, Filename: CSVFilename, MimeType: CSVMimeType}, nil
	case FormatJSON:
		data, err := codec.MarshalRecords(codec.ToRecords(codec.Decode(dataset)))
		if err != nil {
			return Artifact{}, fmt.Errorf("failed to encode records: %w", err)
		}
		return Artifact{Content: string(data), Filename: JSONFilename, MimeType: JSONMimeType}, nil
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Saver persists an artifact and returns where it went.
type Saver interface {
	Save(ctx context.Context, a Artifact) (string, error)
}

// FileSaver writes artifacts into a directory.
type FileSaver struct {
	fs  afero.Fs
	dir string
}

func NewFileSaver(fs afero.Fs, dir string) *FileSaver {
	if dir == "" {
		dir = "."
	}
	return &FileSaver{fs: fs, dir: dir}
}

func (s *FileSaver) Save(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, filepath.Base(a.Filename))
	if err := afero.WriteFile(s.fs, path, []byte(a.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
