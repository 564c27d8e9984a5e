package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/credaudit/domain"
	"gopkg.in/yaml.v3"
)

// SupportedExtensions lists the snapshot file extensions LoadFile understands
var SupportedExtensions = []string{".json", ".yaml", ".yml"}

// IsSnapshotFile reports whether path has a supported snapshot extension
func IsSnapshotFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// FileLoader loads snapshots from JSON or YAML files
type FileLoader struct{}

// NewFileLoader creates a new file loader
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// LoadFile implements domain.SnapshotLoader
func (l *FileLoader) LoadFile(path string) (*domain.ReportSnapshot, error) {
	return LoadFile(path)
}

// LoadFile reads, decodes and validates a snapshot file
func LoadFile(path string) (*domain.ReportSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		return nil, domain.NewInvalidInputError("failed to read snapshot file", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)), path)
}

// Parse decodes raw snapshot bytes of the format named by ext
func Parse(data []byte, ext, source string) (*domain.ReportSnapshot, error) {
	var fields map[string]any

	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, domain.NewParseError(source, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, domain.NewParseError(source, err)
		}
	default:
		return nil, domain.NewUnsupportedFormatError(ext)
	}

	if fields == nil {
		return nil, domain.NewParseError(source, errors.New("empty snapshot document"))
	}
	return Decode(fields)
}
