// Package importers routes a dive-log file to the parser for its format.
package importers

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarlsen/divelog/internal/divejson"
	"github.com/mkarlsen/divelog/internal/entities"
	"github.com/mkarlsen/divelog/internal/fitlog"
	"github.com/mkarlsen/divelog/internal/ssrf"
)

// ErrUnsupportedFormat is returned for file extensions no parser claims.
var ErrUnsupportedFormat = errors.New("unsupported dive log format")

// ImportFile reads a file and dispatches on its extension.
func ImportFile(path string) (*entities.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ImportBytes(filepath.Base(path), data)
}

// ImportBytes dispatches a raw buffer (browser-driven imports) by the
// extension of its declared file name. Dispatch is purely extension-based
// and case-insensitive; no content sniffing is performed.
func ImportBytes(name string, data []byte) (*entities.ImportResult, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "ssrf", "xml":
		return ssrf.NewParser().Parse(bytes.NewReader(data))
	case "json":
		return divejson.Parse(data)
	case "fit":
		return fitlog.Parse(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}
