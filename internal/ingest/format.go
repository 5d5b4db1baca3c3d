package ingest

import (
	"path/filepath"
	"strings"
)

// Format is an input file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// formatOf picks the decoder from the file extension; anything that is not
// .json is read as YAML, which also accepts plain JSON documents.
func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}
