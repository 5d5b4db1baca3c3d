package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/pipeline"
)

// Format selects a report rendering
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// ParseFormats maps "json", "md" or "both" to report formats
func ParseFormats(s string) ([]Format, error) {
	switch s {
	case "json":
		return []Format{FormatJSON}, nil
	case "md", "markdown":
		return []Format{FormatMarkdown}, nil
	case "", "both":
		return []Format{FormatJSON, FormatMarkdown}, nil
	}
	return nil, fmt.Errorf("unknown report format %q", s)
}

// Paths are the files written by Export; unwritten formats stay empty
type Paths struct {
	JSON     string `json:"json,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// Export writes report_<date>.json and/or report_<date>.md into dir. No
// formats means both.
func Export(dir string, res *pipeline.Result, topN int, formats ...Format) (Paths, error) {
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatMarkdown}
	}
	doc := Build(res, topN)
	stem := "report_" + res.AsOf.Format("20060102")

	var paths Paths
	for _, f := range formats {
		var (
			buf  bytes.Buffer
			path string
			err  error
		)
		switch f {
		case FormatJSON:
			path, err = filepath.Join(dir, stem+".json"), WriteJSON(&buf, doc)
			paths.JSON = path
		case FormatMarkdown:
			path, err = filepath.Join(dir, stem+".md"), WriteMarkdown(&buf, doc)
			paths.Markdown = path
		default:
			return Paths{}, fmt.Errorf("unknown report format %q", f)
		}
		if err != nil {
			return Paths{}, fmt.Errorf("failed to render %s report: %w", f, err)
		}
		if err := writeFileAtomic(path, buf.Bytes()); err != nil {
			return Paths{}, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	log.Info().Str("json", paths.JSON).Str("markdown", paths.Markdown).Msg("Exported run report")
	return paths, nil
}

// writeFileAtomic writes data to a temp file and renames it over path
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
