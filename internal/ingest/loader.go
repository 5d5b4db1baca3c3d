// Package ingest loads the in-memory inputs of a run from disk: company
// records, emerging bottlenecks and extra dependency-graph edges.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/secondorder"
)

// Default file names inside a data directory
const (
	CompaniesFile   = "companies.yaml"
	BottlenecksFile = "bottlenecks.yaml"
	GraphFile       = "graph.yaml"
)

// ErrInvalidRecord marks a structurally invalid input record
var ErrInvalidRecord = errors.New("invalid input record")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Dataset is the complete input of a run
type Dataset struct {
	Companies   []models.Company
	Bottlenecks []models.EmergingBottleneck
	Graph       *secondorder.Graph
}

type companiesDoc struct {
	Companies []models.Company `json:"companies" yaml:"companies"`
}

type bottlenecksDoc struct {
	Bottlenecks []models.EmergingBottleneck `json:"bottlenecks" yaml:"bottlenecks"`
}

// LoadDir loads a dataset from dir. The companies file is required; the
// bottleneck and graph files are optional. The built-in dependency graph is
// always present and file edges are merged after it.
func LoadDir(dir string) (Dataset, error) {
	companies, err := LoadCompanies(filepath.Join(dir, CompaniesFile))
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{Companies: companies, Bottlenecks: []models.EmergingBottleneck{}}

	bnPath := filepath.Join(dir, BottlenecksFile)
	if exists(bnPath) {
		if ds.Bottlenecks, err = LoadBottlenecks(bnPath); err != nil {
			return Dataset{}, err
		}
	}

	ds.Graph = secondorder.DefaultGraph()
	graphPath := filepath.Join(dir, GraphFile)
	if exists(graphPath) {
		if ds.Graph, err = LoadGraph(graphPath, ds.Graph); err != nil {
			return Dataset{}, err
		}
	}

	log.Info().
		Str("dir", dir).
		Int("companies", len(ds.Companies)).
		Int("bottlenecks", len(ds.Bottlenecks)).
		Int("graph_edges", ds.Graph.Len()).
		Msg("Loaded dataset")
	return ds, nil
}

// LoadCompanies reads a JSON or YAML file holding either a list of companies
// or a document with a "companies" key. Every record is validated and ids
// must be unique.
func LoadCompanies(path string) ([]models.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read companies file: %w", err)
	}
	return ParseCompanies(data, formatOf(path))
}

// ParseCompanies decodes and validates company records in the given format
func ParseCompanies(data []byte, format Format) ([]models.Company, error) {
	var companies []models.Company
	if err := decodeList(data, format, &companies, &companiesDoc{}, func(d any) {
		companies = d.(*companiesDoc).Companies
	}); err != nil {
		return nil, fmt.Errorf("failed to parse companies: %w", err)
	}

	var errs []error
	seen := make(map[string]int, len(companies))
	for i, c := range companies {
		if err := validate.Struct(c); err != nil {
			errs = append(errs, fmt.Errorf("%w: company[%d] %q: %v", ErrInvalidRecord, i, c.ID, err))
			continue
		}
		if first, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: company[%d] duplicates id %q of company[%d]", ErrInvalidRecord, i, c.ID, first))
			continue
		}
		seen[c.ID] = i
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if companies == nil {
		companies = []models.Company{}
	}
	return companies, nil
}

// LoadBottlenecks reads emerging-bottleneck records; they pass through a run unchanged
func LoadBottlenecks(path string) ([]models.EmergingBottleneck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bottlenecks file: %w", err)
	}

	var out []models.EmergingBottleneck
	if err := decodeList(data, formatOf(path), &out, &bottlenecksDoc{}, func(d any) {
		out = d.(*bottlenecksDoc).Bottlenecks
	}); err != nil {
		return nil, fmt.Errorf("failed to parse bottlenecks: %w", err)
	}

	var errs []error
	for i, b := range out {
		if err := validate.Struct(b); err != nil {
			errs = append(errs, fmt.Errorf("%w: bottleneck[%d]: %v", ErrInvalidRecord, i, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if out == nil {
		out = []models.EmergingBottleneck{}
	}
	return out, nil
}

// LoadGraph reads a YAML or JSON edge file and merges it onto base. A nil
// base starts from an empty graph.
func LoadGraph(path string, base *secondorder.Graph) (*secondorder.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var file secondorder.GraphFile
	if formatOf(path) == FormatJSON {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("%w: graph %s: %v", ErrInvalidRecord, path, err)
	}
	for i, e := range file.Edges {
		if e.PrimaryID == "" && e.Sector == "" {
			return nil, fmt.Errorf("%w: graph edge[%d] needs primary_id or sector", ErrInvalidRecord, i)
		}
	}

	if base == nil {
		return secondorder.NewGraph(file.Edges...), nil
	}
	return base.Merge(file.Edges...), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// decodeList accepts either a bare list or a wrapping document
func decodeList(data []byte, format Format, list any, doc any, fromDoc func(any)) error {
	unmarshal := yaml.Unmarshal
	if format == FormatJSON {
		unmarshal = json.Unmarshal
	}

	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "---"))
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "-") {
		return unmarshal(data, list)
	}
	if err := unmarshal(data, doc); err != nil {
		return err
	}
	fromDoc(doc)
	return nil
}
