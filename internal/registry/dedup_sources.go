package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/basetide/activity-marts/internal/domain"
)

// DedupSource describes one deduplicable raw fact table: the composite
// business key, the recency column that picks the winning row per key, and
// the tie-break column that makes the pick deterministic when recency ties.
type DedupSource struct {
	Name           string   `json:"name"`
	SourceTable    string   `json:"source_table"`
	TargetTable    string   `json:"target_table"`
	KeyColumns     []string `json:"key_columns"`
	RecencyColumn  string   `json:"recency_column"`
	TiebreakColumn string   `json:"tiebreak_column"`
	// Replace allows dropping an existing target table before materializing
	Replace bool `json:"replace"`
}

// Columns returns every source column the definition references
func (s DedupSource) Columns() []string {
	columns := make([]string, 0, len(s.KeyColumns)+2)
	columns = append(columns, s.KeyColumns...)
	columns = append(columns, s.RecencyColumn, s.TiebreakColumn)
	return columns
}

// DedupSourceRegistry defines the interface for dedup source lookups
//
//go:generate mockgen -source=dedup_sources.go -destination=../mocks/dedup_source_registry.go -package=mocks -mock_names=DedupSourceRegistry=MockDedupSourceRegistry
type DedupSourceRegistry interface {
	// Get returns the named source definition
	Get(name string) (DedupSource, error)

	// Names returns the registered source names in sorted order
	Names() []string
}

// identifierPattern restricts table and column names to plain lowercase SQL
// identifiers because they are interpolated into generated DDL
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// dedupSourceRegistry is the internal implementation of DedupSourceRegistry
type dedupSourceRegistry struct {
	sources map[string]DedupSource
}

// LoadDedupSources loads the dedup source registry from a JSON file. Every
// definition is validated at load time so misconfiguration surfaces before
// any database work starts.
func LoadDedupSources(filePath string) (DedupSourceRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read dedup sources file: %w", err)
	}

	var defs []DedupSource
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse dedup sources JSON: %w", err)
	}

	reg := &dedupSourceRegistry{
		sources: make(map[string]DedupSource, len(defs)),
	}

	for _, def := range defs {
		if err := validateSource(def); err != nil {
			return nil, fmt.Errorf("invalid dedup source %q: %w", def.Name, err)
		}
		if _, ok := reg.sources[def.Name]; ok {
			return nil, fmt.Errorf("duplicate dedup source %q", def.Name)
		}
		reg.sources[def.Name] = def
	}

	return reg, nil
}

// validateSource checks a single source definition. A missing tie-break
// column is rejected here: without one the winning row per key is ambiguous
// whenever recency values tie.
func validateSource(def DedupSource) error {
	if def.Name == "" {
		return errors.New("name is required")
	}
	if !identifierPattern.MatchString(def.SourceTable) {
		return fmt.Errorf("invalid source table %q", def.SourceTable)
	}
	if !identifierPattern.MatchString(def.TargetTable) {
		return fmt.Errorf("invalid target table %q", def.TargetTable)
	}
	if def.TargetTable == def.SourceTable {
		return errors.New("target table must differ from source table")
	}
	if len(def.KeyColumns) == 0 {
		return errors.New("at least one key column is required")
	}

	seen := make(map[string]bool, len(def.KeyColumns))
	for _, col := range def.KeyColumns {
		if !identifierPattern.MatchString(col) {
			return fmt.Errorf("invalid key column %q", col)
		}
		if seen[col] {
			return fmt.Errorf("duplicate key column %q", col)
		}
		seen[col] = true
	}

	if !identifierPattern.MatchString(def.RecencyColumn) {
		return fmt.Errorf("invalid recency column %q", def.RecencyColumn)
	}
	if seen[def.RecencyColumn] {
		return errors.New("recency column must not be part of the key")
	}

	if def.TiebreakColumn == "" {
		return errors.New("tie-break column is required")
	}
	if !identifierPattern.MatchString(def.TiebreakColumn) {
		return fmt.Errorf("invalid tie-break column %q", def.TiebreakColumn)
	}
	if def.TiebreakColumn == def.RecencyColumn {
		return errors.New("tie-break column must differ from recency column")
	}
	if seen[def.TiebreakColumn] {
		return errors.New("tie-break column must not be part of the key")
	}

	return nil
}

// Get returns the named source definition
func (r *dedupSourceRegistry) Get(name string) (DedupSource, error) {
	src, ok := r.sources[name]
	if !ok {
		return DedupSource{}, fmt.Errorf("%w: %q", domain.ErrUnknownDedupSource, name)
	}
	return src, nil
}

// Names returns the registered source names in sorted order
func (r *dedupSourceRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
