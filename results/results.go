// Package results stores session reports as JSON files, one file per
// report named by its UUID.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pevans/opinionscraper/analysis"
)

// DefaultDir is where reports are stored unless configured otherwise.
const DefaultDir = "results"

// Store is a directory of session reports.
type Store struct {
	dir string
}

// ReadError describes a failure to read a single report file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ListResult contains the reports found in the store, oldest first, and any
// per-file errors met while reading them.
type ListResult struct {
	Reports []analysis.Report
	Errors  []ReadError
}

// NewStore opens the store in dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	// 0700: owner-only access
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Add writes report to <id>.json and returns the file path.
func (s *Store) Add(report analysis.Report) (string, error) {
	if report.ID == uuid.Nil {
		return "", fmt.Errorf("report has no ID")
	}

	filename := s.path(report.ID)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	// 0600: owner-only read/write
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return filename, nil
}

// List returns every report in the store. Corrupted or unreadable files are
// collected in the result's Errors rather than failing the whole listing; a
// non-nil error means the directory itself could not be read.
func (s *Store) List() (*ListResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	result := &ListResult{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		report, err := readReport(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{
				Filename: entry.Name(),
				Err:      err,
			})
			continue
		}

		result.Reports = append(result.Reports, *report)
	}

	slices.SortStableFunc(result.Reports, func(a, b analysis.Report) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result, nil
}

// Get retrieves a report by ID. A missing report is (nil, nil).
func (s *Store) Get(id uuid.UUID) (*analysis.Report, error) {
	report, err := readReport(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return report, nil
}

// Find retrieves the report whose ID starts with prefix, so that the short
// IDs shown by listings can be used. It fails when prefix is ambiguous.
func (s *Store) Find(prefix string) (*analysis.Report, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return s.Get(id)
	}

	listing, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []analysis.Report
	for _, report := range listing.Reports {
		if prefix != "" && strings.HasPrefix(report.ID.String(), prefix) {
			matches = append(matches, report)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID.String())
		}
		slices.Sort(ids)
		return nil, fmt.Errorf("ambiguous report ID %q matches %v", prefix, ids)
	}
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

func readReport(filename string) (*analysis.Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}
