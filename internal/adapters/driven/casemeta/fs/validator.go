package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// requiredFields are the descriptor keys a well-formed case must carry.
var requiredFields = []string{
	"case_id", "title", "defendant", "date",
	"court", "evaluator", "question", "documents",
}

// standardDocumentTypes are the recognised document type labels. Other
// values are accepted but flagged as possible typos.
var standardDocumentTypes = map[string]bool{
	"evaluation_report": true,
	"testimony":         true,
	"correspondence":    true,
	"risk_assessment":   true,
	"civil_commitment":  true,
}

// ValidationResult reports the outcome of validating one case directory.
// Errors make the case unfit for ingestion, warnings are advisory.
type ValidationResult struct {
	CaseID   string
	Errors   []string
	Warnings []string
}

// Valid reports whether the case passed validation.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateCase checks the descriptor of one case directory against the
// expected schema. A missing or malformed descriptor is an error, as
// are missing required fields. Inconsistencies between the descriptor
// and the actual directory contents are warnings.
func (s *Store) ValidateCase(caseID string) ValidationResult {
	result := ValidationResult{CaseID: caseID}
	caseDir := filepath.Join(s.dataRoot, caseID)

	data, err := os.ReadFile(filepath.Join(caseDir, MetadataFileName))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read %s: %v", MetadataFileName, err))
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("malformed %s: %v", MetadataFileName, err))
		return result
	}

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required field %q", field))
		}
	}

	var meta caseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid field types: %v", err))
		return result
	}

	if meta.CaseID != "" && !strings.HasPrefix(meta.CaseID, "case_") {
		result.Errors = append(result.Errors, fmt.Sprintf("case_id %q must start with \"case_\"", meta.CaseID))
	}
	if meta.CaseID != "" && meta.CaseID != caseID {
		result.Warnings = append(result.Warnings, fmt.Sprintf("case_id %q does not match directory name %q", meta.CaseID, caseID))
	}

	// Summary and key findings drive case search; their absence is
	// legal but degrades result quality.
	if strings.TrimSpace(meta.Summary) == "" {
		result.Warnings = append(result.Warnings, "no summary provided, case search quality may suffer")
	}
	if len(meta.KeyFindings) == 0 {
		result.Warnings = append(result.Warnings, "no key_findings provided, case discovery quality may suffer")
	}

	// Cross-check the declared document list against what is on disk.
	onDisk := make(map[string]bool)
	entries, err := os.ReadDir(caseDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && entry.Name() != MetadataFileName {
				onDisk[entry.Name()] = true
			}
		}
	}
	declared := make(map[string]bool, len(meta.Documents))
	for _, doc := range meta.Documents {
		if doc.Filename == "" {
			result.Warnings = append(result.Warnings, "document entry without a filename")
			continue
		}
		declared[doc.Filename] = true
		if !onDisk[doc.Filename] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("declared document %q not found in case directory", doc.Filename))
		}
		if doc.Type != "" && !standardDocumentTypes[doc.Type] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("document %q has non-standard type %q", doc.Filename, doc.Type))
		}
	}

	var unlisted []string
	for name := range onDisk {
		if !declared[name] {
			unlisted = append(unlisted, name)
		}
	}
	sort.Strings(unlisted)
	for _, name := range unlisted {
		result.Warnings = append(result.Warnings, fmt.Sprintf("document %q on disk but not listed in %s", name, MetadataFileName))
	}

	return result
}

// ValidateAll validates every case directory under the data root.
func (s *Store) ValidateAll() ([]ValidationResult, error) {
	entries, err := os.ReadDir(s.dataRoot)
	if err != nil {
		return nil, fmt.Errorf("reading data root: %w", err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		results = append(results, s.ValidateCase(entry.Name()))
	}
	return results, nil
}
