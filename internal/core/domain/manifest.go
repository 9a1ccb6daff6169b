package domain

import "strings"

// manifestKeySeparator joins the case identifier and the source file
// name. Collisions only occur for the same file re-ingested under the
// same case, which is exactly the duplicate the manifest exists to catch.
const manifestKeySeparator = "_"

// ManifestEntry records that a source file was already turned into
// fragments and stored. At most one entry exists per (case, file) key.
type ManifestEntry struct {
	// CaseID is the owning case identifier.
	CaseID string `json:"case_id"`

	// FileName is the source file name within the case directory.
	FileName string `json:"file_name"`

	// IngestedAt marks when the file was ingested (RFC 3339).
	IngestedAt string `json:"ingested_at"`
}

// ManifestKey builds the composite ledger key for a (case, file) pair.
func ManifestKey(caseID, fileName string) string {
	return caseID + manifestKeySeparator + fileName
}

// CaseKeyPrefix returns the prefix matching every manifest key that
// belongs to the given case.
func CaseKeyPrefix(caseID string) string {
	return caseID + manifestKeySeparator
}

// KeyBelongsToCase reports whether a manifest key was produced for the
// given case.
func KeyBelongsToCase(key, caseID string) bool {
	return strings.HasPrefix(key, CaseKeyPrefix(caseID))
}
