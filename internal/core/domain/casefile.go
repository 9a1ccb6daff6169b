package domain

// Case is read-only reference data describing one evaluated matter.
// It is sourced from a metadata descriptor file in the case directory
// and joined into ranking output; the core never writes it.
type Case struct {
	// ID is the unique case identifier (also the directory name).
	ID string

	// Title is the human-readable case title.
	Title string

	// Date is the case date as recorded in the metadata file.
	Date string

	// Summary is a free-text case summary, possibly empty.
	Summary string

	// KeyFindings is the ordered list of key-finding strings.
	KeyFindings []string

	// DocumentCount is the number of content documents in the case.
	DocumentCount int
}

// CaseMatch is one entry of a ranked case list produced by the
// aggregator.
type CaseMatch struct {
	// CaseID identifies the matched case.
	CaseID string

	// Title is the case title, or the case identifier when metadata
	// was unavailable.
	Title string

	// Score is the relevance score on a 0-100 scale, one decimal place.
	Score float64

	// Summary is the case summary, or the best-matching fragment text
	// truncated to 300 characters as a fallback.
	Summary string

	// KeyFindings holds up to five key findings.
	KeyFindings []string

	// DocumentCount is the case document count (approximate when
	// recomputed from a directory listing).
	DocumentCount int
}

// MaxKeyFindings caps the findings included in a CaseMatch.
const MaxKeyFindings = 5

// FallbackSummaryLength caps the fragment text used as a summary
// substitute when case metadata is unavailable.
const FallbackSummaryLength = 300
