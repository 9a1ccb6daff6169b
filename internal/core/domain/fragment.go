package domain

// Reserved metadata keys attached to every stored fragment.
const (
	// MetaCaseID is the metadata key holding the owning case identifier.
	MetaCaseID = "case_id"

	// MetaFileName is the metadata key holding the source file name.
	MetaFileName = "file_name"
)

// Fragment is an immutable unit of retrievable text. Fragments are
// created during ingestion and never mutated; they disappear only when
// the store is cleared.
type Fragment struct {
	// ID is the store-unique identifier, assigned on insert.
	ID string

	// CaseID is the owning case identifier.
	CaseID string

	// FileName is the source document the fragment was split from.
	FileName string

	// Content is the fragment text.
	Content string

	// Metadata contains arbitrary key-value pairs. MetaCaseID and
	// MetaFileName are always present after ingestion.
	Metadata map[string]string

	// Embedding is the vector representation of Content.
	Embedding []float32
}

// SourceDocument is one loaded case file split into fragments.
// All fragments of a document share a single manifest key, so
// duplicate detection operates per file, not per fragment.
type SourceDocument struct {
	// FileName is the base name of the file within the case directory.
	FileName string

	// Fragments are the text fragments produced by splitting the file.
	Fragments []Fragment
}
