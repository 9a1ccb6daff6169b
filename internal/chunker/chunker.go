// Package chunker provides fixed-size text splitting with overlap.
package chunker

// DefaultChunkSize is the default number of characters per fragment.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Splitter splits document content into fixed-size overlapping pieces.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cuts content into chunks of at most chunkSize characters, each
// overlapping the previous by the configured amount. Empty content
// produces no chunks.
func (s *Splitter) Split(content string) []string {
	if content == "" {
		return nil
	}

	runes := []rune(content)
	contentLen := len(runes)

	estimated := (contentLen / (s.chunkSize - s.overlap)) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < contentLen {
		end := start + s.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, string(runes[start:end]))

		if end == contentLen {
			break
		}
		start += s.chunkSize - s.overlap
	}

	return chunks
}
