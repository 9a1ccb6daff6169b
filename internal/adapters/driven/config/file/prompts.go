// Package file provides file-backed configuration adapters.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptFileName is the user-editable prompt file inside the prompt directory.
const PromptFileName = "prompts.toml"

// PromptStore loads LLM prompts from a user-editable TOML file on disk,
// with fallback to embedded defaults.
//
// The store uses lazy initialisation - the file is only created when first
// accessed, not in the constructor. This makes testing easier and avoids
// unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when the user file doesn't exist and as the initial
// content for a new file.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `You are an assistant answering questions about forensic psychiatric case files.
Answer the question using ONLY the context below. If the context does not
contain the answer, say so. Cite facts rather than speculating.

Context:
%s

Question: %s

Answer:`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ./data/prompts.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		promptDir = filepath.Join("data", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and writes the default
// file. Returns the cached value if available, otherwise reads the file.
// Falls back to the embedded default if the file is missing or the name
// is absent from it.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and the default prompt file.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	path := filepath.Join(s.promptDir, PromptFileName)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return // Already exists or stat error (read will surface it)
	}

	data, err := toml.Marshal(defaultPrompts)
	if err != nil {
		s.initErr = fmt.Errorf("encode default prompts: %w", err)
		return
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		s.initErr = fmt.Errorf("create default prompt file: %w", err)
	}
}

// loadFromFile reads one prompt from the TOML file.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, PromptFileName))
	if err != nil {
		return "", err
	}

	var prompts map[string]string
	if err := toml.Unmarshal(data, &prompts); err != nil {
		return "", fmt.Errorf("parse %s: %w", PromptFileName, err)
	}

	prompt, ok := prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not defined in %s", name, PromptFileName)
	}
	return strings.TrimSpace(prompt), nil
}
