package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

type promptTemplate struct {
	name string
	text string
	// verbs is the number of %s placeholders the synthesizer fills in.
	verbs int
}

var templates = []promptTemplate{
	{
		name: driven.PromptAnswer,
		text: `Provide a detailed answer to the question: '%s' based on the following context:

%s`,
		verbs: 2,
	},
	{
		name: driven.PromptSummarise,
		text: `Summarize the following text:

%s`,
		verbs: 1,
	},
}

var errPlaceholders = errors.New("wrong number of %s placeholders")

func lookupTemplate(name string) (promptTemplate, bool) {
	for _, t := range templates {
		if t.name == name {
			return t, true
		}
	}
	return promptTemplate{}, false
}

// builtinPrompt returns the shipped text for name, or "" if there is none.
func builtinPrompt(name string) string {
	t, _ := lookupTemplate(name)
	return t.text
}

// Names lists the prompts a user can edit.
func Names() []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.name
	}
	return names
}

// PromptStore serves the generative prompts from <dir>/<name>.txt. The
// directory and the default files are written on first use. A file that is
// missing or has the wrong placeholders is replaced by the built-in text.
type PromptStore struct {
	dir string

	setup    sync.Once
	writable bool

	mu     sync.Mutex
	loaded map[string]string
}

// NewPromptStore does no I/O. An empty dir means ~/.scheme-research/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) Load(name string) (string, error) {
	t, ok := lookupTemplate(name)
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.setup.Do(func() {
		if err := s.writeDefaults(); err != nil {
			logger.Warn("prompts: %v; using built-in prompts", err)
			return
		}
		s.writable = true
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if text, ok := s.loaded[name]; ok {
		return text, nil
	}

	text := t.text
	if s.writable {
		custom, err := s.read(t)
		switch {
		case err == nil:
			text = custom
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warn("prompts: %s: %v; using the built-in prompt", name, err)
		}
	}
	s.loaded[name] = text
	return text, nil
}

// Reload drops every loaded prompt so the next Load reads the file again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.loaded)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(t promptTemplate) (string, error) {
	data, err := os.ReadFile(s.path(t.name))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if strings.Count(text, "%s") != t.verbs {
		return "", fmt.Errorf("%w: want %d", errPlaceholders, t.verbs)
	}
	return text, nil
}

// writeDefaults creates the directory and any prompt file that does not
// exist yet. Existing files are never touched.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for _, t := range templates {
		f, err := os.OpenFile(s.path(t.name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create prompt %q: %w", t.name, err)
		}
		_, werr := f.WriteString(t.text)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("write prompt %q: %w", t.name, werr)
		}
	}
	return nil
}
