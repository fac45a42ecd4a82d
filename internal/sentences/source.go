package sentences

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Source is the finite ordered pool of candidate sentences, loaded once at
// startup from the preprocessed line-oriented text file. One non-empty
// trimmed line = one sentence; file order is iteration order.
type Source struct {
	sentences []string
}

// Load reads the sentence pool. A missing file is a startup error: the
// operator must run the preprocessing step first.
func Load(path string, logger *zap.Logger) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sentence file %q (run preprocessing first): %w", path, err)
	}
	defer file.Close()

	var sentences []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sentences = append(sentences, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sentence file %q: %w", path, err)
	}

	logger.Info("Sentence pool loaded",
		zap.String("path", path),
		zap.Int("sentence_count", len(sentences)))

	return &Source{sentences: sentences}, nil
}

// FromSlice wraps an in-memory pool. Used in tests.
func FromSlice(pool []string) *Source {
	return &Source{sentences: pool}
}

// All returns the pool in load order. Callers must not mutate it.
func (s *Source) All() []string {
	return s.sentences
}

// Len returns the pool size.
func (s *Source) Len() int {
	return len(s.sentences)
}
