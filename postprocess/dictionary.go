package postprocess

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// DictionaryEntry is a correction mapping from a commonly misheard
// phrase to its intended spelling.
type DictionaryEntry struct {
	Misheard    string
	Replacement string
}

// Dictionary holds user-defined transcription corrections.
type Dictionary struct {
	Entries []DictionaryEntry
}

// LoadDictionary reads corrections from a text file. Each line holds one
// mapping in the form "misheard -> correct". Blank lines and lines
// starting with # are ignored. A missing file yields an empty
// dictionary.
func LoadDictionary(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Dictionary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer file.Close()

	dict := &Dictionary{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		misheard, replacement, ok := strings.Cut(line, "->")
		if !ok {
			continue
		}
		misheard = strings.TrimSpace(misheard)
		replacement = strings.TrimSpace(replacement)
		if misheard == "" {
			continue
		}
		dict.Entries = append(dict.Entries, DictionaryEntry{
			Misheard:    misheard,
			Replacement: replacement,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return dict, nil
}

// Apply replaces every occurrence of each misheard phrase,
// case-insensitively, preserving the replacement's own casing.
func (d *Dictionary) Apply(text string) string {
	result := text
	for _, entry := range d.Entries {
		result = replaceFold(result, entry.Misheard, entry.Replacement)
	}
	return result
}

// replaceFold is strings.ReplaceAll with a case-insensitive match.
func replaceFold(s, old, new string) string {
	lower := strings.ToLower(s)
	lowerOld := strings.ToLower(old)

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(lower[start:], lowerOld)
		if i == -1 {
			b.WriteString(s[start:])
			return b.String()
		}
		i += start
		b.WriteString(s[start:i])
		b.WriteString(new)
		start = i + len(old)
	}
}

// DictionaryProcessor wraps a dictionary as a pipeline step.
func DictionaryProcessor(dict *Dictionary) Processor {
	return func(_ context.Context, text string) (string, error) {
		if dict == nil {
			return text, nil
		}
		return dict.Apply(text), nil
	}
}
