package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// DefaultSectionTitle names the single section returned when no header matches.
const DefaultSectionTitle = "Document"

// SplitBySections splits text at lines matching any of the header patterns.
// Patterns are matched multi-line and case-insensitively. Each section
// starts at the line holding the match and runs to the next header or the
// end of text. Text before the first header is not returned.
func (c *Chunker) SplitBySections(text string, patterns []string) ([]domain.Section, error) {
	re, err := compileSectionPatterns(patterns)
	if err != nil {
		return nil, err
	}

	var matches [][]int
	if re != nil {
		matches = re.FindAllStringIndex(text, -1)
	}

	var starts []int
	for _, m := range matches {
		ls := lineStart(text, m[0])
		if len(starts) > 0 && starts[len(starts)-1] == ls {
			continue
		}
		starts = append(starts, ls)
	}

	sections := make([]domain.Section, 0, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		body := text[start:end]
		if strings.TrimSpace(body) == "" {
			continue
		}
		sections = append(sections, domain.Section{
			Title:        strings.TrimSpace(firstLine(body)),
			Text:         body,
			StartOffset:  start,
			EndOffset:    end,
			SectionIndex: len(sections),
		})
	}

	if len(sections) == 0 {
		return []domain.Section{{
			Title:       DefaultSectionTitle,
			Text:        text,
			StartOffset: 0,
			EndOffset:   len(text),
		}}, nil
	}
	return sections, nil
}

func compileSectionPatterns(patterns []string) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("%w: section pattern %q: %v", domain.ErrInvalidInput, p, err)
		}
		parts = append(parts, "(?:"+p+")")
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return regexp.Compile("(?mi)" + strings.Join(parts, "|"))
}

func lineStart(text string, i int) int {
	return strings.LastIndexByte(text[:i], '\n') + 1
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
