package chunker

import (
	"errors"
	"testing"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestSplitBySections(t *testing.T) {
	c := mustNew(t)
	text := "Preamble line\n" +
		"CHAPTER 1: Fire Safety\nKeep exits clear.\n" +
		"  Section 2 - Evacuation  \nUse stairs.\n" +
		"chapter 3: First Aid\nApply pressure.\n"

	sections, err := c.SplitBySections(text, []string{`^\s*chapter \d+`, `^\s*section \d+`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}

	wantTitles := []string{"CHAPTER 1: Fire Safety", "Section 2 - Evacuation", "chapter 3: First Aid"}
	for i, s := range sections {
		if s.Title != wantTitles[i] {
			t.Errorf("section %d: title %q, want %q", i, s.Title, wantTitles[i])
		}
		if s.SectionIndex != i {
			t.Errorf("section %d: index %d", i, s.SectionIndex)
		}
		if s.Text != text[s.StartOffset:s.EndOffset] {
			t.Errorf("section %d: text does not match range", i)
		}
	}
	if sections[0].Text != "CHAPTER 1: Fire Safety\nKeep exits clear.\n" {
		t.Errorf("unexpected first section text %q", sections[0].Text)
	}
	if sections[2].EndOffset != len(text) {
		t.Errorf("last section should run to end of text")
	}
	for i := 1; i < len(sections); i++ {
		if sections[i].StartOffset != sections[i-1].EndOffset {
			t.Errorf("section %d does not start where %d ends", i, i-1)
		}
	}
}

func TestSplitBySections_NoMatch(t *testing.T) {
	c := mustNew(t)
	text := "no headers anywhere"

	for _, patterns := range [][]string{nil, {`^appendix`}} {
		sections, err := c.SplitBySections(text, patterns)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sections) != 1 {
			t.Fatalf("expected 1 section, got %d", len(sections))
		}
		s := sections[0]
		if s.Title != DefaultSectionTitle || s.Text != text || s.StartOffset != 0 || s.EndOffset != len(text) {
			t.Errorf("unexpected section %+v", s)
		}
	}
}

func TestSplitBySections_MultipleMatchesOnOneLine(t *testing.T) {
	c := mustNew(t)
	text := "Part A and Part B\nbody\n"

	sections, err := c.SplitBySections(text, []string{`part [ab]`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 || sections[0].Title != "Part A and Part B" {
		t.Errorf("expected one section for the header line, got %+v", sections)
	}
}

func TestSplitBySections_InvalidPattern(t *testing.T) {
	c := mustNew(t)
	_, err := c.SplitBySections("text", []string{`(unclosed`})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSplitBySections_TextBeforeFirstHeaderIsDropped(t *testing.T) {
	c := mustNew(t)
	preamble := "Table of contents\nRevision 4\n"
	text := preamble + "Chapter 1: Intro\nWelcome.\n"

	sections, err := c.SplitBySections(text, []string{`^chapter \d+`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	if sections[0].StartOffset != len(preamble) {
		t.Errorf("first section starts at %d, want %d", sections[0].StartOffset, len(preamble))
	}
	if sections[0].Title != "Chapter 1: Intro" || sections[0].SectionIndex != 0 {
		t.Errorf("unexpected first section %+v", sections[0])
	}
}
