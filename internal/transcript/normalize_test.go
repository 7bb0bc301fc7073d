package transcript

import (
	"strings"
	"testing"
)

func TestNormalizer_RewritesEscapes(t *testing.T) {
	n := DefaultNormalizer()
	got := n.Normalize(`Mr. REID. Mr. President,\nI ask that it\'s read.\tThanks`)
	want := "Mr. REID. Mr. President,\nI ask that it's read.\tThanks"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizer_DropsInlineCitations(t *testing.T) {
	n := DefaultNormalizer()
	raw := `the Senate will\n[', <a href='/congressional-record/volume-162/senate-section/page/S124'>Page S124</a>, ']\nproceed to vote.`
	got := n.Normalize(raw)
	if strings.Contains(got, "Page S124") {
		t.Fatalf("expected inline citation to be removed, got %q", got)
	}
	if !strings.Contains(got, "the Senate will\nproceed to vote.") {
		t.Errorf("expected surrounding text joined by a newline, got %q", got)
	}
}

func TestNormalizer_KeepsPageBreaks(t *testing.T) {
	n := DefaultNormalizer()
	raw := pageBreak(1) + `\n\nPRAYER\n\nThe Chaplain offered the following prayer.\n'] ` + pageBreak(2) + `\n\nPLEDGE\n']`
	got := n.Normalize(raw)

	breaks := PageBreaks(got, DefaultPatterns().PageBreak)
	if len(breaks) != 2 {
		t.Fatalf("expected 2 page breaks after normalization, got %d in %q", len(breaks), got)
	}
	if !strings.Contains(got, "\nPRAYER\n") {
		t.Errorf("expected escaped newlines rewritten, got %q", got)
	}
}

func TestReplace_AppliesInOrder(t *testing.T) {
	got := Replace("aXbXc", []Replacement{
		{Old: "X", New: "Y"},
		{Old: "Y", New: "-"},
		{Old: "", New: "ignored"},
	})
	if got != "a-b-c" {
		t.Errorf("expected %q, got %q", "a-b-c", got)
	}
}

func TestNormalizer_NilCitationOnlyReplaces(t *testing.T) {
	n := &Normalizer{Replacements: []Replacement{{Old: "foo", New: "bar"}}}
	if got := n.Normalize("foo foo"); got != "bar bar" {
		t.Errorf("expected %q, got %q", "bar bar", got)
	}
}
