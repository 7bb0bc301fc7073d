package transcript

import (
	"testing"

	"github.com/jchaskell/cr/internal/record"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"leading whitespace", "\n\n  Mr. President.", "Mr. President."},
		{"escaped newlines", `\n\nThe clerk will read.`, "The clerk will read."},
		{"list terminator", "The clerk will read.\n']", "The clerk will read."},
		{"element separator", "', \nThe roll was called.", "The roll was called."},
		{"double quoted terminator", "I yield.\n\"] ", "I yield."},
		{"inner text kept", "first\n\nsecond", "first\n\nsecond"},
		{"only debris", " \n'] ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClean_TrimsFragmentsAndTurns(t *testing.T) {
	c := NewSpeechCollection()
	c.Append("RECESS", Fragment{
		Text:  "\n\nMr. REID. I move to recess.\n']",
		Turns: []record.Turn{{Speaker: "Mr. REID", Text: "I move to recess.\n']"}},
	})
	c.Append("", Fragment{Text: "  untitled  "})

	out := Clean(c)
	e := out.Get("RECESS")
	if e.Fragments[0].Text != "Mr. REID. I move to recess." {
		t.Errorf("unexpected fragment text %q", e.Fragments[0].Text)
	}
	if e.Fragments[0].Turns[0].Text != "I move to recess." {
		t.Errorf("unexpected turn text %q", e.Fragments[0].Turns[0].Text)
	}
	if out.Get("").Fragments[0].Turns != nil {
		t.Error("expected unattributed fragment to stay without turns")
	}
	if c.Get("RECESS").Fragments[0].Turns[0].Text != "I move to recess.\n']" {
		t.Error("expected Clean to leave its input untouched")
	}
}
