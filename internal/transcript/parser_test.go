package transcript

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func sectionTitles(t *testing.T, p *Parser, raw string) []string {
	t.Helper()
	var titles []string
	for _, s := range p.Parse(raw).Sections {
		titles = append(titles, s.Title)
	}
	return titles
}

func TestParser_AppointmentPage(t *testing.T) {
	raw := pageBreak(1) + `\n\nThe Senate met at 10 a.m.\n'] ` +
		pageBreak(2) + `\n\nAPPOINTMENT OF ACTING PRESIDENT PRO TEMPORE\n\nThe PRESIDING OFFICER. The clerk will read a communication to the Senate.\n']`

	rec := newTestParser(t).Parse(raw)
	if len(rec.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(rec.Sections), rec.Sections)
	}

	s := rec.Sections[1]
	if s.Title != "APPOINTMENT OF ACTING PRESIDENT PRO TEMPORE" {
		t.Errorf("unexpected title %q", s.Title)
	}
	want := []turnWant{{Speaker: "The PRESIDING OFFICER", Text: "The clerk will read a communication to the Senate."}}
	if got := toWant(s.Turns); !turnsEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	untitled := rec.Sections[0]
	if untitled.Title != "" || untitled.Turns[0].Text != "The Senate met at 10 a.m." {
		t.Errorf("unexpected untitled section %+v", untitled)
	}
}

func TestParser_RepeatedTitleAccumulates(t *testing.T) {
	raw := pageBreak(1) + `\n\nAPPOINTMENT OF ACTING PRESIDENT PRO TEMPORE\n\nThe PRESIDING OFFICER. The clerk will read.\n'] ` +
		pageBreak(2) + `\n\nAPPOINTMENT OF ACTING PRESIDENT PRO TEMPORE\n\nThe ACTING PRESIDENT pro tempore. Thank you.\n']`

	r := newTestParser(t).Start(raw)
	if err := r.Split(); err != nil {
		t.Fatal(err)
	}
	if err := r.Group(); err != nil {
		t.Fatal(err)
	}
	c := r.Collection()
	if c.Len() != 1 {
		t.Fatalf("expected one title, got %v", c.Keys())
	}
	if n := len(c.Get("APPOINTMENT OF ACTING PRESIDENT PRO TEMPORE").Fragments); n != 2 {
		t.Errorf("expected a two-element sequence, got %d", n)
	}
}

func TestParser_ExecutiveSessionExpanded(t *testing.T) {
	raw := pageBreak(1) + `\n\nEXECUTIVE SESSION\n\nTribute\n\nMs. COLLINS. Mr. President, I rise today to pay tribute.\n\nLiquid Nicotine\n\nMs. COLLINS. Mr. President, I rise to discuss liquid nicotine.\n']`

	rec := newTestParser(t).Parse(raw)
	want := []string{"EXECUTIVE SESSION: Tribute", "EXECUTIVE SESSION: Liquid Nicotine"}
	var got []string
	for _, s := range rec.Sections {
		got = append(got, s.Title)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	last := rec.Sections[1].Turns
	if len(last) != 1 || last[0].Speaker != "Ms. COLLINS" || last[0].Text != "Mr. President, I rise to discuss liquid nicotine." {
		t.Errorf("unexpected turns %+v", last)
	}
}

func TestParser_BlankPageContributesNothing(t *testing.T) {
	raw := pageBreak(1) + `\n\nPRAYER\n\nThe Chaplain offered the following prayer:\n'] ` +
		pageBreak(2) + `\n   \n'] ` +
		pageBreak(3) + `\n\nPLEDGE OF ALLEGIANCE\n\nThe PRESIDING OFFICER led the Pledge of Allegiance.\n']`

	got := sectionTitles(t, newTestParser(t), raw)
	want := []string{"PRAYER", "PLEDGE OF ALLEGIANCE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParser_EveryPageBodyLandsInOneSection(t *testing.T) {
	raw := pageBreak(1) + `\n\nPRAYER\n\nThe Chaplain offered the following prayer: alpha marker.\n'] ` +
		pageBreak(2) + `\n\nEXECUTIVE SESSION\n\nThe PRESIDING OFFICER. Is there further debate on bravo marker?\n\nTribute\n\nMs. COLLINS. I rise to honor charlie marker.\n\nLiquid Nicotine\n\nMs. COLLINS. I rise to discuss delta marker.\n'] ` +
		pageBreak(3) + `\n\nThe PRESIDING OFFICER. Without objection, echo marker.\n'] ` +
		pageBreak(4) + `\n   \n'] ` +
		pageBreak(5) + `\n\nEXECUTIVE SESSION\n\nThe PRESIDING OFFICER. Is there further debate on foxtrot marker?\n\nMr. REID. I yield on golf marker.\n'] ` +
		pageBreak(6) + `\n\nADJOURNMENT\n\nThe PRESIDING OFFICER. The Senate stands adjourned, hotel marker.\n']`

	rec := newTestParser(t).Parse(raw)

	wantTitles := []string{"PRAYER", "EXECUTIVE SESSION: Tribute", "EXECUTIVE SESSION: Liquid Nicotine", "", "ADJOURNMENT"}
	var titles []string
	for _, s := range rec.Sections {
		titles = append(titles, s.Title)
	}
	if !reflect.DeepEqual(titles, wantTitles) {
		t.Fatalf("expected %v, got %v", wantTitles, titles)
	}

	markers := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	for _, m := range markers {
		m += " marker"
		found := 0
		for _, s := range rec.Sections {
			var text strings.Builder
			for _, turn := range s.Turns {
				text.WriteString(turn.Text)
				text.WriteString("\n")
			}
			found += strings.Count(text.String(), m)
		}
		if found != 1 {
			t.Errorf("expected %q in exactly one section, found %d times", m, found)
		}
	}
}

func TestParser_InterleavedTitlesKeepFirstSeenOrder(t *testing.T) {
	raw := pageBreak(1) + `\n\nPRAYER\n\nThe Chaplain offered the first prayer.\n'] ` +
		pageBreak(2) + `\n\nPLEDGE OF ALLEGIANCE\n\nThe PRESIDING OFFICER led the Pledge of Allegiance.\n'] ` +
		pageBreak(3) + `\n\nPRAYER\n\nThe Chaplain offered the second prayer.\n']`

	rec := newTestParser(t).Parse(raw)
	want := []string{"PRAYER", "PLEDGE OF ALLEGIANCE"}
	var got []string
	for _, s := range rec.Sections {
		got = append(got, s.Title)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	var texts []string
	for _, turn := range rec.Sections[0].Turns {
		texts = append(texts, turn.Text)
	}
	wantTexts := []string{"The Chaplain offered the first prayer.", "The Chaplain offered the second prayer."}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Errorf("expected %v, got %v", wantTexts, texts)
	}
}

func TestParser_MalformedInputIsOneUntitledSection(t *testing.T) {
	rec := newTestParser(t).Parse("no boilerplate, no headings, just words")
	if len(rec.Sections) != 1 || rec.Sections[0].Title != "" {
		t.Fatalf("expected one untitled section, got %+v", rec.Sections)
	}
	if rec.Sections[0].Turns[0].Text != "no boilerplate, no headings, just words" {
		t.Errorf("unexpected text %q", rec.Sections[0].Turns[0].Text)
	}
}

func TestParser_EmptyInput(t *testing.T) {
	rec := newTestParser(t).Parse("")
	if len(rec.Sections) != 0 {
		t.Errorf("expected no sections, got %+v", rec.Sections)
	}
}

func TestRun_StageOrder(t *testing.T) {
	r := newTestParser(t).Start(pageBreak(1) + `\n\nPRAYER\n\ntext\n']`)

	if err := r.Attribute(); !errors.Is(err, ErrStageOrder) {
		t.Fatalf("expected ErrStageOrder, got %v", err)
	}
	if r.Stage() != StageRaw {
		t.Errorf("expected stage %s, got %s", StageRaw, r.Stage())
	}

	for _, step := range []func() error{r.Split, r.Group, r.Attribute, r.Expand, r.Clean} {
		if err := step(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if r.Stage() != StageCleaned {
		t.Errorf("expected stage %s, got %s", StageCleaned, r.Stage())
	}
}

func TestRun_RerunIsNoop(t *testing.T) {
	r := newTestParser(t).Start(pageBreak(1) + `\n\nPRAYER\n\ntext\n']`)
	if err := r.Split(); err != nil {
		t.Fatal(err)
	}
	if err := r.Group(); err != nil {
		t.Fatal(err)
	}
	before := r.Collection()
	if err := r.Group(); err != nil {
		t.Fatalf("expected re-run to succeed, got %v", err)
	}
	if r.Collection() != before {
		t.Error("expected re-run to leave the collection untouched")
	}
	if err := r.Split(); err != nil {
		t.Fatalf("expected earlier stage re-run to succeed, got %v", err)
	}
	if r.Stage() != StageGrouped {
		t.Errorf("expected stage %s, got %s", StageGrouped, r.Stage())
	}
}

func TestRun_All(t *testing.T) {
	r := newTestParser(t).Start(pageBreak(1) + `\n\nPRAYER\n\ntext\n']`)
	if err := r.Split(); err != nil {
		t.Fatal(err)
	}
	if err := r.All(); err != nil {
		t.Fatalf("expected remaining stages to run, got %v", err)
	}
	if r.Stage() != StageCleaned {
		t.Errorf("expected stage %s, got %s", StageCleaned, r.Stage())
	}
	if err := r.All(); err != nil {
		t.Errorf("expected a completed run to stay put, got %v", err)
	}
	if got := r.Sections(); len(got) != 1 || got[0].Title != "PRAYER" {
		t.Errorf("unexpected sections %+v", got)
	}
}

func TestStage_String(t *testing.T) {
	if StageExpanded.String() != "section_expanded" {
		t.Errorf("unexpected %q", StageExpanded.String())
	}
	if Stage(42).String() != "stage(42)" {
		t.Errorf("unexpected %q", Stage(42).String())
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	_, err := New(WithPatterns(Patterns{}))
	if !errors.Is(err, ErrInvalidPatterns) {
		t.Errorf("expected ErrInvalidPatterns, got %v", err)
	}
}

func TestCompile_Overrides(t *testing.T) {
	p, err := Compile(PatternSource{
		Speakers:       []string{`(?m)^(SENATOR [A-Z]+):[ \t]*`},
		CompoundTitles: []string{"WRAP UP"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !p.IsCompound("WRAP UP") || p.IsCompound("EXECUTIVE SESSION") {
		t.Errorf("unexpected compound titles %v", p.CompoundTitles)
	}
	turns := AttributeSpeakers("SENATOR SMITH: hello\n", p.Speakers)
	if len(turns) != 1 || turns[0].Speaker != "SENATOR SMITH" {
		t.Errorf("unexpected turns %+v", turns)
	}
	if p.Title.String() != DefaultTitle {
		t.Error("expected unset fields to fall back to defaults")
	}
}

func TestCompile_RejectsBadPatterns(t *testing.T) {
	if _, err := Compile(PatternSource{Title: "("}); err == nil {
		t.Error("expected a compile error")
	}
	if _, err := Compile(PatternSource{Title: "^[A-Z]+"}); !errors.Is(err, ErrInvalidPatterns) {
		t.Errorf("expected ErrInvalidPatterns for a title without a group, got %v", err)
	}
}

func TestWithCompoundTitles_DisablesExpansion(t *testing.T) {
	raw := pageBreak(1) + `\n\nEXECUTIVE SESSION\n\nTribute\n\nMs. COLLINS. I rise.\n']`
	got := sectionTitles(t, newTestParser(t, WithCompoundTitles()), raw)
	if !reflect.DeepEqual(got, []string{"EXECUTIVE SESSION"}) {
		t.Errorf("expected no expansion, got %v", got)
	}
}

func TestWithLogger_ReportsStages(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)

	p := newTestParser(t, WithLogger(logrus.NewEntry(l)))
	p.Parse(pageBreak(1) + `\n\nPRAYER\n\ntext\n']`)

	out := buf.String()
	if !strings.Contains(out, "stage complete") || !strings.Contains(out, "stage=cleaned") {
		t.Errorf("expected stage logs, got %q", out)
	}
}
