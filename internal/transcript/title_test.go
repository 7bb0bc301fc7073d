package transcript

import "testing"

func TestCaptureTitle_LeadingHeading(t *testing.T) {
	re := DefaultPatterns().Title
	page := "\n\n\nAPPOINTMENT OF ACTING PRESIDENT PRO TEMPORE\n\nThe PRESIDING OFFICER. The clerk will please read a communication to the Senate.\n"

	if got := CaptureTitle(page, re); got != "APPOINTMENT OF ACTING PRESIDENT PRO TEMPORE" {
		t.Errorf("expected %q, got %q", "APPOINTMENT OF ACTING PRESIDENT PRO TEMPORE", got)
	}
	want := "The PRESIDING OFFICER. The clerk will please read a communication to the Senate.\n"
	if got := RemoveTitle(page, re); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCaptureTitle_EscapedNewlines(t *testing.T) {
	re := DefaultPatterns().Title
	page := `\n\n\nPRAYER\n\nThe Chaplain offered the following prayer:`
	if got := CaptureTitle(page, re); got != "PRAYER" {
		t.Errorf("expected %q, got %q", "PRAYER", got)
	}
	if got := RemoveTitle(page, re); got != "The Chaplain offered the following prayer:" {
		t.Errorf("expected body after title, got %q", got)
	}
}

func TestCaptureTitle_BodyTextHasNoTitle(t *testing.T) {
	re := DefaultPatterns().Title
	pages := []string{
		"of the Senate and the House of Representatives, in order that\nthe work may continue.\n",
		"  I ask unanimous consent that the order be rescinded.\n",
		"Mr. REID. Mr. President, I suggest the absence of a quorum.\n",
		"The PRESIDING OFFICER. Without objection, it is so ordered.\n",
	}
	for _, page := range pages {
		if got := CaptureTitle(page, re); got != "" {
			t.Errorf("expected no title for %q, got %q", page, got)
		}
		if got := RemoveTitle(page, re); got != page {
			t.Errorf("expected page unchanged, got %q", got)
		}
	}
}

func TestCaptureTitle_WrappedHeading(t *testing.T) {
	re := DefaultPatterns().Title
	page := "NATIONAL DEFENSE AUTHORIZATION ACT FOR FISCAL\n  YEAR 2017--CONFERENCE REPORT\n\nMr. McCAIN. Mr. President, I rise today.\n"
	want := "NATIONAL DEFENSE AUTHORIZATION ACT FOR FISCAL YEAR 2017--CONFERENCE REPORT"
	if got := CaptureTitle(page, re); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := RemoveTitle(page, re); got != "Mr. McCAIN. Mr. President, I rise today.\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestCaptureTitle_WhitespaceOnly(t *testing.T) {
	re := DefaultPatterns().Title
	for _, page := range []string{"", "   ", "\n\n\t\n", `\n\n`} {
		if got := CaptureTitle(page, re); got != "" {
			t.Errorf("expected no title for %q, got %q", page, got)
		}
	}
}

func TestRemoveTitle_Idempotent(t *testing.T) {
	re := DefaultPatterns().Title
	pages := []string{
		"",
		"plain continuation text\n",
		"PRAYER\n\nThe Chaplain offered the following prayer.\n",
		"\n\nAPPOINTMENT OF ACTING PRESIDENT PRO TEMPORE\n\nThe PRESIDING OFFICER. The clerk will read.\n",
		"EXECUTIVE SESSION\n\nTribute\n\nMs. COLLINS. Mr. President, I rise today.\n",
		"RECESS\n",
		"EXECUTIVE SESSION\n\nEXECUTIVE CALENDAR\n\nThe PRESIDING OFFICER. The clerk will report.\n",
	}
	for _, p := range pages {
		once := RemoveTitle(p, re)
		twice := RemoveTitle(once, re)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", p, once, twice)
		}
	}
}

func TestRemoveTitle_StackedHeadings(t *testing.T) {
	re := DefaultPatterns().Title
	page := "EXECUTIVE SESSION\n\nEXECUTIVE CALENDAR\n\nThe PRESIDING OFFICER. The clerk will report.\n"

	title, body := SplitTitle(page, re)
	if title != "EXECUTIVE SESSION" {
		t.Errorf("expected first heading as title, got %q", title)
	}
	if want := "The PRESIDING OFFICER. The clerk will report.\n"; body != want {
		t.Errorf("expected body %q, got %q", want, body)
	}
	if got := RemoveTitle(page, re); got != body {
		t.Errorf("expected RemoveTitle to agree with SplitTitle, got %q", got)
	}
}

func TestSplitTitle_MatchesCaptureAndRemove(t *testing.T) {
	re := DefaultPatterns().Title
	page := "RECESS\n\nThe PRESIDING OFFICER. The Senate stands in recess.\n"
	title, body := SplitTitle(page, re)
	if title != CaptureTitle(page, re) {
		t.Errorf("expected title %q, got %q", CaptureTitle(page, re), title)
	}
	if body != RemoveTitle(page, re) {
		t.Errorf("expected body %q, got %q", RemoveTitle(page, re), body)
	}
}

func TestCaptureTitle_MinorPattern(t *testing.T) {
	re := DefaultPatterns().MinorTitle
	if got := CaptureTitle("Liquid Nicotine\n\nMs. COLLINS. Mr. President.\n", re); got != "Liquid Nicotine" {
		t.Errorf("expected %q, got %q", "Liquid Nicotine", got)
	}
	if got := CaptureTitle("Ms. COLLINS. Mr. President, I rise today.\n\n", re); got != "" {
		t.Errorf("expected sentence not to be a heading, got %q", got)
	}
}
