package record

import "time"

// Record is the parsed form of one chamber-day transcript.
type Record struct {
	Chamber  string    `json:"chamber,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	Source   string    `json:"source,omitempty"` // URL or file the transcript came from
	Sections []Section `json:"sections"`
}

// Section is a debate topic and the speaker turns filed under it.
// An empty Title means the heading could not be detected.
type Section struct {
	Title string `json:"title"`
	Turns []Turn `json:"turns"`
}

// Turn is one speaker's uninterrupted remarks. Speaker is empty for text
// that precedes any recognised speaker introduction.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Row is a flattened turn, the unit tabular sinks write.
type Row struct {
	Chamber string
	Date    time.Time
	Title   string
	Speaker string
	Text    string
}

// Rows flattens the record in document order.
func (r *Record) Rows() []Row {
	var rows []Row
	for _, s := range r.Sections {
		for _, t := range s.Turns {
			rows = append(rows, Row{
				Chamber: r.Chamber,
				Date:    r.Date,
				Title:   s.Title,
				Speaker: t.Speaker,
				Text:    t.Text,
			})
		}
	}
	return rows
}

// TurnCount returns the number of turns across all sections.
func (r *Record) TurnCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Turns)
	}
	return n
}

// DateString formats the record date the way file names and URLs expect it.
func (r *Record) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

// Partition splits the flattened rows into those with a speaker and those
// without one (votes, inserted material, untitled continuation).
func (r *Record) Partition() (speeches, other []Row) {
	for _, row := range r.Rows() {
		if row.Speaker == "" {
			other = append(other, row)
			continue
		}
		speeches = append(speeches, row)
	}
	return speeches, other
}
