package transcript

import "fmt"

// pageBreak renders the scrape boilerplate that opens each article, in the
// escaped form the scraper writes to disk.
func pageBreak(page int) string {
	return fmt.Sprintf(`['\n[', <a href='/congressional-record/volume-162/senate-section/page/S%d'>Page S%d</a>, ']\nFrom the Congressional Record Online through the Government Publishing Office [www.gpo.gov]`, page, page)
}

func turnsEqual(a, b []turnWant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type turnWant struct {
	Speaker string
	Text    string
}
