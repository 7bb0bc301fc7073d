package transcript

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jchaskell/cr/internal/record"
)

type speakerMatch struct {
	start, end int // span of the whole introduction
	name       string
	priority   int
}

// AttributeSpeakers splits fragment into turns at every speaker
// introduction. Text before the first introduction becomes a turn with an
// empty speaker unless it is only whitespace. A fragment without any
// introduction yields a single unattributed turn holding the whole fragment.
//
// Speakers are tried in slice order: when two patterns match at the same
// position the earlier one wins, and a match overlapping an accepted one is
// ignored.
func AttributeSpeakers(fragment string, speakers []*regexp.Regexp) []record.Turn {
	matches := findSpeakers(fragment, speakers)
	if len(matches) == 0 {
		return []record.Turn{{Text: fragment}}
	}

	var turns []record.Turn
	if lead := fragment[:matches[0].start]; strings.TrimSpace(lead) != "" {
		turns = append(turns, record.Turn{Text: lead})
	}
	for i, m := range matches {
		end := len(fragment)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		turns = append(turns, record.Turn{
			Speaker: m.name,
			Text:    fragment[m.end:end],
		})
	}
	return turns
}

func findSpeakers(text string, speakers []*regexp.Regexp) []speakerMatch {
	var candidates []speakerMatch
	for prio, re := range speakers {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			candidates = append(candidates, speakerMatch{
				start:    loc[0],
				end:      loc[1],
				name:     collapseSpace(text[loc[2]:loc[3]]),
				priority: prio,
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].priority < candidates[j].priority
	})

	var accepted []speakerMatch
	for _, c := range candidates {
		if n := len(accepted); n > 0 && c.start < accepted[n-1].end {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}
