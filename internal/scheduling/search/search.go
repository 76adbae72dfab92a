// Package search implements the common-time search over a session's
// submitted availability. The search brute-forces every participant
// combination of the requested quorum size per day; with rosters this small
// (at most ~8 participants) exhaustive enumeration is cheaper and more
// obviously correct than any interval-merge scheme, and it guarantees every
// valid combination is found rather than one greedy overlap.
package search

import (
	"sort"
	"strings"

	"scrimtime/pkg/model"
)

// Candidate is one playable (time, participant-subset) option on a day.
// Excluded holds the roster members not in the subset; it is only meaningful
// when the search ran below full quorum.
type Candidate struct {
	Time     model.Slot `json:"time"`
	Included []string   `json:"included"`
	Excluded []string   `json:"excluded,omitempty"`
}

// FindCommonTimes returns, per window weekday, every candidate where at
// least `quorum` participants share a free slot that has not been proposed
// before. Days with no candidates are absent from the result; an empty map
// means the search is exhausted for this quorum.
func FindCommonTimes(session *model.SchedulingSession, quorum int) map[string][]Candidate {
	results := make(map[string][]Candidate)
	if quorum < 1 {
		return results
	}

	roster := session.Participants()

	for _, day := range session.Window {
		weekday := day.Weekday

		// Participants fully unavailable that day drop out for that day only.
		var available []string
		for _, id := range roster {
			if slots, ok := session.Schedules[id][weekday]; ok && !slots.Empty() {
				available = append(available, id)
			}
		}
		if len(available) < quorum {
			continue
		}

		seen := make(map[string]bool)
		var candidates []Candidate

		for _, combo := range combinations(available, quorum) {
			common := session.Schedules[combo[0]][weekday]
			for _, id := range combo[1:] {
				common = common.Intersect(session.Schedules[id][weekday])
				if common.Empty() {
					break
				}
			}

			for _, t := range common {
				if session.HasProposed(weekday, t) {
					continue
				}
				key := candidateKey(t, combo)
				if seen[key] {
					continue
				}
				seen[key] = true
				candidates = append(candidates, Candidate{
					Time:     t,
					Included: append([]string{}, combo...),
					Excluded: subtract(roster, combo),
				})
			}
		}

		if len(candidates) > 0 {
			sortCandidates(candidates)
			results[weekday] = candidates
		}
	}

	return results
}

// Pick selects the single candidate to propose: the earliest window day with
// candidates, and within it the earliest prime-time slot if any, else the
// earliest slot overall. Deterministic for identical inputs.
func Pick(session *model.SchedulingSession, results map[string][]Candidate) (string, Candidate, bool) {
	for _, day := range session.Window {
		candidates, ok := results[day.Weekday]
		if !ok {
			continue
		}

		for _, c := range candidates {
			if model.IsPrimeTime(c.Time) {
				return day.Weekday, c, true
			}
		}
		return day.Weekday, candidates[0], true
	}
	return "", Candidate{}, false
}

// combinations enumerates all k-element subsets of ids in lexicographic
// order over the input (which the caller keeps sorted for determinism).
func combinations(ids []string, k int) [][]string {
	if k > len(ids) || k <= 0 {
		return nil
	}

	var result [][]string
	combo := make([]string, k)

	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			result = append(result, append([]string{}, combo...))
			return
		}
		for i := start; i <= len(ids)-(k-depth); i++ {
			combo[depth] = ids[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)

	return result
}

func subtract(all, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []string
	for _, id := range all {
		if !excluded[id] {
			out = append(out, id)
		}
	}
	return out
}

func candidateKey(t model.Slot, included []string) string {
	return string(t) + "|" + strings.Join(included, ",")
}

func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := model.SlotIndex(candidates[i].Time), model.SlotIndex(candidates[j].Time)
		if a != b {
			return a < b
		}
		return strings.Join(candidates[i].Included, ",") < strings.Join(candidates[j].Included, ",")
	})
}
