package tag

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// MaxCandidates caps the number of suggestions in a
	// disambiguation prompt.
	MaxCandidates = 5

	// SimilarityCutoff is the minimum ratio for a name to count as
	// close to the query.
	SimilarityCutoff = 0.5
)

// Ratio computes the similarity between two strings as the ratio of
// matching characters over total characters, in [0, 1].
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

// CloseMatches returns up to n names from possibilities whose
// similarity to word is at least cutoff, best matches first. Ties keep
// the input order of possibilities.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) []string {
	type scored struct {
		name  string
		ratio float64
	}

	target := splitChars(word)
	results := make([]scored, 0, len(possibilities))

	for _, name := range possibilities {
		m := difflib.NewMatcher(splitChars(name), target)

		// Cheap upper bounds first so the full ratio only runs on
		// plausible candidates
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}

		if ratio := m.Ratio(); ratio >= cutoff {
			results = append(results, scored{name: name, ratio: ratio})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ratio > results[j].ratio
	})

	if len(results) > n {
		results = results[:n]
	}

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.name
	}

	return names
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}

	return chars
}
