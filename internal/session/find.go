package session

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/starford/hyprtext/internal/models"
)

// Match is one fuzzy-search hit.
type Match struct {
	Index    int                    `json:"index"`
	Document models.DocumentSummary `json:"document"`
	Distance int                    `json:"distance"`
}

// Search fuzzy-matches query against document titles and paths, best match
// first. A blank query matches every document in tab order.
func (s *Session) Search(query string) []Match {
	summaries := s.Summaries()
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(summaries))
		for i, sum := range summaries {
			out[i] = Match{Index: i, Document: sum}
		}
		return out
	}

	labels := make([]string, len(summaries))
	for i, sum := range summaries {
		labels[i] = sum.Title
		if sum.Path != "" {
			labels[i] += " " + sum.Path
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})

	out := make([]Match, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, Match{
			Index:    r.OriginalIndex,
			Document: summaries[r.OriginalIndex],
			Distance: r.Distance,
		})
	}
	return out
}
