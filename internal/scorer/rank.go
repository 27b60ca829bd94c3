package scorer

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/civicsnap/civic-cli/pkg/openstates"
)

// Rank returns legislators in display order: senators before everyone
// else, then locale-aware alphabetical by name within each group. The
// input slice is not modified.
func Rank(people []openstates.Person) []openstates.Person {
	ranked := slices.Clone(people)

	// Collators buffer internally and are not safe for concurrent use, so
	// build one per call.
	col := collate.New(language.AmericanEnglish)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aSenate, bSenate := isSenator(a), isSenator(b)
		if aSenate != bSenate {
			return aSenate
		}
		return col.CompareString(a.Name, b.Name) < 0
	})

	return ranked
}

func isSenator(p openstates.Person) bool {
	if p.CurrentRole == nil {
		return false
	}
	return strings.Contains(strings.ToLower(p.CurrentRole.Title), "senator")
}
