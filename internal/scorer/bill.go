// Package scorer derives display categories, impact tiers, and orderings
// from raw civic records. Everything here is a pure function of its inputs
// (plus an injected clock), so results are reproducible.
package scorer

import (
	"sort"
	"strings"
	"time"

	"github.com/civicsnap/civic-cli/pkg/openstates"
)

// Category is the closed set of display categories for a bill.
type Category string

const (
	CategoryHousing      Category = "housing"
	CategoryTransit      Category = "transit"
	CategorySafety       Category = "safety"
	CategoryConstruction Category = "construction"
	CategoryCampus       Category = "campus"
	CategoryMisc         Category = "misc"
)

// Impact is the closed set of impact tiers for a bill.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// impactRank orders impacts for sorting: high < medium < low.
var impactRank = map[Impact]int{
	ImpactHigh:   0,
	ImpactMedium: 1,
	ImpactLow:    2,
}

// Issue is a Bill augmented with derived display fields. The embedded Bill
// is the untouched upstream snapshot.
type Issue struct {
	openstates.Bill
	Category  Category `json:"category"`
	Impact    Impact   `json:"impact"`
	Headline  string   `json:"headline"`
	Summary   string   `json:"summary"`
	SourceURL string   `json:"source_url,omitempty"`
}

// Categorizer assigns a category to a bill by first-match-wins over an
// ordered rule list.
type Categorizer struct {
	ordered []categoryRule
}

type categoryRule struct {
	category Category
	keywords []string
}

// NewCategorizer builds a categorizer from the given rules. The rule order
// is fixed: housing, transit, safety, construction, campus, then misc as
// the fallback.
func NewCategorizer(r Rules) *Categorizer {
	return &Categorizer{
		ordered: []categoryRule{
			{CategoryHousing, r.Housing},
			{CategoryTransit, r.Transit},
			{CategorySafety, r.Safety},
			{CategoryConstruction, r.Construction},
			{CategoryCampus, r.Campus},
		},
	}
}

// Categorize returns the first category whose keywords match the bill's
// subjects or title (case-insensitive substring), or misc.
func (c *Categorizer) Categorize(bill openstates.Bill) Category {
	title := strings.ToLower(bill.Title)
	subjects := make([]string, len(bill.Subject))
	for i, s := range bill.Subject {
		subjects[i] = strings.ToLower(s)
	}

	for _, rule := range c.ordered {
		for _, kw := range rule.keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(title, kw) {
				return rule.category
			}
			for _, s := range subjects {
				if strings.Contains(s, kw) {
					return rule.category
				}
			}
		}
	}
	return CategoryMisc
}

// ScoreImpact derives the impact tier from a bill's dates relative to now.
// A bill with a passage date is always high: it has become law, outranking
// any pending activity. Otherwise recency of the latest action decides
// (<7 days high, <30 medium, else low); a bill with neither date is medium.
func ScoreImpact(bill openstates.Bill, now time.Time) Impact {
	if bill.LatestPassageDate != "" {
		return ImpactHigh
	}
	actionDate, ok := parseDate(bill.LatestActionDate)
	if !ok {
		return ImpactMedium
	}
	days := now.Sub(actionDate).Hours() / 24
	switch {
	case days < 7:
		return ImpactHigh
	case days < 30:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// parseDate accepts the date formats OpenStates emits: plain dates and
// RFC3339 timestamps.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// BuildIssue derives the display fields for one bill.
func (c *Categorizer) BuildIssue(bill openstates.Bill, now time.Time) Issue {
	issue := Issue{
		Bill:     bill,
		Category: c.Categorize(bill),
		Impact:   ScoreImpact(bill, now),
		Headline: bill.Identifier + ": " + bill.Title,
	}

	switch {
	case len(bill.Abstracts) > 0 && bill.Abstracts[0].Abstract != "":
		issue.Summary = bill.Abstracts[0].Abstract
	case bill.LatestActionDescription != "":
		issue.Summary = bill.LatestActionDescription
	default:
		issue.Summary = "No description available."
	}

	if bill.OpenstatesURL != "" {
		issue.SourceURL = bill.OpenstatesURL
	} else if len(bill.Sources) > 0 {
		issue.SourceURL = bill.Sources[0].URL
	}

	return issue
}

// BuildIssues derives issues for a bill list and sorts them by impact.
func (c *Categorizer) BuildIssues(bills []openstates.Bill, now time.Time) []Issue {
	issues := make([]Issue, 0, len(bills))
	for _, b := range bills {
		issues = append(issues, c.BuildIssue(b, now))
	}
	SortByImpact(issues)
	return issues
}

// SortByImpact orders issues high before medium before low, stable on ties.
func SortByImpact(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return impactRank[issues[i].Impact] < impactRank[issues[j].Impact]
	})
}
