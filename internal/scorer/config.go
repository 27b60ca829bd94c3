package scorer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the keyword lists for each category, in rule order. Matching
// is case-insensitive substring over a bill's subjects and title.
type Rules struct {
	Housing      []string `yaml:"housing"`
	Transit      []string `yaml:"transit"`
	Safety       []string `yaml:"safety"`
	Construction []string `yaml:"construction"`
	Campus       []string `yaml:"campus"`
}

// DefaultRules returns the built-in keyword sets.
func DefaultRules() Rules {
	return Rules{
		Housing:      []string{"housing"},
		Transit:      []string{"transportation", "transit"},
		Safety:       []string{"public safety", "safety", "police"},
		Construction: []string{"infrastructure", "construction"},
		Campus:       []string{"education", "school"},
	}
}

// LoadRules reads keyword overrides from a YAML file. The file has a
// top-level "categories" key; categories left out keep their defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "scorer: read rules %s", path)
	}

	var wrapper struct {
		Categories Rules `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Rules{}, eris.Wrap(err, "scorer: parse rules")
	}

	rules := DefaultRules()
	loaded := wrapper.Categories
	if loaded.Housing != nil {
		rules.Housing = loaded.Housing
	}
	if loaded.Transit != nil {
		rules.Transit = loaded.Transit
	}
	if loaded.Safety != nil {
		rules.Safety = loaded.Safety
	}
	if loaded.Construction != nil {
		rules.Construction = loaded.Construction
	}
	if loaded.Campus != nil {
		rules.Campus = loaded.Campus
	}

	if err := ValidateRules(rules); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// ValidateRules checks that every category has at least one non-blank
// keyword.
func ValidateRules(r Rules) error {
	var errs []string

	lists := map[string][]string{
		"housing":      r.Housing,
		"transit":      r.Transit,
		"safety":       r.Safety,
		"construction": r.Construction,
		"campus":       r.Campus,
	}
	for name, kws := range lists {
		if len(kws) == 0 {
			errs = append(errs, fmt.Sprintf("%s has no keywords", name))
			continue
		}
		for _, kw := range kws {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Sprintf("%s contains a blank keyword", name))
				break
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: rules validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
