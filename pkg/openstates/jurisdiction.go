package openstates

import (
	"fmt"
	"strings"

	"github.com/civicsnap/civic-cli/internal/resilience"
)

// InvalidStateError indicates the caller supplied a state name or
// abbreviation outside the closed table of 50 states + DC. Never retried
// and never guessed around.
type InvalidStateError struct {
	Input string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %q", e.Input)
}

// Kind implements resilience.Kinder.
func (e *InvalidStateError) Kind() string { return resilience.KindInvalidArg }

// stateCodes maps both two-letter abbreviations and full lowercase names to
// the canonical state code. Closed set: 50 states + DC. No fuzzy matching.
var stateCodes = map[string]string{
	"al": "al", "ak": "ak", "az": "az", "ar": "ar", "ca": "ca", "co": "co", "ct": "ct",
	"de": "de", "fl": "fl", "ga": "ga", "hi": "hi", "id": "id", "il": "il", "in": "in",
	"ia": "ia", "ks": "ks", "ky": "ky", "la": "la", "me": "me", "md": "md", "ma": "ma",
	"mi": "mi", "mn": "mn", "ms": "ms", "mo": "mo", "mt": "mt", "ne": "ne", "nv": "nv",
	"nh": "nh", "nj": "nj", "nm": "nm", "ny": "ny", "nc": "nc", "nd": "nd", "oh": "oh",
	"ok": "ok", "or": "or", "pa": "pa", "ri": "ri", "sc": "sc", "sd": "sd", "tn": "tn",
	"tx": "tx", "ut": "ut", "vt": "vt", "va": "va", "wa": "wa", "wv": "wv", "wi": "wi",
	"wy": "wy", "dc": "dc",

	"alabama": "al", "alaska": "ak", "arizona": "az", "arkansas": "ar", "california": "ca",
	"colorado": "co", "connecticut": "ct", "delaware": "de", "florida": "fl", "georgia": "ga",
	"hawaii": "hi", "idaho": "id", "illinois": "il", "indiana": "in", "iowa": "ia",
	"kansas": "ks", "kentucky": "ky", "louisiana": "la", "maine": "me", "maryland": "md",
	"massachusetts": "ma", "michigan": "mi", "minnesota": "mn", "mississippi": "ms",
	"missouri": "mo", "montana": "mt", "nebraska": "ne", "nevada": "nv", "new hampshire": "nh",
	"new jersey": "nj", "new mexico": "nm", "new york": "ny", "north carolina": "nc",
	"north dakota": "nd", "ohio": "oh", "oklahoma": "ok", "oregon": "or", "pennsylvania": "pa",
	"rhode island": "ri", "south carolina": "sc", "south dakota": "sd", "tennessee": "tn",
	"texas": "tx", "utah": "ut", "vermont": "vt", "virginia": "va", "washington": "wa",
	"west virginia": "wv", "wisconsin": "wi", "wyoming": "wy", "district of columbia": "dc",
}

// JurisdictionID maps a state name or abbreviation (any casing, surrounding
// whitespace ignored) to the canonical OCD jurisdiction identifier, e.g.
// "ocd-jurisdiction/country:us/state:ma/government". Pure function; unknown
// input fails with InvalidStateError.
func JurisdictionID(state string) (string, error) {
	code, ok := stateCodes[strings.ToLower(strings.TrimSpace(state))]
	if !ok {
		return "", &InvalidStateError{Input: state}
	}
	return fmt.Sprintf("ocd-jurisdiction/country:us/state:%s/government", code), nil
}
