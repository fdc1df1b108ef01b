package normalizer

import "strings"

// romanStages covers the Bharat Stage range providers actually emit. Longer
// numerals first so "VI" is not read as "V".
var romanStages = []struct {
	numeral string
	digit   string
}{
	{"VI", "6"},
	{"IV", "4"},
	{"III", "3"},
	{"II", "2"},
	{"V", "5"},
	{"I", "1"},
}

// CanonicalEmission reduces provider emission notations to BS<digit>.
// "BS-IV", "BS 4", "BSIV", "IV" and "4" all become "BS4". The second return
// is false when the code cannot be reduced to a known stage.
func CanonicalEmission(code string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "" {
		return "", false
	}

	// Strip the prefix and separators; what remains is a stage marker.
	s = strings.TrimPrefix(s, "BHARAT STAGE")
	s = strings.TrimPrefix(s, "BS")
	s = strings.Trim(s, " -._/")

	if len(s) == 1 && s >= "1" && s <= "6" {
		return "BS" + s, true
	}
	for _, r := range romanStages {
		if s == r.numeral {
			return "BS" + r.digit, true
		}
	}
	return "", false
}
