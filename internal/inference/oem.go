package inference

import "strings"

// oemBodyLengths is the reference table of known maker+model body lengths in
// feet. Keys are the normalized maker name plus normalized model.
var oemBodyLengths = map[string]float64{
	"TATA|LPT 709":         14,
	"TATA|LPT 1109":        17,
	"TATA|LPT 1613":        19,
	"TATA|LPT 2518":        22,
	"TATA|SIGNA 4323":      32,
	"ASHOK LEYLAND|DOST":   8,
	"ASHOK LEYLAND|ECOMET 1615": 19,
	"ASHOK LEYLAND|2820":   24,
	"EICHER|PRO 2049":      10,
	"EICHER|PRO 3015":      19,
	"EICHER|PRO 6028":      24,
	"BHARATBENZ|1217C":     17,
	"BHARATBENZ|2823R":     24,
	"MAHINDRA|FURIO 7":     14,
	"MAHINDRA|BLAZO X 28":  24,
}

// makerAliases folds the common spelling and spacing variants providers emit
// into one canonical maker name before lookup.
var makerAliases = map[string]string{
	"TATA MOTORS":              "TATA",
	"TATA MOTORS LTD":          "TATA",
	"TATAMOTORS":               "TATA",
	"ASHOK LEYLAND LTD":        "ASHOK LEYLAND",
	"ASHOKLEYLAND":             "ASHOK LEYLAND",
	"VE COMMERCIAL VEHICLES":   "EICHER",
	"EICHER MOTORS":            "EICHER",
	"DAIMLER INDIA":            "BHARATBENZ",
	"BHARAT BENZ":              "BHARATBENZ",
	"MAHINDRA & MAHINDRA":      "MAHINDRA",
	"MAHINDRA AND MAHINDRA":    "MAHINDRA",
	"M&M":                      "MAHINDRA",
}

func normalizeMaker(maker string) string {
	m := strings.ToUpper(strings.TrimSpace(maker))
	m = strings.Join(strings.Fields(m), " ")
	if canonical, ok := makerAliases[m]; ok {
		return canonical
	}
	return m
}

func normalizeModel(model string) string {
	return strings.Join(strings.Fields(strings.ToUpper(strings.TrimSpace(model))), " ")
}

// lookupOEM returns the reference body length for an exact maker+model match.
func lookupOEM(maker, model string) (float64, string, bool) {
	key := normalizeMaker(maker) + "|" + normalizeModel(model)
	if length, ok := oemBodyLengths[key]; ok {
		return length, key, true
	}
	return 0, "", false
}
