// Package classifier decides fleet category, blocked body types, emission
// compliance, and GVW/tyre sanity for a canonical vehicle snapshot. It is pure
// domain logic: no I/O, no side effects, recomputed on every check.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"fleetgate/internal/domain"
	"fleetgate/internal/normalizer"
)

// blockedBodyPatterns are hard stops: these body builds cannot carry general
// freight regardless of axle or emission data.
var blockedBodyPatterns = []struct {
	keyword string
	re      *regexp.Regexp
}{
	{"TIPPER", regexp.MustCompile(`(?i)\btipper\b`)},
	{"TANKER", regexp.MustCompile(`(?i)\btanker\b`)},
	{"CHASSIS", regexp.MustCompile(`(?i)\bchassis\b`)},
	{"COWL", regexp.MustCompile(`(?i)\bcowl\b`)},
	{"DUMPER", regexp.MustCompile(`(?i)\bdumper\b`)},
	{"GARBAGE", regexp.MustCompile(`(?i)\bgarbage\b`)},
	{"AMBULANCE", regexp.MustCompile(`(?i)\bambulance\b`)},
	{"CRANE", regexp.MustCompile(`(?i)\bcrane\b`)},
}

// allowedEmission is the stages a vehicle must meet; deniedEmission is the
// explicit pre-BS4 deny-list. Anything not reducible to a stage is invalid.
var (
	allowedEmission = map[string]bool{"BS4": true, "BS6": true}
	deniedEmission  = map[string]bool{"BS1": true, "BS2": true, "BS3": true}
)

var bodyCategoryKeywords = []struct {
	keyword  string
	category domain.BodyCategory
}{
	{"CONTAINER", domain.BodyContainer},
	{"FLAT", domain.BodyFlatbed},
	{"LOWBED", domain.BodyLowbed},
	{"LOW BED", domain.BodyLowbed},
	{"SKELETAL", domain.BodySkeletal},
}

// Classify runs the rule chain over a snapshot. Body-type and emission checks
// are hard stops that return immediately; size classification and sanity
// checks accumulate reasons so one result reports everything that is wrong.
func Classify(snap domain.VehicleSnapshot) domain.ClassificationResult {
	if res, blocked := checkBodyBlocklist(snap); blocked {
		return res
	}
	if res, blocked := checkEmission(snap); blocked {
		return res
	}

	result := classifySize(snap)
	result.BodyCategory = inferBodyCategory(snap)

	if reasons := checkSanity(snap, result.Classification); len(reasons) > 0 {
		result.Blocked = true
		result.BlockReasons = append(result.BlockReasons, reasons...)
	}
	return result
}

func checkBodyBlocklist(snap domain.VehicleSnapshot) (domain.ClassificationResult, bool) {
	haystack := snap.BodyTypeString + " " + snap.BodyCode
	for _, p := range blockedBodyPatterns {
		if p.re.MatchString(haystack) {
			return domain.ClassificationResult{
				Blocked:      true,
				BlockReasons: []string{"INVALID_BODY_" + p.keyword},
				Confidence:   confidenceMatched,
			}, true
		}
	}
	return domain.ClassificationResult{}, false
}

func checkEmission(snap domain.VehicleSnapshot) (domain.ClassificationResult, bool) {
	code := strings.TrimSpace(snap.EmissionCode)
	if code == "" {
		return blockedResult("MISSING_EMISSION_CODE"), true
	}

	canonical, ok := normalizer.CanonicalEmission(code)
	if !ok {
		return blockedResult("INVALID_EMISSION_" + sanitizeReasonToken(code)), true
	}
	if deniedEmission[canonical] {
		return blockedResult("BLOCKED_EMISSION_" + canonical), true
	}
	if !allowedEmission[canonical] {
		return blockedResult("INVALID_EMISSION_" + canonical), true
	}
	return domain.ClassificationResult{}, false
}

func classifySize(snap domain.VehicleSnapshot) domain.ClassificationResult {
	if class, ok := fleetClassTable[axleTyreKey{axles: snap.AxleCount, tyres: snap.TyreCount}]; ok {
		return domain.ClassificationResult{
			Classification: class,
			Confidence:     confidenceMatched,
		}
	}
	if snap.TyreCount >= trailerTyresMin && snap.TyreCount <= trailerTyresMax {
		return domain.ClassificationResult{
			Classification: domain.FleetTrailer,
			Confidence:     confidenceTrailer,
		}
	}
	return domain.ClassificationResult{
		Classification: domain.FleetUnknown,
		Confidence:     confidenceUnclassified,
		BlockReasons:   []string{"UNKNOWN_FLEET_TYPE"},
	}
}

func inferBodyCategory(snap domain.VehicleSnapshot) domain.BodyCategory {
	body := snap.BodyTypeString
	for _, k := range bodyCategoryKeywords {
		if strings.Contains(body, k.keyword) {
			return k.category
		}
	}
	return domain.BodyOpen
}

// checkSanity cross-checks GVW and tyre count against the class envelope.
// Violations accumulate; they do not short-circuit.
func checkSanity(snap domain.VehicleSnapshot, class domain.FleetClass) []string {
	profile, ok := classProfiles[class]
	if !ok {
		return nil
	}

	var reasons []string
	if snap.GVWKg > 0 {
		if snap.GVWKg < profile.minGVWKg {
			reasons = append(reasons, fmt.Sprintf("INVALID_GVW_%s_%.0f_MIN_%.0f", class, snap.GVWKg, profile.minGVWKg))
		} else if snap.GVWKg > profile.maxGVWKg {
			reasons = append(reasons, fmt.Sprintf("INVALID_GVW_%s_%.0f_MAX_%.0f", class, snap.GVWKg, profile.maxGVWKg))
		}
	}
	if snap.TyreCount != profile.expectedTyres {
		reasons = append(reasons, fmt.Sprintf("INVALID_TYRE_COUNT_%s_%d_EXPECTED_%d", class, snap.TyreCount, profile.expectedTyres))
	}
	return reasons
}

func blockedResult(reason string) domain.ClassificationResult {
	return domain.ClassificationResult{
		Blocked:      true,
		BlockReasons: []string{reason},
		Confidence:   confidenceMatched,
	}
}

var reasonTokenRe = regexp.MustCompile(`[^A-Z0-9]+`)

// sanitizeReasonToken keeps free-form provider codes safe inside reason codes.
func sanitizeReasonToken(s string) string {
	return strings.Trim(reasonTokenRe.ReplaceAllString(strings.ToUpper(s), "_"), "_")
}
