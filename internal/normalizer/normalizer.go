// Package normalizer maps heterogeneous registry-provider payloads onto the
// canonical VehicleSnapshot shape. Each provider speaks its own field dialect;
// the mapping tables in dialects.go are the only per-provider knowledge.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleetgate/internal/domain"
)

// Normalize canonicalizes one raw provider payload. It never fails: missing
// fields come through as zero values and are caught by Validate before the
// snapshot may enter the compliance engine.
func Normalize(raw map[string]any, providerTag string) domain.VehicleSnapshot {
	d := dialectFor(providerTag)

	snap := domain.VehicleSnapshot{
		RegistrationNumber: strings.ToUpper(stringField(raw, d, fieldRegistrationNumber)),
		StateCode:          strings.ToUpper(stringField(raw, d, fieldStateCode)),
		ChassisNumber:      strings.ToUpper(stringField(raw, d, fieldChassisNumber)),
		EngineNumber:       strings.ToUpper(stringField(raw, d, fieldEngineNumber)),
		BodyCode:           strings.ToUpper(stringField(raw, d, fieldBodyCode)),
		BodyTypeString:     strings.ToUpper(stringField(raw, d, fieldBodyType)),
		Maker:              stringField(raw, d, fieldMaker),
		Model:              stringField(raw, d, fieldModel),
		GVWKg:              numericField(raw, d, fieldGVW),
		UnladenWeightKg:    numericField(raw, d, fieldUnladenWeight),
		WheelbaseMM:        numericField(raw, d, fieldWheelbase),
		TyreCount:          int(numericField(raw, d, fieldTyreCount)),
		AxleCount:          int(numericField(raw, d, fieldAxleCount)),
		PermitType:         strings.ToUpper(stringField(raw, d, fieldPermitType)),
		PermitExpiry:       stringField(raw, d, fieldPermitExpiry),
		OwnerName:          stringField(raw, d, fieldOwnerName),
		RegistrationDate:   stringField(raw, d, fieldRegistrationDate),
		VehicleCategory:    strings.ToUpper(stringField(raw, d, fieldVehicleCategory)),
		FuelType:           strings.ToUpper(stringField(raw, d, fieldFuelType)),
		Provider:           providerTag,
		FetchedAt:          time.Now().UTC(),
	}

	rawEmission := stringField(raw, d, fieldEmissionCode)
	if canonical, ok := CanonicalEmission(rawEmission); ok {
		snap.EmissionCode = canonical
	} else {
		// Keep the original so downstream reasons can name the code it saw.
		snap.EmissionCode = strings.ToUpper(strings.TrimSpace(rawEmission))
	}

	return snap
}

// ValidationResult reports whether a snapshot may enter the compliance engine.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate enforces the minimum fields a verifiable snapshot must carry.
// Failing this gate is a deterministic BLOCKED outcome, not a retryable error.
func Validate(snap domain.VehicleSnapshot) ValidationResult {
	var errs []string
	if strings.TrimSpace(snap.RegistrationNumber) == "" {
		errs = append(errs, "MISSING_REGISTRATION_NUMBER")
	}
	if strings.TrimSpace(snap.ChassisNumber) == "" {
		errs = append(errs, "MISSING_CHASSIS_NUMBER")
	}
	if strings.TrimSpace(snap.EngineNumber) == "" {
		errs = append(errs, "MISSING_ENGINE_NUMBER")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// stringField resolves the first present alias to a string.
func stringField(raw map[string]any, d dialect, canonical string) string {
	v, ok := lookup(raw, d, canonical)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// numericField resolves the first present alias and coerces numeric-looking
// strings, stripping unit suffixes and separators ("16,200 KG" -> 16200).
func numericField(raw map[string]any, d dialect, canonical string) float64 {
	v, ok := lookup(raw, d, canonical)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		return coerceNumeric(t)
	default:
		return 0
	}
}

func coerceNumeric(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func lookup(raw map[string]any, d dialect, canonical string) (any, bool) {
	for _, alias := range d[canonical] {
		if v, ok := raw[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
