// Package inference estimates a vehicle's body length when no provider reports
// it directly. Methods are tried in confidence order and the first one clearing
// its threshold wins; missing optional fields never fail the cascade, they just
// contribute zero confidence.
package inference

import (
	"fmt"

	"fleetgate/internal/domain"
)

const (
	oemConfidence       = 0.9
	oemAcceptThreshold  = 0.8
	wheelbaseConfidence = 0.7
	weightConfidence    = 0.5
	floorConfidence     = 0.3

	// Body length tracks wheelbase roughly linearly for rigid trucks.
	wheelbaseFactor = 1.35
	metersToFeet    = 3.28084

	wheelbaseMinM = 2.0
	wheelbaseMaxM = 8.0
)

// weightBands maps gross weight to an approximate platform length. Used as the
// last resort before giving up.
var weightBands = []struct {
	maxGVWKg float64
	lengthFt float64
}{
	{7500, 14},
	{12000, 17},
	{16500, 19},
	{25000, 22},
}

const heavyBandLengthFt = 32

// BodyLength runs the inference cascade over a snapshot.
func BodyLength(snap domain.VehicleSnapshot) domain.InferenceResult {
	if res, ok := fromOEM(snap); ok && res.Confidence >= oemAcceptThreshold {
		return res
	}
	if res, ok := fromWheelbase(snap); ok {
		return res
	}
	if res, ok := fromWeight(snap); ok {
		return res
	}
	return domain.InferenceResult{
		Confidence: floorConfidence,
		Method:     domain.InferenceNone,
		Notes:      "no usable signal for body length",
	}
}

func fromOEM(snap domain.VehicleSnapshot) (domain.InferenceResult, bool) {
	if snap.Maker == "" || snap.Model == "" {
		return domain.InferenceResult{}, false
	}
	length, ref, ok := lookupOEM(snap.Maker, snap.Model)
	if !ok {
		return domain.InferenceResult{}, false
	}
	return domain.InferenceResult{
		BodyLengthFt: length,
		Confidence:   oemConfidence,
		Method:       domain.InferenceOEMLookup,
		ModelRef:     ref,
	}, true
}

func fromWheelbase(snap domain.VehicleSnapshot) (domain.InferenceResult, bool) {
	wheelbaseM := snap.WheelbaseMM / 1000
	if wheelbaseM < wheelbaseMinM || wheelbaseM > wheelbaseMaxM {
		return domain.InferenceResult{}, false
	}
	lengthFt := wheelbaseM * wheelbaseFactor * metersToFeet
	return domain.InferenceResult{
		BodyLengthFt: roundHalf(lengthFt),
		Confidence:   wheelbaseConfidence,
		Method:       domain.InferenceWheelbase,
		Notes:        fmt.Sprintf("wheelbase %.2fm x %.2f", wheelbaseM, wheelbaseFactor),
	}, true
}

func fromWeight(snap domain.VehicleSnapshot) (domain.InferenceResult, bool) {
	gvw := snap.GVWKg
	if gvw <= 0 {
		gvw = snap.UnladenWeightKg
	}
	if gvw <= 0 {
		return domain.InferenceResult{}, false
	}
	length := float64(heavyBandLengthFt)
	for _, band := range weightBands {
		if gvw < band.maxGVWKg {
			length = band.lengthFt
			break
		}
	}
	return domain.InferenceResult{
		BodyLengthFt: length,
		Confidence:   weightConfidence,
		Method:       domain.InferenceWeight,
		Notes:        fmt.Sprintf("weight band for %.0fkg", gvw),
	}, true
}

// roundHalf rounds to the nearest half foot; finer precision is noise at this
// confidence level.
func roundHalf(f float64) float64 {
	return float64(int(f*2+0.5)) / 2
}
