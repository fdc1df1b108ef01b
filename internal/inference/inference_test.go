package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetgate/internal/domain"
)

func TestBodyLength_OEMExactMatch(t *testing.T) {
	res := BodyLength(domain.VehicleSnapshot{
		Maker: "TATA MOTORS", // alias of TATA
		Model: "lpt 1613",
	})

	assert.Equal(t, domain.InferenceOEMLookup, res.Method)
	assert.Equal(t, 19.0, res.BodyLengthFt)
	assert.Equal(t, 0.9, res.Confidence)
	assert.Equal(t, "TATA|LPT 1613", res.ModelRef)
}

func TestBodyLength_MakerSpellingVariants(t *testing.T) {
	for _, maker := range []string{"ASHOK LEYLAND", "Ashok Leyland Ltd", "ASHOKLEYLAND", "ashok  leyland"} {
		res := BodyLength(domain.VehicleSnapshot{Maker: maker, Model: "ECOMET 1615"})
		assert.Equal(t, domain.InferenceOEMLookup, res.Method, "maker %q", maker)
		assert.Equal(t, 19.0, res.BodyLengthFt, "maker %q", maker)
	}
}

func TestBodyLength_WheelbaseFallback(t *testing.T) {
	res := BodyLength(domain.VehicleSnapshot{
		Maker:       "UNKNOWN TRUCKS",
		Model:       "X1",
		WheelbaseMM: 4200,
	})

	assert.Equal(t, domain.InferenceWheelbase, res.Method)
	assert.Equal(t, 0.7, res.Confidence)
	// 4.2m * 1.35 * 3.28084 ≈ 18.6ft, rounded to halves
	assert.InDelta(t, 18.5, res.BodyLengthFt, 0.251)
}

func TestBodyLength_WheelbaseOutsidePlausibleRange(t *testing.T) {
	for _, mm := range []float64{0, 1500, 9000} {
		res := BodyLength(domain.VehicleSnapshot{WheelbaseMM: mm, GVWKg: 16000})
		assert.Equal(t, domain.InferenceWeight, res.Method, "wheelbase %.0fmm should fall through", mm)
	}
}

func TestBodyLength_WeightBands(t *testing.T) {
	cases := []struct {
		gvw  float64
		want float64
	}{
		{5000, 14},
		{9000, 17},
		{16000, 19},
		{22000, 22},
		{40000, 32},
	}
	for _, tc := range cases {
		res := BodyLength(domain.VehicleSnapshot{GVWKg: tc.gvw})
		assert.Equal(t, domain.InferenceWeight, res.Method, "gvw %.0f", tc.gvw)
		assert.Equal(t, tc.want, res.BodyLengthFt, "gvw %.0f", tc.gvw)
		assert.Equal(t, 0.5, res.Confidence)
	}
}

func TestBodyLength_UnladenWeightUsedWhenGVWMissing(t *testing.T) {
	res := BodyLength(domain.VehicleSnapshot{UnladenWeightKg: 6000})
	assert.Equal(t, domain.InferenceWeight, res.Method)
	assert.Equal(t, 14.0, res.BodyLengthFt)
}

func TestBodyLength_NothingUsable(t *testing.T) {
	res := BodyLength(domain.VehicleSnapshot{})

	assert.Equal(t, domain.InferenceNone, res.Method)
	assert.Equal(t, 0.3, res.Confidence)
	assert.Zero(t, res.BodyLengthFt)
	assert.NotEmpty(t, res.Notes)
}

func TestBodyLength_UnknownModelFallsThroughToWheelbase(t *testing.T) {
	res := BodyLength(domain.VehicleSnapshot{
		Maker:       "TATA",
		Model:       "NEVER HEARD OF IT",
		WheelbaseMM: 3000,
	})
	assert.Equal(t, domain.InferenceWheelbase, res.Method)
}
