package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surepassPayload() map[string]any {
	return map[string]any{
		"rc_number":         "KA01AB1234",
		"state_code":        "ka",
		"chassis_number":    "ma1ta2ys2f2k12345",
		"engine_number":     "7h19e1234567",
		"body_type_desc":    "Open Body",
		"maker_desc":        "TATA MOTORS",
		"maker_model":       "LPT 1613",
		"gvw":               "16,200 KG",
		"unladen_weight":    5800,
		"wheelbase":         "4200",
		"no_of_tyres":       "6",
		"no_of_axles":       2,
		"norms_type":        "BS-IV",
		"permit_type":       "national permit",
		"permit_valid_upto": "2027-03-31",
		"owner_name":        "Sharma Transport Co",
		"registration_date": "2019-06-14",
		"vehicle_category":  "HGV",
		"fuel_type":         "Diesel",
	}
}

func invinciblePayload() map[string]any {
	return map[string]any{
		"regNo":                   "MH12CD5678",
		"stateCode":               "MH",
		"chassisNo":               "MB1KACHC3JPAB1234",
		"engineNo":                "CRDI5T123456",
		"bodyType":                "CONTAINER",
		"vehicleManufacturerName": "ASHOK LEYLAND",
		"model":                   "ECOMET 1615",
		"grossVehicleWeight":      16200.0,
		"numberOfTyres":           6,
		"numberOfAxles":           2,
		"normsDescription":        "BS 6",
		"permitType":              "NATIONAL_PERMIT",
		"vehicleClass":            "HGV",
	}
}

func ulipPayload() map[string]any {
	return map[string]any{
		"rc_regn_no":        "TN22EF9012",
		"rc_registered_at":  "TN",
		"rc_chasi_no":       "MAT445123KLP67890",
		"rc_eng_no":         "B59E9876543",
		"rc_body_type_desc": "FLAT BED",
		"rc_maker_desc":     "BHARATBENZ",
		"rc_maker_model":    "2823R",
		"rc_gvw":            "28000",
		"rc_no_of_tyres":    "10",
		"rc_no_of_axles":    "3",
		"rc_norms_desc":     "IV",
		"rc_vch_catg":       "HGV",
	}
}

func TestNormalize_SurepassDialect(t *testing.T) {
	snap := Normalize(surepassPayload(), ProviderSurepass)

	assert.Equal(t, "KA01AB1234", snap.RegistrationNumber)
	assert.Equal(t, "KA", snap.StateCode)
	assert.Equal(t, "MA1TA2YS2F2K12345", snap.ChassisNumber)
	assert.Equal(t, "7H19E1234567", snap.EngineNumber)
	assert.Equal(t, "OPEN BODY", snap.BodyTypeString)
	assert.Equal(t, 16200.0, snap.GVWKg, "unit suffix and separators stripped")
	assert.Equal(t, 5800.0, snap.UnladenWeightKg)
	assert.Equal(t, 4200.0, snap.WheelbaseMM)
	assert.Equal(t, 6, snap.TyreCount)
	assert.Equal(t, 2, snap.AxleCount)
	assert.Equal(t, "BS4", snap.EmissionCode)
	assert.Equal(t, "NATIONAL PERMIT", snap.PermitType)
	assert.Equal(t, ProviderSurepass, snap.Provider)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestNormalize_InvincibleDialect(t *testing.T) {
	snap := Normalize(invinciblePayload(), ProviderInvincible)

	assert.Equal(t, "MH12CD5678", snap.RegistrationNumber)
	assert.Equal(t, "MB1KACHC3JPAB1234", snap.ChassisNumber)
	assert.Equal(t, 16200.0, snap.GVWKg)
	assert.Equal(t, "BS6", snap.EmissionCode)
	assert.Equal(t, "CONTAINER", snap.BodyTypeString)
}

func TestNormalize_ULIPDialect(t *testing.T) {
	snap := Normalize(ulipPayload(), ProviderULIP)

	assert.Equal(t, "TN22EF9012", snap.RegistrationNumber)
	assert.Equal(t, 28000.0, snap.GVWKg)
	assert.Equal(t, 10, snap.TyreCount)
	assert.Equal(t, 3, snap.AxleCount)
	assert.Equal(t, "BS4", snap.EmissionCode, "bare roman numeral canonicalized")
}

func TestNormalize_UnknownProviderFallsBackToPrimaryDialect(t *testing.T) {
	snap := Normalize(surepassPayload(), "somebody_new")
	assert.Equal(t, "KA01AB1234", snap.RegistrationNumber)
	assert.Equal(t, "somebody_new", snap.Provider)
}

func TestNormalize_UnreducibleEmissionKeptVerbatim(t *testing.T) {
	payload := surepassPayload()
	payload["norms_type"] = "euro 3"
	snap := Normalize(payload, ProviderSurepass)
	assert.Equal(t, "EURO 3", snap.EmissionCode)
}

// Round-trip property: a syntactically complete payload from every supported
// dialect normalizes into a snapshot that passes validation.
func TestNormalizeThenValidate_AllDialects(t *testing.T) {
	cases := map[string]map[string]any{
		ProviderSurepass:   surepassPayload(),
		ProviderInvincible: invinciblePayload(),
		ProviderULIP:       ulipPayload(),
	}
	for tag, payload := range cases {
		res := Validate(Normalize(payload, tag))
		assert.True(t, res.Valid, "provider %s: %v", tag, res.Errors)
	}
}

func TestValidate_ReportsEveryMissingField(t *testing.T) {
	res := Validate(Normalize(map[string]any{}, ProviderSurepass))
	require.False(t, res.Valid)
	assert.ElementsMatch(t, []string{
		"MISSING_REGISTRATION_NUMBER",
		"MISSING_CHASSIS_NUMBER",
		"MISSING_ENGINE_NUMBER",
	}, res.Errors)
}

func TestCanonicalEmission(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"BS-IV", "BS4", true},
		{"BS 4", "BS4", true},
		{"BSIV", "BS4", true},
		{"bs vi", "BS6", true},
		{"BS-VI", "BS6", true},
		{"6", "BS6", true},
		{"IV", "BS4", true},
		{"III", "BS3", true},
		{"BHARAT STAGE VI", "BS6", true},
		{"", "", false},
		{"EURO 4", "", false},
		{"BS7", "", false},
	}
	for _, tc := range cases {
		got, ok := CanonicalEmission(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
