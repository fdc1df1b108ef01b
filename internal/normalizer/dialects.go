package normalizer

// Provider tags, in failover order. The normalizer only cares about the field
// dialect each one speaks; transport lives in internal/registry.
const (
	ProviderSurepass   = "surepass"
	ProviderInvincible = "invincible"
	ProviderULIP       = "ulip"
)

// dialect maps a canonical snapshot field to the provider's field names, most
// preferred first. Adding a provider means adding a map entry here, not new
// control flow.
type dialect map[string][]string

const (
	fieldRegistrationNumber = "registration_number"
	fieldStateCode          = "state_code"
	fieldChassisNumber      = "chassis_number"
	fieldEngineNumber       = "engine_number"
	fieldBodyCode           = "body_code"
	fieldBodyType           = "body_type"
	fieldMaker              = "maker"
	fieldModel              = "model"
	fieldGVW                = "gvw_kg"
	fieldUnladenWeight      = "unladen_weight_kg"
	fieldWheelbase          = "wheelbase_mm"
	fieldTyreCount          = "tyre_count"
	fieldAxleCount          = "axle_count"
	fieldEmissionCode       = "emission_code"
	fieldPermitType         = "permit_type"
	fieldPermitExpiry       = "permit_expiry"
	fieldOwnerName          = "owner_name"
	fieldRegistrationDate   = "registration_date"
	fieldVehicleCategory    = "vehicle_category"
	fieldFuelType           = "fuel_type"
)

var dialects = map[string]dialect{
	ProviderSurepass: {
		fieldRegistrationNumber: {"rc_number", "registration_number"},
		fieldStateCode:          {"state_code", "rc_state"},
		fieldChassisNumber:      {"chassis_number", "rc_chasi_no"},
		fieldEngineNumber:       {"engine_number", "rc_eng_no"},
		fieldBodyCode:           {"body_type_code"},
		fieldBodyType:           {"body_type_desc", "body_type"},
		fieldMaker:              {"maker_desc", "maker"},
		fieldModel:              {"maker_model", "model"},
		fieldGVW:                {"gvw", "gvw_kg", "gross_vehicle_weight"},
		fieldUnladenWeight:      {"unladen_weight", "unld_wt"},
		fieldWheelbase:          {"wheelbase", "wheel_base"},
		fieldTyreCount:          {"no_of_tyres", "tyre_count"},
		fieldAxleCount:          {"no_of_axles", "axle_count"},
		fieldEmissionCode:       {"norms_type", "emission_norms"},
		fieldPermitType:         {"permit_type"},
		fieldPermitExpiry:       {"permit_valid_upto", "permit_expiry"},
		fieldOwnerName:          {"owner_name"},
		fieldRegistrationDate:   {"registration_date", "reg_date"},
		fieldVehicleCategory:    {"vehicle_category", "vh_class_desc"},
		fieldFuelType:           {"fuel_type", "fuel_descr"},
	},
	ProviderInvincible: {
		fieldRegistrationNumber: {"regNo", "rcNumber"},
		fieldStateCode:          {"stateCode"},
		fieldChassisNumber:      {"chassisNo", "chassis"},
		fieldEngineNumber:       {"engineNo", "engine"},
		fieldBodyCode:           {"bodyCode"},
		fieldBodyType:           {"bodyType", "bodyTypeDesc"},
		fieldMaker:              {"vehicleManufacturerName", "maker"},
		fieldModel:              {"model", "makerModel"},
		fieldGVW:                {"grossVehicleWeight", "gvwKg", "gvw"},
		fieldUnladenWeight:      {"unladenWeight"},
		fieldWheelbase:          {"wheelbase"},
		fieldTyreCount:          {"numberOfTyres", "tyreCount"},
		fieldAxleCount:          {"numberOfAxles", "axleCount"},
		fieldEmissionCode:       {"normsDescription", "emissionNorms"},
		fieldPermitType:         {"permitType"},
		fieldPermitExpiry:       {"permitValidUpto"},
		fieldOwnerName:          {"owner", "ownerName"},
		fieldRegistrationDate:   {"regDate", "registrationDate"},
		fieldVehicleCategory:    {"vehicleClass", "vehicleCategory"},
		fieldFuelType:           {"type", "fuelType"},
	},
	ProviderULIP: {
		fieldRegistrationNumber: {"rc_regn_no"},
		fieldStateCode:          {"rc_registered_at"},
		fieldChassisNumber:      {"rc_chasi_no"},
		fieldEngineNumber:       {"rc_eng_no"},
		fieldBodyCode:           {"rc_body_type_code"},
		fieldBodyType:           {"rc_body_type_desc"},
		fieldMaker:              {"rc_maker_desc"},
		fieldModel:              {"rc_maker_model"},
		fieldGVW:                {"rc_gvw", "rc_gross_vehicle_weight"},
		fieldUnladenWeight:      {"rc_unld_wt"},
		fieldWheelbase:          {"rc_wheelbase"},
		fieldTyreCount:          {"rc_no_of_tyres"},
		fieldAxleCount:          {"rc_no_of_axles"},
		fieldEmissionCode:       {"rc_norms_desc"},
		fieldPermitType:         {"rc_permit_type"},
		fieldPermitExpiry:       {"rc_permit_valid_upto"},
		fieldOwnerName:          {"rc_owner_name"},
		fieldRegistrationDate:   {"rc_regn_dt"},
		fieldVehicleCategory:    {"rc_vch_catg"},
		fieldFuelType:           {"rc_fuel_desc"},
	},
}

// dialectFor returns the provider's field map, falling back to the primary
// provider's dialect for unknown tags as a best effort.
func dialectFor(providerTag string) dialect {
	if d, ok := dialects[providerTag]; ok {
		return d
	}
	return dialects[ProviderSurepass]
}
