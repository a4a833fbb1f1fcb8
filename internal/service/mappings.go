package service

// The controller exposes a flat, sparsely documented variable vocabulary.
// Thermostat variables are suffix-matched after stripping the "C<i>_T<j>_"
// prefix; system variables are matched on the full key.

// thermostatVarMapping maps raw attribute suffixes to normalized names.
var thermostatVarMapping = map[string]string{
	"rh":                        "humidity",
	"rh_setpoint":               "humidity_setpoint",
	"rh_control":                "humidity_control",
	"stat_cb_rh_cool_shutdown":  "humidity_cool_shutdown",
	"head1_valve_pos_percent":   "valve_position_1",
	"head2_valve_pos_percent":   "valve_position_2",
	"stat_cb_actuator":          "actuator_status",
	"stat_battery_error":        "battery_error",
	"stat_demand_led":           "demand_led",
	"stat_demand":               "controller_demand",
	"maximum_floor_setpoint":    "floor_temp_max",
	"minimum_floor_setpoint":    "floor_temp_min",
	"stat_cb_floor_limit_reach": "floor_limit_reached",
	"external_temperature":      "external_temperature",
	"average_room_temperature":  "average_room_temperature",
	"supply_temperature":        "supply_temperature",
	"outdoor_temperature":       "outdoor_temperature",
	"stat_rf_error":             "rf_error",
	"stat_rf_low_sig_warning":   "rf_low_signal",
	"stat_air_sensor_error":     "air_sensor_error",
	"stat_rh_sensor_error":      "rh_sensor_error",
	"stat_valve_position_err":   "valve_position_error",
	"stat_tamper_alarm":         "tamper_alarm",
	"stat_general_system_alarm": "general_system_alarm",
	"eco_offset":                "eco_offset",
	"stat_eco_program":          "eco_program",
	"stat_cb_eco_forced":        "eco_forced",
	"mode_comfort_eco":          "mode_comfort_eco",
	"sw_version":                "sw_version",
	"thermostat_type":           "thermostat_type",
	"hw_type":                   "hw_type",
}

// systemVarMapping maps full system-level keys to normalized names.
// Matched exactly, never by substring.
var systemVarMapping = map[string]string{
	"sys_controller_1_presence": "controller_presence",
	"sys_controller_1_lost":     "controller_lost",
	"stat_out_module_com_lost":  "output_module_lost",
	"sys_pump_management":       "pump_management",
	"sys_valve_exercise":        "valve_exercise",
	"sys_heat_cool_mode":        "heat_cool_mode",
}

// Attribute kinds drive value conversion. Everything not listed below is
// treated as an integer-coded boolean.
var (
	intAttrs = map[string]bool{
		"rh":                      true,
		"rh_setpoint":             true,
		"head1_valve_pos_percent": true,
		"head2_valve_pos_percent": true,
	}

	temperatureAttrs = map[string]bool{
		"maximum_floor_setpoint":   true,
		"minimum_floor_setpoint":   true,
		"external_temperature":     true,
		"average_room_temperature": true,
		"supply_temperature":       true,
		"outdoor_temperature":      true,
	}

	stringAttrs = map[string]bool{
		"sw_version":      true,
		"thermostat_type": true,
		"hw_type":         true,
	}
)

// offsetAttr has its own conversion: an offset has no absolute zero, so the
// Fahrenheit 32-point shift must not be applied.
const offsetAttr = "eco_offset"

// controllerAggregates are the per-controller sensor suffixes recognized at
// the controller level (C<i>_<suffix>, no thermostat segment).
var controllerAggregates = []string{
	"average_room_temperature",
	"supply_temperature",
	"outdoor_temperature",
}
