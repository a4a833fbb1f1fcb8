package service

import (
	"reflect"
	"testing"
)

func TestFilterRelevant(t *testing.T) {
	names := []string{
		"C1_T1_rh",
		"C1_T2_stat_demand_led",
		"C1_average_room_temperature",
		"C9_outdoor_temperature",
		"sys_heat_cool_mode",
		"stat_out_module_com_lost",
		"cust_C1_T1_name",
		"cust_Controller1_Name",
		"uptime_seconds",
		"fw_update_progress",
	}

	got := FilterRelevant(names)
	want := []string{
		"C1_T1_rh",
		"C1_T2_stat_demand_led",
		"C1_average_room_temperature",
		"C9_outdoor_temperature",
		"sys_heat_cool_mode",
		"stat_out_module_com_lost",
		"cust_C1_T1_name",
		"cust_Controller1_Name",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FilterRelevant = %v, want %v", got, want)
	}
}

func TestFilterRelevant_Idempotent(t *testing.T) {
	names := []string{"C1_T1_rh", "junk", "sys_pump_management"}
	once := FilterRelevant(names)
	twice := FilterRelevant(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent: %v vs %v", once, twice)
	}
}

func TestIsCustomNameKey(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"cust_C1_T1_name", true},
		{"cust_Controller1_Name", true},
		{"cust_Controller12_Name", true},
		{"C1_T1_name", false},
		{"cust_C1_T1_title", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isCustomNameKey(tc.in); got != tc.want {
			t.Fatalf("isCustomNameKey(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
