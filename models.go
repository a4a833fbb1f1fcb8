package uponor_bridge

import "time"

// ThermostatRecord holds the normalized readings for a single thermostat.
// The ID is the composite identity derived from the raw variable prefix,
// e.g. "C1_T2" for thermostat 2 on controller 1.
type ThermostatRecord struct {
	ID         string         `json:"id"`         // "C1_T2"
	Controller string         `json:"controller"` // "C1"
	Thermostat string         `json:"thermostat"` // "T2"
	Name       string         `json:"name"`       // resolved display name
	Data       map[string]any `json:"data"`       // normalized attribute -> typed value
}

// Snapshot is the latest fully-merged view of every known thermostat plus
// controller and system aggregates. A published Snapshot is a deep copy and
// must never be mutated by consumers. The thermostat set only grows over the
// life of the process, and LastUpdate is monotonic non-decreasing.
type Snapshot struct {
	Thermostats map[string]ThermostatRecord `json:"thermostats"`
	System      map[string]any              `json:"system"`
	LastUpdate  time.Time                   `json:"last_update"`
}

// Clone returns a deep copy so the live maps and the published view can
// never alias each other.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Thermostats: make(map[string]ThermostatRecord, len(s.Thermostats)),
		System:      make(map[string]any, len(s.System)),
		LastUpdate:  s.LastUpdate,
	}
	for id, rec := range s.Thermostats {
		data := make(map[string]any, len(rec.Data))
		for k, v := range rec.Data {
			data[k] = v
		}
		rec.Data = data
		out.Thermostats[id] = rec
	}
	for k, v := range s.System {
		out.System[k] = v
	}
	return out
}

// User is an account allowed to issue controller writes.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
