package service

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	uponor "uponor_bridge"
)

// sentinelAbsent is INT16_MAX, the controller's marker for "no data / no
// sensor". An attribute decoding to it is left unset rather than stored.
const sentinelAbsent = 32767

// TemperatureUnits selects how raw temperature integers are decoded. The
// two encodings observed across firmware revisions are mutually exclusive
// interpretations of the same field, so the choice is explicit configuration
// rather than a guess.
type TemperatureUnits string

const (
	// UnitsFahrenheitX10 treats raw values as tenths of a degree Fahrenheit
	// and converts to Celsius.
	UnitsFahrenheitX10 TemperatureUnits = "fahrenheit_x10"
	// UnitsCelsiusX10 treats raw values as tenths of a degree Celsius.
	UnitsCelsiusX10 TemperatureUnits = "celsius_x10"
)

// varKind tags a classified raw variable before any interpretation.
type varKind int

const (
	kindIgnored varKind = iota
	kindThermostat
	kindController
	kindSystem
	kindCustomName
)

// classifiedVar is the parsed shape of a raw variable name.
type classifiedVar struct {
	kind         varKind
	controller   string // "C1"
	thermostatID string // "C1_T2", thermostat vars only
	attribute    string // raw attribute suffix; full key for system/custom
}

// classifyVar splits a raw key into an explicit tagged variant so parsing
// and interpretation stay separate.
func classifyVar(name string) classifiedVar {
	if isCustomNameKey(name) {
		return classifiedVar{kind: kindCustomName, attribute: name}
	}
	if _, ok := systemVarMapping[name]; ok {
		return classifiedVar{kind: kindSystem, attribute: name}
	}

	parts := strings.Split(name, "_")
	if len(parts) < 2 || !isControllerSegment(parts[0]) {
		return classifiedVar{kind: kindIgnored}
	}

	if len(parts) >= 3 && isThermostatSegment(parts[1]) {
		return classifiedVar{
			kind:         kindThermostat,
			controller:   parts[0],
			thermostatID: parts[0] + "_" + parts[1],
			attribute:    strings.Join(parts[2:], "_"),
		}
	}

	return classifiedVar{
		kind:       kindController,
		controller: parts[0],
		attribute:  strings.Join(parts[1:], "_"),
	}
}

// isControllerSegment reports whether s looks like "C<digits>".
func isControllerSegment(s string) bool {
	return len(s) > 1 && s[0] == 'C' && isDigits(s[1:])
}

// isThermostatSegment reports whether s looks like "T<digits>".
func isThermostatSegment(s string) bool {
	return len(s) > 1 && s[0] == 'T' && isDigits(s[1:])
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Translator turns flat raw variable maps into structured per-thermostat,
// per-controller and system state. State accumulates across polls: records
// are merged per key and never reset, so a poll that omits an attribute
// leaves the prior value intact.
type Translator struct {
	units TemperatureUnits

	mu          sync.RWMutex
	thermostats map[string]*uponor.ThermostatRecord
	system      map[string]any
	customNames map[string]string
}

// NewTranslator builds an empty translator decoding temperatures per units.
func NewTranslator(units TemperatureUnits) *Translator {
	if units == "" {
		units = UnitsFahrenheitX10
	}
	return &Translator{
		units:       units,
		thermostats: make(map[string]*uponor.ThermostatRecord),
		system:      make(map[string]any),
		customNames: make(map[string]string),
	}
}

// Process merges one poll's raw variables into the accumulated state.
// Custom names are extracted first so the same cycle's thermostat records
// already resolve against them.
func (t *Translator) Process(raw map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, value := range raw {
		if isCustomNameKey(key) {
			t.customNames[key] = value
		}
	}

	for key, value := range raw {
		switch v := classifyVar(key); v.kind {
		case kindThermostat:
			t.mergeThermostat(v, value)
		case kindController:
			t.mergeController(v, value)
		case kindSystem:
			t.mergeSystem(v, value)
		}
	}
}

func (t *Translator) mergeThermostat(v classifiedVar, raw string) {
	normalized, ok := thermostatVarMapping[v.attribute]
	if !ok {
		return
	}

	rec, ok := t.thermostats[v.thermostatID]
	if !ok {
		rec = &uponor.ThermostatRecord{
			ID:         v.thermostatID,
			Controller: v.controller,
			Thermostat: strings.TrimPrefix(v.thermostatID, v.controller+"_"),
			Data:       make(map[string]any),
		}
		t.thermostats[v.thermostatID] = rec
	}

	// Absent sentinel: keep whatever was stored before, never store a null.
	if value, present := t.convertValue(v.attribute, raw); present {
		rec.Data[normalized] = value
	}
}

func (t *Translator) mergeController(v classifiedVar, raw string) {
	for _, suffix := range controllerAggregates {
		if v.attribute == suffix {
			if value, ok := t.convertTemperature(raw); ok {
				t.system[thermostatVarMapping[suffix]] = value
			}
			return
		}
	}

	if !strings.HasPrefix(v.attribute, "stat_") {
		return
	}
	normalized, ok := thermostatVarMapping[v.attribute]
	if !ok {
		return
	}
	if value, ok := parseBoolSkippingSentinel(raw); ok {
		t.system[normalized] = value
	}
}

func (t *Translator) mergeSystem(v classifiedVar, raw string) {
	normalized, ok := systemVarMapping[v.attribute]
	if !ok {
		return
	}
	if value, ok := parseBoolSkippingSentinel(raw); ok {
		t.system[normalized] = value
	}
}

// parseBoolSkippingSentinel decodes an integer-coded boolean, dropping both
// unparseable values and the absent sentinel.
func parseBoolSkippingSentinel(raw string) (bool, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == sentinelAbsent {
		return false, false
	}
	return n != 0, true
}

// convertValue decodes one raw attribute value by its type-specific rule.
// The second return is false when the value is absent (sentinel or
// unparseable where a number is required); absent values must not be stored.
func (t *Translator) convertValue(attribute, raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(trimmed); err == nil && n == sentinelAbsent {
		return nil, false
	}

	switch {
	case intAttrs[attribute]:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, false
		}
		return n, true
	case temperatureAttrs[attribute]:
		return t.convertTemperature(trimmed)
	case attribute == offsetAttr:
		return t.convertOffset(trimmed)
	case stringAttrs[attribute]:
		return raw, true
	default:
		// Integer-coded boolean; pass unparseable values through unchanged
		// so one odd attribute never aborts a cycle.
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return raw, true
		}
		return n != 0, true
	}
}

// convertTemperature decodes a raw temperature integer to Celsius with one
// decimal place, honoring the configured encoding.
func (t *Translator) convertTemperature(raw string) (float64, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == sentinelAbsent {
		return 0, false
	}
	if t.units == UnitsCelsiusX10 {
		return round1(float64(n) / 10), true
	}
	return round1((float64(n)/10 - 32) * 5 / 9), true
}

// convertOffset decodes a temperature offset. Offsets scale but do not
// shift: no 32-point correction even in Fahrenheit mode.
func (t *Translator) convertOffset(raw string) (float64, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == sentinelAbsent {
		return 0, false
	}
	if t.units == UnitsCelsiusX10 {
		return round1(float64(n) / 10), true
	}
	return round1(float64(n) / 10 * 5 / 9), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ThermostatData returns a copy of the stored attribute map for id, or an
// empty map if the identity has never been observed.
func (t *Translator) ThermostatData(id string) map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.thermostats[id]
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(rec.Data))
	for k, v := range rec.Data {
		out[k] = v
	}
	return out
}

// SystemData returns a copy of the controller/system aggregate map.
func (t *Translator) SystemData() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]any, len(t.system))
	for k, v := range t.system {
		out[k] = v
	}
	return out
}

// ThermostatIDs returns the sorted identities observed so far.
func (t *Translator) ThermostatIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.thermostats))
	for id := range t.thermostats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CustomName resolves a display name for a thermostat or controller
// identity: the thermostat-specific entry first, then the controller-level
// one, then a default derived from the identity itself.
func (t *Translator) CustomName(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.customNameLocked(id)
}

func (t *Translator) customNameLocked(id string) string {
	if name, ok := t.customNames["cust_"+id+"_name"]; ok && name != "" {
		return name
	}
	if strings.HasPrefix(id, "C") {
		controller, _, _ := strings.Cut(id, "_")
		num := strings.TrimPrefix(controller, "C")
		if name, ok := t.customNames["cust_Controller"+num+"_Name"]; ok && name != "" {
			return name
		}
	}
	return strings.ReplaceAll(id, "_", " ")
}

// CustomNames returns a copy of the raw custom-name table.
func (t *Translator) CustomNames() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]string, len(t.customNames))
	for k, v := range t.customNames {
		out[k] = v
	}
	return out
}

// Snapshot deep-copies the accumulated state into a publishable view with
// display names resolved, stamped with ts.
func (t *Translator) Snapshot(ts time.Time) uponor.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := uponor.Snapshot{
		Thermostats: make(map[string]uponor.ThermostatRecord, len(t.thermostats)),
		System:      make(map[string]any, len(t.system)),
		LastUpdate:  ts,
	}
	for id, rec := range t.thermostats {
		data := make(map[string]any, len(rec.Data))
		for k, v := range rec.Data {
			data[k] = v
		}
		snap.Thermostats[id] = uponor.ThermostatRecord{
			ID:         rec.ID,
			Controller: rec.Controller,
			Thermostat: rec.Thermostat,
			Name:       t.customNameLocked(id),
			Data:       data,
		}
	}
	for k, v := range t.system {
		snap.System[k] = v
	}
	return snap
}

// Seed preloads state persisted from an earlier run so consumers see data
// before the first live poll completes. Live polls merge on top.
func (t *Translator) Seed(snap uponor.Snapshot, names map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, rec := range snap.Thermostats {
		data := make(map[string]any, len(rec.Data))
		for k, v := range rec.Data {
			data[k] = v
		}
		t.thermostats[id] = &uponor.ThermostatRecord{
			ID:         rec.ID,
			Controller: rec.Controller,
			Thermostat: rec.Thermostat,
			Data:       data,
		}
	}
	for k, v := range snap.System {
		t.system[k] = v
	}
	for k, v := range names {
		t.customNames[k] = v
	}
}
